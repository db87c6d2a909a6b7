// Package mcp exposes the REST API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes one or two HTTP calls to
// a running server, and the JSON answer is rendered as text an agent can
// read. Tools:
//   - create_session, get_session, list_sessions
//   - observe, act, bulk_act, reset_episode, action_history
//   - list_configs, list_tasks, task_instructions, describe_cell
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// act and bulk_act take an optional intent argument. It is not sent to the
// server; asking for it makes agents state their plan.
package mcp
