// Package service provides the session layer between the transports and
// the episode engine.
//
// The service package implements:
//   - Multi-session management, one engine per session
//   - Single and bulk actions with per-step diagnostics
//   - Per-session action history with pagination
//   - Task configuration listing, loading and saving
//
// Core Interfaces:
//
// GameService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionManager stores sessions; ConfigManager loads task
// configurations.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "light_key")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Act(ctx, info.ID, "up", false)
//
// Every returned View carries the observation, the legal actions of the
// acting agent and a small text view around it. Actions the agent does not
// support are reported as unsuccessful and do not consume a turn.
package service
