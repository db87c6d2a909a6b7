// Package api exposes the game service over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "single_goal"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&task=Name)
//   - GET /api/sessions/{id} - Session info with its current view
//   - DELETE /api/sessions/{id} - Delete a session
//
// Episodes:
//   - GET /api/sessions/{id}/view - Observe the current agent
//   - POST /api/sessions/{id}/act - Take one action ({"action": "up", "reset": false})
//   - POST /api/sessions/{id}/bulk-act - Take up to 50 actions ({"actions": ["up", "left"]})
//   - POST /api/sessions/{id}/reset - Start a new episode
//   - GET /api/sessions/{id}/history - Paginated actions (?page=1&limit=20&order=desc&episode=N)
//
// Configuration:
//   - GET /api/configs - List task configurations
//   - POST /api/configs - Save a task configuration
//   - GET /api/configs/{name} - Load one configuration
//   - GET /api/tasks - Names of the registered tasks
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket view updates, when a hub is configured
//
// Errors are returned as {"error": "message"}. Unknown sessions are 404.
// An unsupported action is not an error: the response carries
// success=false and the episode is unchanged.
package api
