// Package websocket pushes session views to browser and agent clients.
//
// A central Hub owns every connection. Clients subscribe to one session
// with the ?session= query parameter; each connection gets a read and a
// write goroutine, and the Hub's Run loop is the only goroutine that
// touches the client map.
//
// Outgoing messages are JSON objects, one per frame:
//
//	{"session_id": "ab12", "event": "view_update", "view": {...}}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.BroadcastView(sessionID, view)
//
// Incoming frames are read only to keep the connection alive.
package websocket
