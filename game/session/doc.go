// Package session stores the running episodes of the server.
//
// Manager keeps one engine per session, built from a task configuration
// with the observation encoder the configuration names. Session ids are
// four hex characters when generated and are matched case-insensitively.
//
// Usage:
//
//	manager := session.NewManager(engine.WithLogger(logger))
//
//	sess, err := manager.Create("", cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// The manager is safe for concurrent use. It does not serialise access to
// a session's engine; the service layer does that.
package session
