// Package session provides in-memory session management for MiniDungeon.
//
// Manager stores one game engine per session and is safe for concurrent
// use. Session IDs are case-insensitive; generated IDs are the first eight
// hex characters of a random UUID. Nothing is written to disk: sessions end
// with the process or when they are deleted or expire.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	// Drop sessions idle for a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
