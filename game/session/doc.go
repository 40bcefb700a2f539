// Package session keeps the games served over HTTP, WebSocket and MCP.
//
// Core Types:
//
// Manager stores service.Session values, each owning one engine.GameEngine
// together with its variant and access times. Sessions live in memory only.
//
// Session Identifiers:
//
// Callers may choose an ID; otherwise the manager derives an 8-character hex ID
// from a random UUID. Lookups ignore case, so "AB12CD34" and "ab12cd34" name the
// same session.
//
// Randomness:
//
// Every engine receives its own random source from a RandomFactory. SeededRandom
// hands out consecutive seeds so a server started with --seed replays the same
// games in the same order.
//
// Usage:
//
//	manager := session.NewManagerWithRandom(session.SeededRandom(seed))
//
//	sess, err := manager.Create("", cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drop games nobody touched for a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
