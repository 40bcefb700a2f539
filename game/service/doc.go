// Package service provides the business logic layer shared by the HTTP API,
// the WebSocket hub and the MCP tools.
//
// The service package implements:
//   - Multi-session game management
//   - Variant lookup through a ConfigManager
//   - Single and bulk move processing with per-move traces
//   - Paginated move history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game variant loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every engine call happens under one service lock, and every
// state handed back to callers is a snapshot, so transports can encode results
// while other requests keep playing.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "mini")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "left", false)
//
// Tracing:
//
// Move and BulkMove open "service.move" spans (BulkMove nests them under a
// "service.bulk_move" span) carrying the direction, whether the board changed
// and the resulting phase. Spans go nowhere until telemetry.Setup installs an
// exporter.
package service
