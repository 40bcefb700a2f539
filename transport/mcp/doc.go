// Package mcp exposes tile2048 to AI agents over the Model Context Protocol.
//
// The Client is a thin MCP server: every tool call is forwarded to the REST
// API and the JSON answer is turned into text an agent can read, with the
// board drawn by engine.RenderGrid.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, reset_game, move_history
//   - list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the Client is an http.Handler answering one JSON-RPC message per POST
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	router.Handle("/mcp", client)
package mcp
