// Package api provides the HTTP REST API for tile2048.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "mini"}, empty body for the default variant)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Several boards at once (?sessionIds=a,b or ?configName=mini)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - {"direction": "left", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "a", "left"]}
//   - POST /api/sessions/{id}/reset - Start a fresh board, history is kept
//   - GET /api/sessions/{id}/history - Paginated history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List variants
//   - GET /api/configs/{name} - Get one variant
//   - POST /api/configs - Save a variant to the config directory
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws?session={id} - WebSocket stream of board updates
//
// Directions accept w/a/s/d or up/left/down/right in any case. Every state
// change made through the API is broadcast to the session's WebSocket
// watchers.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{
//	  "error": "invalid direction: \"x\"",
//	  "code": 400
//	}
//
// Unknown directions and invalid variants are 400, unknown sessions and
// variants are 404, moves on a finished game are 409.
package api
