// Package websocket pushes live board updates to browsers and other watchers.
//
// The package uses a hub-and-spoke model: a central Hub owns every
// connection, and each client gets a read and a write goroutine. The Hub's
// client map is only touched by the Run goroutine, so registration,
// broadcasts and client counts all travel over channels.
//
// Session Integration:
//
// Clients pass the session ID as a query parameter (?session=abcd1234) when
// they connect. Session IDs are case-insensitive. Updates are sent only to
// clients watching the same session.
//
// Message Protocol:
//
// Watchers only listen. Each frame is one JSON document:
//
//	{
//	  "session_id": "abcd1234",
//	  "event": "state_update",
//	  "game_state": {...},
//	  "board": "-------------------------\n|     |  2  |..."
//	}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
//
// Canceling the context passed to Run closes every connection.
package websocket
