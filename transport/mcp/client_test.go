package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/tile2048/api"
	"github.com/wricardo/tile2048/game/config"
	"github.com/wricardo/tile2048/game/engine"
	"github.com/wricardo/tile2048/game/service"
	"github.com/wricardo/tile2048/game/session"
)

// newAPI starts the real REST API backed by in-memory managers
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager("")
	require.NoError(t, err)
	sessions := session.NewManagerWithRandom(session.SeededRandom(42))
	server := httptest.NewServer(api.NewServer(service.NewGameService(sessions, configs), nil))
	t.Cleanup(server.Close)
	return server
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()

	var response map[string]string
	require.NoError(t, NewClient(server.URL).apiCall(context.Background(), "GET", "/api/health", nil, &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestClient_apiCall_Errors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		err := NewClient("http://127.0.0.1:1").apiCall(context.Background(), "GET", "/api", nil, nil)
		assert.Error(t, err)
	})

	t.Run("API error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "session not found", "code": 404})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "session not found", err.Error())
	})

	t.Run("plain HTTP error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API error: 500")
	})
}

func TestFormatGameState(t *testing.T) {
	state := &engine.GameState{
		Grid:          engine.Grid{{2, 0}, {0, 4}},
		Phase:         engine.PhasePlaying,
		WinValue:      8,
		MaxTile:       4,
		TotalMoves:    3,
		PossibleMoves: []string{"up", "left"},
		Message:       "Cannot move in that direction!",
	}

	result := formatGameState(state)

	assert.Contains(t, result, "Max tile: 4 / 8 | Moves: 3 | Phase: playing")
	assert.Contains(t, result, engine.RenderGrid(state.Grid))
	assert.Contains(t, result, "Possible moves: up,left")
	assert.Contains(t, result, "Message: Cannot move in that direction!")
	assert.NotContains(t, result, "VICTORY")

	assert.Equal(t, "No game state available", formatGameState(nil))
}

func TestFormatGameState_Terminal(t *testing.T) {
	won := formatGameState(&engine.GameState{Grid: engine.Grid{{8, 0}, {0, 0}}, Phase: engine.PhaseWon, Victory: true, GameOver: true})
	assert.Contains(t, won, "VICTORY")
	assert.NotContains(t, won, "GAME OVER")

	lost := formatGameState(&engine.GameState{Grid: engine.Grid{{2, 4}, {4, 2}}, Phase: engine.PhaseLost, GameOver: true})
	assert.Contains(t, lost, "GAME OVER")
}

func TestFormatMoveResult(t *testing.T) {
	applied := formatMoveResult(&service.MoveResult{
		Success:   true,
		GameState: &engine.GameState{Grid: engine.Grid{{4, 0}, {0, 2}}},
		Step:      &service.StepInfo{Idx: 1, Dir: "left", Changed: true, SpawnedAt: &engine.Position{X: 1, Y: 1}, SpawnedValue: 2, MaxTile: 4},
		Events:    []service.GameEvent{{Type: service.EventMove, Message: "moved left"}},
	})
	assert.Contains(t, applied, "✓ Move applied")
	assert.Contains(t, applied, "Step 1: left spawned 2 at (1,1) max=4")
	assert.Contains(t, applied, "- move: moved left")

	blocked := formatMoveResult(&service.MoveResult{
		GameState: &engine.GameState{Grid: engine.Grid{{4, 0}, {0, 2}}},
		Step:      &service.StepInfo{Idx: 1, Dir: "up"},
	})
	assert.Contains(t, blocked, "✗ Move blocked")
	assert.Contains(t, blocked, "Step 1: up blocked")
}

func TestFormatBulkMoveResult(t *testing.T) {
	result := formatBulkMoveResult("abcd1234", &service.BulkMoveResult{
		MovesExecuted:  2,
		MovesChanged:   1,
		MovesBlocked:   1,
		RequestedMoves: 60,
		Truncated:      true,
		Limit:          engine.MaxBulkMoves,
		StartMaxTile:   4,
		EndMaxTile:     8,
		StoppedReason:  "game ended before move 3",
		StopReasonCode: service.StopVictory,
		GameState:      &engine.GameState{Grid: engine.Grid{{8, 0}, {0, 0}}, ConfigName: "tiny", Phase: engine.PhaseWon},
	})

	assert.Contains(t, result, "Session: abcd1234 • Config: tiny • Grid: 2x2")
	assert.Contains(t, result, "Executed 2/60 moves (1 changed, 1 blocked)")
	assert.Contains(t, result, "Truncated to the first 50 moves")
	assert.Contains(t, result, "Max tile: 4 → 8")
	assert.Contains(t, result, "[victory]")
	assert.Contains(t, result, "Final board (won):\n8 .\n. .\n")
	assert.NotContains(t, result, engine.RenderGrid(engine.Grid{{8, 0}, {0, 0}}))
}

func TestFormatHistory(t *testing.T) {
	result := formatHistory(&service.HistoryResponse{
		Page:       1,
		TotalPages: 1,
		TotalMoves: 2,
		Moves: []engine.MoveHistoryEntry{
			{MoveNumber: 2, Direction: "up", Changed: false, MaxTile: 4},
			{MoveNumber: 1, Direction: "left", Changed: true, MaxTile: 4, SpawnedAt: &engine.Position{X: 0, Y: 1}, SpawnedValue: 2},
		},
	})

	assert.Contains(t, result, "Total (cumulative): 2")
	assert.Contains(t, result, "2. up ✗ [Max: 4]")
	assert.Contains(t, result, "1. left ✓ [Max: 4] +2 at (0,1)")
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	for _, want := range []string{"GAME OBJECTIVE:", "MOVEMENT COMMANDS:", "VICTORY CONDITIONS:", "[2,2,2,2]"} {
		assert.Contains(t, text, want)
	}
}

func TestClient_ToolsAgainstAPI(t *testing.T) {
	server := newAPI(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callTool("create_session", map[string]interface{}{"config_id": "mini"}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	text := resultText(t, result)
	require.True(t, strings.HasPrefix(text, "Created session: "))
	sessionID := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(text, "Created session: "), "\n", 2)[0])
	assert.Contains(t, text, "Config: mini")

	result, err = client.handleGameState(ctx, callTool("game_state", map[string]interface{}{"session_id": sessionID}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Phase: playing")

	result, err = client.handleMove(ctx, callTool("move", map[string]interface{}{
		"session_id": sessionID,
		"direction":  "left",
		"intent":     "stack tiles on the left edge",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Step 1: left")

	result, err = client.handleMove(ctx, callTool("move", map[string]interface{}{
		"session_id": sessionID,
		"direction":  "diagonal",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid direction")

	result, err = client.handleBulkMove(ctx, callTool("bulk_move", map[string]interface{}{
		"session_id": sessionID,
		"moves":      []interface{}{"up", "right", "down"},
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "/3 moves")

	result, err = client.handleMoveHistory(ctx, callTool("move_history", map[string]interface{}{
		"session_id": sessionID,
		"order":      "asc",
		"limit":      float64(2),
	}))
	require.NoError(t, err)
	history := resultText(t, result)
	assert.Contains(t, history, "1. left")
	assert.Contains(t, history, "Current Move Segment")

	result, err = client.handleReset(ctx, callTool("reset_game", map[string]interface{}{"session_id": sessionID}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Game reset successfully")

	result, err = client.handleListSessions(ctx, callTool("list_sessions", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Active Sessions (1)")

	result, err = client.handleListConfigs(ctx, callTool("list_configs", nil))
	require.NoError(t, err)
	configs := resultText(t, result)
	for _, id := range []string{"classic", "mini", "large"} {
		assert.Contains(t, configs, "• "+id+" (builtin)")
	}

	result, err = client.handleGetSession(ctx, callTool("get_session", map[string]interface{}{"session_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestClient_ServeHTTP(t *testing.T) {
	client := NewClient("http://localhost:8080")

	w := httptest.NewRecorder()
	client.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	w = httptest.NewRecorder()
	client.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	names := make([]string, 0, len(response.Result.Tools))
	for _, tool := range response.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"create_session", "list_sessions", "get_session", "game_state", "move",
		"bulk_move", "reset_game", "move_history", "list_configs", "game_instructions",
	}, names)
}
