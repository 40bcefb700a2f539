// Package engine provides the core game logic for the tile merging game.
//
// The engine package implements the game mechanics including:
//   - Line compression and doubling merges
//   - Rotation-based movement in all four directions
//   - Win detection and move availability
//   - Random tile spawning behind a seedable source
//   - Game state management and variant validation
//
// Core Types:
//
// Grid is a square matrix of tile values where zero means empty. The board
// functions (CompressAndMergeLine, Rotate, Move, HasTile, CanMove, SpawnTile)
// never mutate their input. GameEngine threads a GameState through the
// Setup, Playing, Won and Lost phases and records a move history.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultConfig(), engine.NewRandomSource(0))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dir, err := engine.ParseToken("a")
//	if err != nil {
//		log.Fatal(err)
//	}
//	changed, err := eng.Move(dir)
//	state := eng.GetState()
//
// Game Rules:
//
// Every move slides all tiles as far as possible in one direction. Two equal
// tiles that meet merge into one tile of double value, and a tile merges at
// most once per move. After a move that changed the board a new tile (2 or 4)
// appears on a random empty cell. The game is won when a tile reaches the
// variant's win value, and lost when no move can change the board.
package engine
