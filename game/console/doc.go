// Package console plays a game on a plain text terminal.
//
// The loop mirrors the classic console game: the grid is printed, the player
// types one of W, A, S or D followed by Enter, and the move is applied. Invalid
// input and moves that change nothing print a message and leave the board as it
// was. The game ends when the winning tile appears, when no move is left, when
// the player types q, or when the input is closed.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultConfig(), engine.NewRandomSource(0))
//	if err != nil {
//		log.Fatal(err)
//	}
//	phase, err := console.NewGame(eng, os.Stdin, os.Stdout).Run(ctx)
package console
