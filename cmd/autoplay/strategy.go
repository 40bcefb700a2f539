package main

import (
	"github.com/wricardo/tile2048/game/engine"
)

const (
	emptyCellWeight = 10
	cornerWeight    = 4
	edgeWeight      = 1
)

// movePriority breaks ties between equally scored moves: keep the big tiles
// pressed into the bottom-left corner and only push up as a last resort
var movePriority = []engine.Direction{engine.Down, engine.Left, engine.Right, engine.Up}

// CornerStrategy picks moves greedily by simulating each direction on the
// current grid and scoring the result
type CornerStrategy struct {
	stuckCount int
}

func NewCornerStrategy() *CornerStrategy {
	return &CornerStrategy{}
}

// NextMove returns the best direction for grid, or false when no direction
// changes it
func (s *CornerStrategy) NextMove(grid engine.Grid) (engine.Direction, bool) {
	best, bestScore, found := engine.Direction(0), 0, false
	for _, d := range movePriority {
		next := engine.Move(grid, d)
		if next.Equal(grid) {
			continue
		}
		if score := scoreGrid(next); !found || score > bestScore {
			best, bestScore, found = d, score, true
		}
	}

	if !found {
		s.stuckCount++
	}
	return best, found
}

// NextMoves plans up to maxMoves moves for bulk execution. Spawns are not
// known in advance, so the plan follows the board as if no tile appeared
// and fills the rest with the corner-keeping pair.
func (s *CornerStrategy) NextMoves(grid engine.Grid, maxMoves int) []engine.Direction {
	moves := make([]engine.Direction, 0, maxMoves)
	current := grid
	for len(moves) < maxMoves {
		d, ok := s.NextMove(current)
		if !ok {
			break
		}
		moves = append(moves, d)
		current = engine.Move(current, d)
	}

	for i := 0; len(moves) < maxMoves; i++ {
		moves = append(moves, movePriority[i%2])
	}
	return moves
}

// StuckCount is how often no direction changed the board
func (s *CornerStrategy) StuckCount() int {
	return s.stuckCount
}

func (s *CornerStrategy) Reset() {
	s.stuckCount = 0
}

// scoreGrid favours free cells, the largest tile sitting in the bottom-left
// corner, and rows that decrease away from that corner
func scoreGrid(g engine.Grid) int {
	size := g.Size()
	score := len(engine.EmptyCells(g)) * emptyCellWeight

	if g[size-1][0] == engine.MaxTile(g) {
		score += g[size-1][0] * cornerWeight
	}

	for y := 0; y < size; y++ {
		for x := 0; x+1 < size; x++ {
			if g[y][x] >= g[y][x+1] {
				score += g[y][x] * edgeWeight / size
			}
		}
	}
	return score
}
