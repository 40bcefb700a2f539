package engine

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrInvalidGrid = errors.New("invalid grid")
	ErrNoEmptyCell = errors.New("no empty cell to spawn a tile")
)

// Grid is a square matrix of tile values indexed as grid[row][column].
// A zero cell is empty; every other cell holds a power of two >= 2.
type Grid [][]int

// NewGrid creates an all-empty grid of the given dimension
func NewGrid(size int) Grid {
	grid := make(Grid, size)
	for i := range grid {
		grid[i] = make([]int, size)
	}
	return grid
}

// Size returns the grid dimension
func (g Grid) Size() int {
	return len(g)
}

// Clone returns a deep copy that shares no rows with g
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Equal reports whether both grids hold the same values cell by cell
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(other[i]) {
			return false
		}
		for j := range g[i] {
			if g[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// ValidateGrid checks that the grid is square and holds only empty cells or powers of two
func ValidateGrid(g Grid) error {
	size := len(g)
	if size == 0 {
		return fmt.Errorf("%w: grid is empty", ErrInvalidGrid)
	}
	for y, row := range g {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidGrid, y, len(row), size)
		}
		for x, v := range row {
			if v != 0 && (v < 2 || !isPowerOfTwo(v)) {
				return fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidGrid, x, y, v)
			}
		}
	}
	return nil
}

// CompressAndMergeLine slides a line toward index 0. Zeros are dropped, adjacent
// equal tiles merge into one tile of double value and a merged tile is never
// merged again in the same pass. The result is padded with zeros to the input length.
func CompressAndMergeLine(line []int) []int {
	tiles := make([]int, 0, len(line))
	for _, v := range line {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	out := make([]int, 0, len(line))
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] {
			out = append(out, tiles[i]*2)
			i++
			continue
		}
		out = append(out, tiles[i])
	}

	for len(out) < len(line) {
		out = append(out, 0)
	}
	return out
}

// Rotate returns the grid turned 90 degrees clockwise
func Rotate(g Grid) Grid {
	size := len(g)
	out := NewGrid(size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			out[i][j] = g[size-1-j][i]
		}
	}
	return out
}

// rotateTimes applies Rotate k times; k == 0 still returns a copy
func rotateTimes(g Grid, k int) Grid {
	out := g.Clone()
	for i := 0; i < k%4; i++ {
		out = Rotate(out)
	}
	return out
}

// Move applies one full move in the given direction. The grid is rotated so the
// direction points left, every row is compressed and merged, and the result is
// rotated back. The input grid is never modified.
func Move(g Grid, d Direction) Grid {
	k := d.Rotations()
	rotated := rotateTimes(g, k)
	for i, row := range rotated {
		rotated[i] = CompressAndMergeLine(row)
	}
	return rotateTimes(rotated, (4-k)%4)
}

// HasTile reports whether any cell equals value
func HasTile(g Grid, value int) bool {
	for _, row := range g {
		for _, v := range row {
			if v == value {
				return true
			}
		}
	}
	return false
}

// CanMove reports whether some move would change the grid: an empty cell
// exists or two orthogonally adjacent cells hold the same tile.
func CanMove(g Grid) bool {
	size := len(g)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := g[y][x]
			if v == 0 {
				return true
			}
			if y+1 < size && g[y+1][x] == v {
				return true
			}
			if x+1 < size && g[y][x+1] == v {
				return true
			}
		}
	}
	return false
}

// EmptyCells lists the empty cells in row-major order
func EmptyCells(g Grid) []Position {
	var cells []Position
	for y, row := range g {
		for x, v := range row {
			if v == 0 {
				cells = append(cells, Position{X: x, Y: y})
			}
		}
	}
	return cells
}

// CountTiles counts the non-empty cells
func CountTiles(g Grid) int {
	count := 0
	for _, row := range g {
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}
	return count
}

// MaxTile returns the largest tile on the grid, or 0 for an empty grid
func MaxTile(g Grid) int {
	maxValue := 0
	for _, row := range g {
		for _, v := range row {
			if v > maxValue {
				maxValue = v
			}
		}
	}
	return maxValue
}

// SpawnTile places one tile on a uniformly chosen empty cell. The tile value is
// chosen uniformly from values (DefaultSpawnValues when empty). A new grid is
// returned; on a full grid the input is returned unchanged with ErrNoEmptyCell.
func SpawnTile(g Grid, rng RandomSource, values []int) (Grid, Position, error) {
	empty := EmptyCells(g)
	if len(empty) == 0 {
		return g, Position{}, ErrNoEmptyCell
	}
	if len(values) == 0 {
		values = DefaultSpawnValues
	}

	pos := empty[rng.IntN(len(empty))]
	value := values[rng.IntN(len(values))]

	out := g.Clone()
	out[pos.Y][pos.X] = value
	return out, pos, nil
}

// EvaluateOutcome derives the outcome from the grid. Reaching the win value
// takes precedence over a blocked board.
func EvaluateOutcome(g Grid, winValue int) Outcome {
	if HasTile(g, winValue) {
		return Won
	}
	if !CanMove(g) {
		return Lost
	}
	return InProgress
}

// MaxReachableTile returns the largest tile a board of the given size can hold
// when the biggest spawned tile is maxSpawn: every cell but one holds a distinct
// power of two that merges upward into the last. The result saturates at 1<<62.
func MaxReachableTile(size, maxSpawn int) int {
	cells := size * size
	if cells <= 0 || maxSpawn <= 0 {
		return 0
	}
	if bits.Len(uint(maxSpawn))-1+cells-1 >= 62 {
		return 1 << 62
	}
	return maxSpawn << (cells - 1)
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
