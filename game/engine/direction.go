package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

var ErrInvalidDirection = errors.New("invalid direction")

// Direction is one of the four move directions
type Direction int

const (
	Left Direction = iota
	Down
	Right
	Up
)

// AllDirections lists every direction in a stable order
var AllDirections = []Direction{Up, Down, Left, Right}

// directionTokens maps the canonical single-character tokens and the
// full direction names to directions
var directionTokens = map[string]Direction{
	"w":     Up,
	"a":     Left,
	"s":     Down,
	"d":     Right,
	"up":    Up,
	"left":  Left,
	"down":  Down,
	"right": Right,
}

// ParseDirection maps a token or a full direction name to a direction, as
// accepted by the HTTP and MCP surfaces. Matching is case-insensitive,
// ignores surrounding whitespace and only admits ASCII.
func ParseDirection(input string) (Direction, error) {
	trimmed := strings.TrimSpace(input)
	if !isASCII(trimmed) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, input)
	}
	if d, ok := directionTokens[cases.Fold().String(trimmed)]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, input)
}

// ParseToken maps one line of console input to a direction. Only the
// single-character tokens w, a, s and d are accepted, in either case.
func ParseToken(input string) (Direction, error) {
	token := strings.TrimSpace(input)
	if isASCII(token) {
		token = strings.ToLower(token)
		for _, d := range AllDirections {
			if d.Token() == token {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, input)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Rotations is the number of clockwise quarter turns that bring this
// direction onto Left
func (d Direction) Rotations() int {
	return int(d)
}

// Token returns the canonical single-character input for the direction
func (d Direction) Token() string {
	switch d {
	case Up:
		return "w"
	case Left:
		return "a"
	case Down:
		return "s"
	case Right:
		return "d"
	default:
		return "?"
	}
}

// String returns the lowercase direction name
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// IsValid reports whether d is one of the four directions
func (d Direction) IsValid() bool {
	return d >= Left && d <= Up
}
