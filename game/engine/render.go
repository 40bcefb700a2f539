package engine

import (
	"strconv"
	"strings"
)

// minCellWidth fits every tile up to 5 digits
const minCellWidth = 5

// CellWidth returns the column width used to render g. It is the same for
// every row so all table lines have equal length.
func CellWidth(g Grid) int {
	width := minCellWidth
	if digits := len(strconv.Itoa(MaxTile(g))); digits > width {
		width = digits
	}
	return width
}

// RenderGrid draws the grid as a bordered table. Tiles are centered in their
// column and empty cells are left blank.
func RenderGrid(g Grid) string {
	width := CellWidth(g)
	border := strings.Repeat("-", g.Size()*(width+1)+1)

	var sb strings.Builder
	sb.WriteString(border)
	sb.WriteString("\n")
	for _, row := range g {
		sb.WriteString("|")
		for _, v := range row {
			if v == 0 {
				sb.WriteString(strings.Repeat(" ", width))
			} else {
				sb.WriteString(center(strconv.Itoa(v), width))
			}
			sb.WriteString("|")
		}
		sb.WriteString("\n")
		sb.WriteString(border)
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatCompact renders one line per row with "." for empty cells
func FormatCompact(g Grid) string {
	lines := make([]string, 0, len(g))
	for _, row := range g {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == 0 {
				cells[i] = "."
			} else {
				cells[i] = strconv.Itoa(v)
			}
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

// center pads s to width, putting the odd space on the right
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
