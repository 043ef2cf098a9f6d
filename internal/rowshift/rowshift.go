// Package rowshift rotates the rows of a fixed-width character grid.
//
// Row i of the grid is rotated left by i mod N on Shift and right by the same
// amount on InverseShift. The final row is padded with Blank to full width
// before rotating and trailing blanks are trimmed afterwards.
package rowshift

import (
	"errors"
	"fmt"
	"strings"
)

// Blank fills the last row of a ragged grid.
const Blank = ' '

var ErrInvalidColumnCount = errors.New("rowshift: column count must be positive")

// Shift rotates row i of text left by i mod columns. Trailing blanks are
// trimmed from the result, but never more than the number of cells added to
// complete the last row.
func Shift(text []byte, columns int) ([]byte, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidColumnCount, columns)
	}
	grid, added := layout(text, columns)
	rotate(grid, columns, false)
	return trimBlanks(grid, added), nil
}

// InverseShift rotates row i of text right by i mod columns. It cannot know
// how many blanks Shift added, so it trims at most columns-1 trailing blanks.
// InverseShift(Shift(t)) == t for any t that does not end in a blank.
func InverseShift(text []byte, columns int) ([]byte, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidColumnCount, columns)
	}
	grid, _ := layout(text, columns)
	rotate(grid, columns, true)
	return trimBlanks(grid, columns-1), nil
}

// Rows splits text into rows of width columns, padding the last row with
// blanks. It returns nil for a non-positive column count.
func Rows(text []byte, columns int) [][]byte {
	if columns <= 0 {
		return nil
	}
	grid, _ := layout(text, columns)
	rows := make([][]byte, 0, len(grid)/columns)
	for off := 0; off < len(grid); off += columns {
		rows = append(rows, grid[off:off+columns])
	}
	return rows
}

// Table renders text as a bordered grid, one row per line, for progress
// output.
func Table(text []byte, columns int) string {
	rows := Rows(text, columns)
	if len(rows) == 0 {
		return ""
	}
	border := "+" + strings.Repeat("---+", columns) + "\n"

	var b strings.Builder
	b.WriteString(border)
	for _, row := range rows {
		b.WriteByte('|')
		for _, c := range row {
			fmt.Fprintf(&b, " %c |", c)
		}
		b.WriteByte('\n')
		b.WriteString(border)
	}
	return b.String()
}

func layout(text []byte, columns int) ([]byte, int) {
	added := (columns - len(text)%columns) % columns
	grid := make([]byte, len(text), len(text)+added)
	copy(grid, text)
	for i := 0; i < added; i++ {
		grid = append(grid, Blank)
	}
	return grid, added
}

func rotate(grid []byte, columns int, right bool) {
	scratch := make([]byte, columns)
	for row := 0; row*columns < len(grid); row++ {
		n := row % columns
		if n == 0 {
			continue
		}
		if right {
			n = columns - n
		}
		cells := grid[row*columns : (row+1)*columns]
		copy(scratch, cells[n:])
		copy(scratch[columns-n:], cells[:n])
		copy(cells, scratch)
	}
}

func trimBlanks(grid []byte, limit int) []byte {
	end := len(grid)
	for end > 0 && len(grid)-end < limit && grid[end-1] == Blank {
		end--
	}
	return grid[:end]
}
