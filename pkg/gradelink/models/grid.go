// Package models defines data structures for gradesheet detection and insertion.
package models

// Grid is the used range of a worksheet as row-major cell values.
// Cells hold the formatted string excelize returns for them; numeric
// cells keep their display text. Rows are padded to a uniform width by
// the sheet loader.
type Grid [][]string

// RowCount returns the number of rows in the grid.
func (g Grid) RowCount() int {
	return len(g)
}

// ColCount returns the width of the widest row.
func (g Grid) ColCount() int {
	max := 0
	for _, row := range g {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Cell returns the value at (row, col), or "" when the address is
// outside the grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	if col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// SetCell stores value at (row, col). Addresses outside the grid are
// ignored; the grid never grows after loading.
func (g Grid) SetCell(row, col int, value string) {
	if row < 0 || row >= len(g) {
		return
	}
	if col < 0 || col >= len(g[row]) {
		return
	}
	g[row][col] = value
}
