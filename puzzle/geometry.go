package puzzle

/*

Puzzle Geometry

This module solves standard Sudoku only: a 9x9 grid of cells in
nine rows, nine columns, and nine 3x3 boxes.  Cells, and the bits
that stand for them elsewhere, are numbered row-major from the
top left.  Boxes are numbered row-major as well, so the box in
the middle of the grid is box 4.

*/

const (
	sideLength = 9  // cells per row, column, and box
	cellCount  = 81 // cells per grid
	digitCount = 9  // distinct cell values
)

// cellIndex returns the row-major index of a cell.
func cellIndex(row, col int) int {
	return row*sideLength + col
}

// boxOf returns the index of the box containing a cell.
func boxOf(row, col int) int {
	return row/3*3 + col/3
}

// boxCells returns the coordinates of the nine cells in the box
// containing the given cell, in row-major order.  The given cell
// is among them.
func boxCells(row, col int) [9][2]int {
	top, left := row/3*3, col/3*3
	var cells [9][2]int
	for i := range cells {
		cells[i] = [2]int{top + i/3, left + i%3}
	}
	return cells
}
