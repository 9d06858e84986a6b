package puzzle

import (
	"errors"
	"fmt"
)

/*

Constraint propagation

A Possibilities is the prepared form of a puzzle: for each digit,
the pattern of cells where that digit can still go.  Committing a
clue removes the other digits from its cell, and the consequences
ripple out until nothing more can be deduced.

The rules of Sudoku are four families of exactly-one constraints
over the 9x9x9 space of (row, column, digit) candidates:

  - Cell: fix a row and column; the cell holds exactly one digit.
  - Row: fix a row and digit; the digit lands in exactly one cell.
  - Column: likewise for a column and digit.
  - Box: likewise for a box and digit.

Each constraint selects nine candidates.  The engine tracks how
many of those nine are still alive.  Eliminating a candidate
decrements the four counts that cover it.  A count falling to
zero means some constraint can no longer be satisfied, so the
clues are contradictory.  A count falling to one means a value
has been forced, which queues further eliminations.  The queue
drains to a fixed point in which rules one and two below hold
with nothing left to apply:

  1. A cell with a single digit excludes that digit from the rest
     of its row, column, and box.
  2. A digit with a single home in a row, column, or box excludes
     every other digit from that home.

This alone solves basic puzzles; for the rest it shrinks the
search space dramatically before the template search runs.

*/

// ErrImpossible reports that a puzzle has contradictory clues.
// It carries no location: elimination order determines which
// constraint trips first, not which clue is to blame.
var ErrImpossible = errors.New("impossible puzzle")

// An elimination is one queued unit of work: remove digit (0-8)
// as a candidate from the cell at (row, col).
type elimination struct {
	row, col, digit int
}

// A Possibilities holds the candidate state for a puzzle in
// progress.  The zero value is not useful; see NewPossibilities.
//
// Digits are 0-based internally; exported methods take and
// return the player-facing values 1-9.
type Possibilities struct {
	patterns [digitCount]Pattern // cells where each digit remains possible
	queue    []elimination       // pending eliminations

	cellCounts [9][9]int // [row][col] digits possible in the cell
	rowCounts  [9][9]int // [row][digit] cells possible in the row
	colCounts  [9][9]int // [col][digit] cells possible in the column
	boxCounts  [9][9]int // [box][digit] cells possible in the box
}

// NewPossibilities returns a fresh engine in which every digit
// is possible in every cell.
func NewPossibilities() *Possibilities {
	p := &Possibilities{}
	for d := range p.patterns {
		p.patterns[d] = fullPattern
	}
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			p.cellCounts[i][j] = 9
			p.rowCounts[i][j] = 9
			p.colCounts[i][j] = 9
			p.boxCounts[i][j] = 9
		}
	}
	return p
}

// Clone returns an independent copy of the engine.
func (p *Possibilities) Clone() *Possibilities {
	c := *p
	c.queue = nil // drained between operations
	return &c
}

// Set commits a clue: the cell at (row, col) holds digit (1-9).
// All other digits are removed from the cell and the
// consequences are propagated to a fixed point.  On
// ErrImpossible the engine state is undefined and the engine
// must be discarded.
func (p *Possibilities) Set(row, col, digit int) error {
	p.enqueueOthers(row, col, digit-1)
	return p.work()
}

// Candidates returns the digits (1-9, ascending) still possible
// in the cell at (row, col).
func (p *Possibilities) Candidates(row, col int) []int {
	var ds []int
	for d := 0; d < digitCount; d++ {
		if p.patterns[d].Has(row, col) {
			ds = append(ds, d+1)
		}
	}
	return ds
}

// DigitPattern returns the cells where the given digit (1-9) is
// still possible.
func (p *Possibilities) DigitPattern(digit int) Pattern {
	return p.patterns[digit-1]
}

// work drains the queue until it is empty or a contradiction
// aborts it.
func (p *Possibilities) work() error {
	for len(p.queue) > 0 {
		e := p.queue[len(p.queue)-1]
		p.queue = p.queue[:len(p.queue)-1]
		if err := p.eliminate(e.row, e.col, e.digit); err != nil {
			return err
		}
	}
	return nil
}

// enqueue queues removal of a single digit from a cell.
func (p *Possibilities) enqueue(row, col, digit int) {
	p.queue = append(p.queue, elimination{row, col, digit})
}

// enqueueOthers queues removal of every digit but one from a cell.
func (p *Possibilities) enqueueOthers(row, col, digit int) {
	for d := 0; d < digitCount; d++ {
		if d != digit {
			p.enqueue(row, col, d)
		}
	}
}

// enqueueAdjacent queues removal of a digit from every other
// cell sharing the given cell's row, column, or box.
func (p *Possibilities) enqueueAdjacent(row, col, digit int) {
	for c := 0; c < sideLength; c++ {
		if c != col {
			p.enqueue(row, c, digit)
		}
	}
	for r := 0; r < sideLength; r++ {
		if r != row {
			p.enqueue(r, col, digit)
		}
	}
	for _, cell := range boxCells(row, col) {
		if cell[0] != row || cell[1] != col {
			p.enqueue(cell[0], cell[1], digit)
		}
	}
}

// eliminate removes digit as a candidate from (row, col),
// updates the four counters that cover the candidate, and queues
// the follow-on work for any constraint reduced to a singleton.
func (p *Possibilities) eliminate(row, col, digit int) error {
	if !p.patterns[digit].Remove(row, col) {
		// already eliminated
		return nil
	}

	p.cellCounts[row][col]--
	switch p.cellCounts[row][col] {
	case 0:
		return ErrImpossible
	case 1:
		p.enqueueAdjacent(row, col, p.findInCell(row, col))
	}

	p.rowCounts[row][digit]--
	switch p.rowCounts[row][digit] {
	case 0:
		return ErrImpossible
	case 1:
		p.enqueueOthers(row, p.findInRow(row, digit), digit)
	}

	p.colCounts[col][digit]--
	switch p.colCounts[col][digit] {
	case 0:
		return ErrImpossible
	case 1:
		p.enqueueOthers(p.findInCol(col, digit), col, digit)
	}

	box := boxOf(row, col)
	p.boxCounts[box][digit]--
	switch p.boxCounts[box][digit] {
	case 0:
		return ErrImpossible
	case 1:
		r, c := p.findInBox(row, col, digit)
		p.enqueueOthers(r, c, digit)
	}

	return nil
}

/*

Singleton location

These run only when a counter says exactly one candidate
survives, so failing to find it means the counters and patterns
have fallen out of agreement: an engine bug, not a puzzle state.

*/

// findInCell returns the one digit still possible in a cell.
func (p *Possibilities) findInCell(row, col int) int {
	for d := 0; d < digitCount; d++ {
		if p.patterns[d].Has(row, col) {
			return d
		}
	}
	panic(fmt.Errorf("no digit in cell (%d, %d)", row, col))
}

// findInRow returns the column of the one cell in the row that
// can still hold the digit.
func (p *Possibilities) findInRow(row, digit int) int {
	for c := 0; c < sideLength; c++ {
		if p.patterns[digit].Has(row, c) {
			return c
		}
	}
	panic(fmt.Errorf("no digit %d in row %d", digit+1, row))
}

// findInCol returns the row of the one cell in the column that
// can still hold the digit.
func (p *Possibilities) findInCol(col, digit int) int {
	for r := 0; r < sideLength; r++ {
		if p.patterns[digit].Has(r, col) {
			return r
		}
	}
	panic(fmt.Errorf("no digit %d in column %d", digit+1, col))
}

// findInBox returns the one cell in the box around (row, col)
// that can still hold the digit.
func (p *Possibilities) findInBox(row, col, digit int) (int, int) {
	for _, cell := range boxCells(row, col) {
		if p.patterns[digit].Has(cell[0], cell[1]) {
			return cell[0], cell[1]
		}
	}
	panic(fmt.Errorf("no digit %d in box %d", digit+1, boxOf(row, col)))
}

/*

Finished puzzles

*/

// Unique returns the solution a fully constrained engine pins
// down.  It reports false unless every digit's candidate pattern
// admits exactly one template and the nine templates form a
// valid solution.
func (p *Possibilities) Unique() (Solution, bool) {
	var sol Solution
	for d := 0; d < digitCount; d++ {
		count := 0
		for t := range TemplatesWithin(p.patterns[d]) {
			if count == 0 {
				sol[d] = t
			}
			count++
			if count > 1 {
				break
			}
		}
		if count != 1 {
			return Solution{}, false
		}
	}
	if !sol.valid() {
		return Solution{}, false
	}
	return sol, true
}
