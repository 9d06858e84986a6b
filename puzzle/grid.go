// Copyright 2015 Daniel C. Brotsky.  All rights reserved.

// Package puzzle provides a model for Sudoku puzzles and
// operations on them.  It supports both a golang interface and a
// web interface to the puzzles.
//
// In this package, Sudoku puzzles are made of cells which are
// either empty (represented with a 0 value) or hold a digit
// between 1 and 9.  Cells are designated by row and column
// numbered 0 through 8, or by a single index that increases
// left-to-right, top-to-bottom (English reading order).
//
// Rather than tracking possible values per cell, the
// implementation keeps one Pattern per digit: the set of cells
// where that digit can still go.  Committing a clue eliminates
// candidates, and counters over the rows, columns, boxes, and
// cells detect forced placements, which are committed in turn
// until nothing more follows.  Puzzles whose clues contradict
// each other are detected during this propagation and deemed
// conflicted; a conflicted puzzle can still be displayed, but
// accepts no assignments.
//
// Whatever propagation cannot finish, a template search can: the
// 46656 ways a single digit can legally occupy nine cells are
// precomputed, and solutions are assembled from one compatible
// template per digit.
package puzzle

import (
	"errors"
)

/*

Wire types

*/

// A Choice assigns a value to a cell.  The cell is referred to
// by its index.
type Choice struct {
	Index int `json:"index"`
	Value int `json:"value"`
}

// The State of a grid gives its cell values, the candidate
// digits remaining in every cell, the number of empty cells, and
// whether the clues have proven contradictory.  Candidates are
// omitted from a conflicted grid.
type State struct {
	Values     []int   `json:"values"`
	Candidates [][]int `json:"candidates,omitempty"`
	Conflict   bool    `json:"conflict,omitempty"`
	Empty      int     `json:"empty"`
}

// An Update to a grid is the result of an assignment: the choice
// that was applied and the state it produced.
type Update struct {
	Choice Choice `json:"choice"`
	State  State  `json:"state"`
}

// A SolutionsResult reports the solutions found under a cap.
// Complete tells whether the enumeration finished: when false,
// the cap was reached and more solutions may exist.
type SolutionsResult struct {
	Grids    []string `json:"grids"`
	Complete bool     `json:"complete"`
}

/*

Grids

*/

// A Grid couples a puzzle's recorded values with a propagation
// engine over them, so the service, storage, and command layers
// share one workbench object.  The engine is nil exactly when
// the values are contradictory.
//
// The values record only what was given or assigned.  The engine
// usually knows more: propagation fills cells the values still
// show as empty.  Assigning such a cell its forced digit is a
// no-op; assigning anything else is a conflict.
type Grid struct {
	values []int
	engine *Possibilities
}

// NewGrid builds a Grid from 81 row-major values.  Contradictory
// clues yield a conflicted grid, not an error; only malformed
// values fail.
func NewGrid(values []int) (*Grid, error) {
	engine, err := Prepare(values)
	switch {
	case err == nil:
	case errors.Is(err, ErrImpossible):
		engine = nil
	default:
		return nil, Error{
			Scope:     ArgumentScope,
			Condition: GeneralCondition,
			Values:    ErrorData{err.Error()},
		}
	}
	g := &Grid{values: make([]int, cellCount), engine: engine}
	copy(g.values, values)
	return g, nil
}

// Values returns a copy of the grid's recorded values.
func (g *Grid) Values() []int {
	values := make([]int, len(g.values))
	copy(values, g.values)
	return values
}

// Conflict tells whether the grid's values are contradictory.
func (g *Grid) Conflict() bool {
	return g.engine == nil
}

// Empty returns the number of cells with no recorded value.
func (g *Grid) Empty() (n int) {
	for _, v := range g.values {
		if v == 0 {
			n++
		}
	}
	return
}

// Candidates returns the digits that can still go in the given
// cell, or nil for a conflicted grid.
func (g *Grid) Candidates(row, col int) []int {
	if g.engine == nil {
		return nil
	}
	return g.engine.Candidates(row, col)
}

// State returns the grid's full client-visible state.
func (g *Grid) State() State {
	state := State{
		Values:   g.Values(),
		Conflict: g.engine == nil,
		Empty:    g.Empty(),
	}
	if g.engine == nil {
		return state
	}
	state.Candidates = make([][]int, cellCount)
	for i := range state.Candidates {
		state.Candidates[i] = g.engine.Candidates(i/sideLength, i%sideLength)
	}
	return state
}

// Assign applies a choice to the grid.  On success the choice is
// recorded and its consequences propagated; on failure the grid
// is untouched and the returned error is an Error a client can
// interpret.  Assignments to occupied cells and to conflicted
// grids fail.
func (g *Grid) Assign(choice Choice) error {
	if choice.Index < 0 || choice.Index >= cellCount {
		return Error{
			Scope:     ArgumentScope,
			Condition: RangeCondition,
			Values:    ErrorData{"Index", 0, cellCount - 1},
		}
	}
	if choice.Value < 1 || choice.Value > digitCount {
		return Error{
			Scope:     ArgumentScope,
			Condition: RangeCondition,
			Values:    ErrorData{"Value", 1, digitCount},
		}
	}
	if g.engine == nil {
		return Error{Scope: PuzzleScope, Condition: ConflictCondition}
	}
	if prior := g.values[choice.Index]; prior != 0 {
		return Error{
			Scope:     CellScope,
			Condition: OccupiedCondition,
			Values:    ErrorData{choice.Index, prior},
		}
	}
	// Work on a clone: a failed Set leaves the clone poisoned,
	// never the grid.
	next := g.engine.Clone()
	if err := next.Set(choice.Index/sideLength, choice.Index%sideLength, choice.Value); err != nil {
		return Error{
			Scope:     CellScope,
			Condition: ConflictCondition,
			Values:    ErrorData{choice.Index},
		}
	}
	g.engine = next
	g.values[choice.Index] = choice.Value
	return nil
}

// Solutions enumerates completions of the grid, at most
// maxSolutions of them.  Caps below one are treated as one.  A
// conflicted grid has no solutions, completely.
func (g *Grid) Solutions(maxSolutions int) SolutionsResult {
	if maxSolutions < 1 {
		maxSolutions = 1
	}
	if g.engine == nil {
		return SolutionsResult{Complete: true}
	}
	// Search for one solution past the cap to learn whether the
	// cap truncated the enumeration.
	found := g.engine.Solutions(maxSolutions + 1)
	result := SolutionsResult{Complete: len(found) <= maxSolutions}
	if !result.Complete {
		found = found[:maxSolutions]
	}
	result.Grids = make([]string, len(found))
	for i, s := range found {
		result.Grids[i] = s.String()
	}
	return result
}
