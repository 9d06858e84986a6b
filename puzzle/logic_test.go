package puzzle

import (
	"errors"
	"reflect"
	"testing"
)

/*

Engine snapshots

*/

// An engineState captures everything observable about an engine
// except the transient work queue, for before-and-after
// comparisons.
type engineState struct {
	patterns   [digitCount]Pattern
	cellCounts [9][9]int
	rowCounts  [9][9]int
	colCounts  [9][9]int
	boxCounts  [9][9]int
}

func snapshot(p *Possibilities) engineState {
	return engineState{p.patterns, p.cellCounts, p.rowCounts, p.colCounts, p.boxCounts}
}

/*

Propagation

*/

func TestSetPropagates(t *testing.T) {
	p := NewPossibilities()
	if err := p.Set(0, 0, 5); err != nil {
		t.Fatalf("Failed to set first clue: %v", err)
	}
	if got := p.Candidates(0, 0); !reflect.DeepEqual(got, []int{5}) {
		t.Errorf("set cell candidates are %v but expected [5]", got)
	}
	// peers lose the digit
	peers := [][2]int{{0, 4}, {0, 8}, {4, 0}, {8, 0}, {1, 1}, {2, 2}}
	for _, c := range peers {
		for _, d := range p.Candidates(c[0], c[1]) {
			if d == 5 {
				t.Errorf("peer (%d, %d) still allows 5", c[0], c[1])
			}
		}
		if got := len(p.Candidates(c[0], c[1])); got != 8 {
			t.Errorf("peer (%d, %d) has %d candidates but expected 8",
				c[0], c[1], got)
		}
	}
	// cells sharing nothing with the clue keep all nine
	if got := p.Candidates(4, 4); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Errorf("far cell candidates are %v but expected all nine", got)
	}
}

func TestSetIdempotent(t *testing.T) {
	p := NewPossibilities()
	if err := p.Set(4, 4, 7); err != nil {
		t.Fatalf("Failed to set clue: %v", err)
	}
	before := snapshot(p)
	if err := p.Set(4, 4, 7); err != nil {
		t.Fatalf("Setting the same clue again failed: %v", err)
	}
	if !reflect.DeepEqual(before, snapshot(p)) {
		t.Errorf("Setting the same clue again changed the engine")
	}
}

func TestSetCellConflict(t *testing.T) {
	p := NewPossibilities()
	if err := p.Set(0, 0, 5); err != nil {
		t.Fatalf("Failed to set clue: %v", err)
	}
	if err := p.Set(0, 0, 6); !errors.Is(err, ErrImpossible) {
		t.Errorf("second value in one cell returned %v but expected ErrImpossible", err)
	}
}

func TestSetRowConflict(t *testing.T) {
	p := NewPossibilities()
	if err := p.Set(0, 0, 5); err != nil {
		t.Fatalf("Failed to set clue: %v", err)
	}
	if err := p.Set(0, 3, 5); !errors.Is(err, ErrImpossible) {
		t.Errorf("repeated value in a row returned %v but expected ErrImpossible", err)
	}
}

func TestDigitPattern(t *testing.T) {
	p := NewPossibilities()
	if err := p.Set(0, 0, 5); err != nil {
		t.Fatalf("Failed to set clue: %v", err)
	}
	pattern := p.DigitPattern(5)
	if !pattern.Has(0, 0) {
		t.Errorf("5 is no longer possible in its own cell")
	}
	for _, c := range [][2]int{{0, 4}, {4, 0}, {1, 1}} {
		if pattern.Has(c[0], c[1]) {
			t.Errorf("5 is still possible in peer (%d, %d)", c[0], c[1])
		}
	}
	if got := pattern.Count(); got != 61 {
		t.Errorf("digit 5 pattern has %d cells but expected 61", got)
	}
	if got := p.DigitPattern(6).Count(); got != 80 {
		t.Errorf("digit 6 pattern has %d cells but expected 80", got)
	}
}

func TestForcedCellCascades(t *testing.T) {
	// 1 through 8 across row 0 force the ninth cell to 9
	p := NewPossibilities()
	for col := 0; col < 8; col++ {
		if err := p.Set(0, col, col+1); err != nil {
			t.Fatalf("Failed to set clue %d: %v", col+1, err)
		}
	}
	if got := p.Candidates(0, 8); !reflect.DeepEqual(got, []int{9}) {
		t.Fatalf("forced cell candidates are %v but expected [9]", got)
	}
	// and the forced 9 excludes 9 from its own peers
	forcedPeers := [][2]int{{1, 7}, {2, 6}, {4, 8}, {8, 8}}
	for _, c := range forcedPeers {
		for _, d := range p.Candidates(c[0], c[1]) {
			if d == 9 {
				t.Errorf("peer (%d, %d) of the forced cell still allows 9", c[0], c[1])
			}
		}
	}
}

func TestCloneIndependent(t *testing.T) {
	p := NewPossibilities()
	if err := p.Set(0, 0, 1); err != nil {
		t.Fatalf("Failed to set clue: %v", err)
	}
	c := p.Clone()
	if !reflect.DeepEqual(snapshot(p), snapshot(c)) {
		t.Fatalf("clone differs from its source")
	}
	if err := c.Set(8, 8, 9); err != nil {
		t.Fatalf("Failed to set clue on clone: %v", err)
	}
	if reflect.DeepEqual(snapshot(p), snapshot(c)) {
		t.Errorf("clone shares state with its source")
	}
	if got := p.Candidates(8, 8); len(got) != 9 {
		t.Errorf("source engine saw the clone's clue: %v", got)
	}
}

/*

Counter agreement

Every counter must equal the cells (or digits) its constraint
still covers, whatever state propagation has reached.

*/

type counterAgreementTestcase struct {
	name   string
	values []int
}

func TestCounterAgreement(t *testing.T) {
	tcs := []counterAgreementTestcase{
		{"empty", emptyValues},
		{"seventeen clues", seventeenClueValues},
		{"nearly complete", shiftedPartialValues},
	}
	for i, tc := range tcs {
		p, e := Prepare(tc.values)
		if e != nil {
			t.Fatalf("test %d: Failed to prepare %s puzzle: %v", i+1, tc.name, e)
		}
		checkCounters(t, i+1, p)
	}
}

func checkCounters(t *testing.T, tn int, p *Possibilities) {
	for row := 0; row < sideLength; row++ {
		for col := 0; col < sideLength; col++ {
			n := 0
			for d := 0; d < digitCount; d++ {
				if p.patterns[d].Has(row, col) {
					n++
				}
			}
			if p.cellCounts[row][col] != n {
				t.Errorf("test %d: cell (%d, %d) counter is %d but %d digits remain",
					tn, row, col, p.cellCounts[row][col], n)
			}
		}
	}
	for d := 0; d < digitCount; d++ {
		for g := 0; g < 9; g++ {
			if n := p.patterns[d].Intersect(rowPattern(g)).Count(); p.rowCounts[g][d] != n {
				t.Errorf("test %d: row %d counter for %d is %d but %d cells remain",
					tn, g, d+1, p.rowCounts[g][d], n)
			}
			if n := p.patterns[d].Intersect(colPattern(g)).Count(); p.colCounts[g][d] != n {
				t.Errorf("test %d: column %d counter for %d is %d but %d cells remain",
					tn, g, d+1, p.colCounts[g][d], n)
			}
			if n := p.patterns[d].Intersect(boxPattern(g)).Count(); p.boxCounts[g][d] != n {
				t.Errorf("test %d: box %d counter for %d is %d but %d cells remain",
					tn, g, d+1, p.boxCounts[g][d], n)
			}
		}
	}
}

/*

Fully constrained engines

*/

func TestUnique(t *testing.T) {
	p, e := Prepare(shiftedPartialValues)
	if e != nil {
		t.Fatalf("Failed to prepare puzzle: %v", e)
	}
	sol, ok := p.Unique()
	if !ok {
		t.Fatalf("Propagation did not pin down the nearly complete puzzle")
	}
	if got := sol.Grid(); !reflect.DeepEqual(got, shiftedCompleteValues) {
		t.Errorf("unique solution is %v (expected %v)", got, shiftedCompleteValues)
	}
	if _, ok := NewPossibilities().Unique(); ok {
		t.Errorf("unconstrained engine claims a unique solution")
	}
}
