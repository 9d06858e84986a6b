package puzzle

import (
	"errors"
	"testing"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

/*

Test Values

*/

var (
	emptyValues = make([]int, cellCount)

	conflictValues = []int{
		5, 0, 0, 5, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	// a well-known minimal puzzle: 17 clues, one solution, and
	// propagation alone cannot finish it
	seventeenClueValues = []int{
		0, 0, 0, 0, 0, 0, 0, 1, 0,
		0, 0, 0, 0, 0, 2, 0, 0, 3,
		0, 0, 0, 4, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 5, 0, 0,
		4, 0, 1, 6, 0, 0, 0, 0, 0,
		0, 0, 7, 1, 0, 0, 0, 0, 0,
		0, 5, 0, 0, 0, 0, 2, 0, 0,
		0, 0, 0, 0, 8, 0, 0, 4, 0,
		0, 3, 0, 9, 1, 0, 0, 0, 0,
	}

	shiftedCompleteValues = []int{
		1, 2, 3, 4, 5, 6, 7, 8, 9,
		4, 5, 6, 7, 8, 9, 1, 2, 3,
		7, 8, 9, 1, 2, 3, 4, 5, 6,
		2, 3, 4, 5, 6, 7, 8, 9, 1,
		5, 6, 7, 8, 9, 1, 2, 3, 4,
		8, 9, 1, 2, 3, 4, 5, 6, 7,
		3, 4, 5, 6, 7, 8, 9, 1, 2,
		6, 7, 8, 9, 1, 2, 3, 4, 5,
		9, 1, 2, 3, 4, 5, 6, 7, 8,
	}

	// the complete grid with one cell blanked per column, so
	// propagation recovers every one of them
	shiftedPartialValues = []int{
		0, 2, 3, 4, 5, 6, 7, 8, 9,
		4, 5, 6, 7, 0, 9, 1, 2, 3,
		7, 8, 9, 1, 2, 3, 4, 5, 0,
		2, 3, 4, 5, 6, 7, 8, 9, 1,
		5, 6, 0, 8, 9, 1, 2, 3, 4,
		8, 9, 1, 2, 3, 4, 5, 6, 7,
		3, 4, 5, 6, 7, 8, 0, 1, 2,
		6, 7, 8, 9, 1, 2, 3, 4, 5,
		9, 1, 2, 0, 4, 5, 6, 7, 8,
	}
)

// checkSolvedGrid verifies that got is a complete legal grid
// honoring the clues in values.
func checkSolvedGrid(t *testing.T, tn int, values []int, got string) {
	if len(got) != cellCount {
		t.Errorf("test %d: solution has %d characters but expected %d",
			tn, len(got), cellCount)
		return
	}
	var grid [9][9]int
	for i := range got {
		v := int(got[i] - '0')
		if v < 1 || v > 9 {
			t.Errorf("test %d: solution character %d is %q", tn, i, got[i])
			return
		}
		grid[i/sideLength][i%sideLength] = v
		if values[i] != 0 && values[i] != v {
			t.Errorf("test %d: solution changes clue %d from %d to %d",
				tn, i, values[i], v)
		}
	}
	for g := 0; g < 9; g++ {
		var inRow, inCol, inBox [10]bool
		for i := 0; i < 9; i++ {
			if inRow[grid[g][i]] {
				t.Errorf("test %d: row %d repeats %d", tn, g, grid[g][i])
			}
			inRow[grid[g][i]] = true
			if inCol[grid[i][g]] {
				t.Errorf("test %d: column %d repeats %d", tn, g, grid[i][g])
			}
			inCol[grid[i][g]] = true
			r, c := g/3*3+i/3, g%3*3+i%3
			if inBox[grid[r][c]] {
				t.Errorf("test %d: box %d repeats %d", tn, g, grid[r][c])
			}
			inBox[grid[r][c]] = true
		}
	}
}

/*

Solving

*/

func TestSolveEmpty(t *testing.T) {
	grids := Solve(emptyValues, 1)
	if len(grids) != 1 {
		t.Fatalf("empty puzzle gave %d solutions with max 1, expected 1", len(grids))
	}
	checkSolvedGrid(t, 1, emptyValues, grids[0])
}

func TestSolveConflict(t *testing.T) {
	if _, e := Prepare(conflictValues); !errors.Is(e, ErrImpossible) {
		t.Errorf("conflicting clues prepared with error %v, expected ErrImpossible", e)
	}
	if grids := Solve(conflictValues, 2); len(grids) != 0 {
		t.Errorf("conflicting clues gave %d solutions, expected none", len(grids))
	}
}

func TestSolveSeventeenClues(t *testing.T) {
	grids := Solve(seventeenClueValues, 2)
	if len(grids) != 1 {
		t.Fatalf("seventeen-clue puzzle gave %d solutions with max 2, expected 1",
			len(grids))
	}
	checkSolvedGrid(t, 1, seventeenClueValues, grids[0])

	want, unique := satSolve(t, seventeenClueValues)
	if grids[0] != want {
		t.Errorf("solution is %s but the SAT solver found %s", grids[0], want)
	}
	if !unique {
		t.Errorf("SAT solver found a second solution")
	}
}

func TestSeventeenCluePruning(t *testing.T) {
	p, e := Prepare(seventeenClueValues)
	if e != nil {
		t.Fatalf("Failed to prepare puzzle: %v", e)
	}
	total := 0
	for d := 0; d < digitCount; d++ {
		n := 0
		for range TemplatesWithin(p.patterns[d]) {
			n++
		}
		if n == 0 {
			t.Errorf("digit %d has no compatible templates", d+1)
		}
		total += n
	}
	if total >= templateCount {
		t.Errorf("propagation left %d templates in play, expected far fewer than %d",
			total, templateCount)
	}
	t.Logf("templates in play after propagation: %d of %d",
		total, digitCount*templateCount)
}

func TestSolutionsCap(t *testing.T) {
	grids := Solve(emptyValues, 3)
	if len(grids) != 3 {
		t.Fatalf("empty puzzle gave %d solutions with max 3, expected 3", len(grids))
	}
	seen := map[string]bool{}
	for i, g := range grids {
		checkSolvedGrid(t, i+1, emptyValues, g)
		if seen[g] {
			t.Errorf("solution %d repeats %s", i+1, g)
		}
		seen[g] = true
	}
}

func TestSolutionsLowCap(t *testing.T) {
	// caps below one still record the first solution found,
	// because the cap is only checked after recording
	for i, max := range []int{0, -1, -100} {
		p, e := Prepare(emptyValues)
		if e != nil {
			t.Fatalf("test %d: Failed to prepare puzzle: %v", i+1, e)
		}
		if sols := p.Solutions(max); len(sols) != 1 {
			t.Errorf("test %d: cap %d gave %d solutions, expected the first one",
				i+1, max, len(sols))
		}
	}
}

func TestPrepareRejects(t *testing.T) {
	short := make([]int, cellCount-1)
	long := make([]int, cellCount+1)
	low := make([]int, cellCount)
	low[40] = -1
	high := make([]int, cellCount)
	high[40] = 10
	tcs := [][]int{short, long, low, high}
	for i, values := range tcs {
		p, e := Prepare(values)
		if e == nil || errors.Is(e, ErrImpossible) {
			t.Errorf("test %d: malformed puzzle prepared with error %v", i+1, e)
		}
		if p != nil {
			t.Errorf("test %d: malformed puzzle still returned an engine", i+1)
		}
	}
}

/*

Independent checking

The solver's single answer to the seventeen-clue puzzle deserves
a second opinion, so satSolve encodes the puzzle for a SAT
solver, extracts its model, and then blocks that model to ask
whether any other completion exists.

*/

// satSolve completes the given clues with a SAT solver and
// reports whether the completion is the only one.
func satSolve(t *testing.T, values []int) (string, bool) {
	sat := gini.New()
	lit := func(row, col, digit int) z.Lit {
		return z.Var(digit + col*9 + row*81 + 1).Pos()
	}
	// every cell holds some digit
	for row := 0; row < sideLength; row++ {
		for col := 0; col < sideLength; col++ {
			for d := 0; d < digitCount; d++ {
				sat.Add(lit(row, col, d))
			}
			sat.Add(0)
		}
	}
	// no digit repeats within a row, column, or box
	for d := 0; d < digitCount; d++ {
		for i := 0; i < cellCount; i++ {
			rowA, colA := i/sideLength, i%sideLength
			for j := i + 1; j < cellCount; j++ {
				rowB, colB := j/sideLength, j%sideLength
				if rowA != rowB && colA != colB &&
					boxOf(rowA, colA) != boxOf(rowB, colB) {
					continue
				}
				sat.Add(lit(rowA, colA, d).Not())
				sat.Add(lit(rowB, colB, d).Not())
				sat.Add(0)
			}
		}
	}
	// the clues
	for i, v := range values {
		if v != 0 {
			sat.Add(lit(i/sideLength, i%sideLength, v-1))
			sat.Add(0)
		}
	}
	if sat.Solve() != 1 {
		t.Fatalf("SAT solver found no solution")
	}
	solution := make([]byte, cellCount)
	for i := range solution {
		for d := 0; d < digitCount; d++ {
			if sat.Value(lit(i/sideLength, i%sideLength, d)) {
				solution[i] = byte('1' + d)
				break
			}
		}
	}
	// block the model and look for a different completion
	for i := range solution {
		sat.Add(lit(i/sideLength, i%sideLength, int(solution[i]-'1')).Not())
	}
	sat.Add(0)
	return string(solution), sat.Solve() != 1
}

/*

Benchmarks

*/

func BenchmarkSolveSeventeenClues(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if grids := Solve(seventeenClueValues, 2); len(grids) != 1 {
			b.Fatalf("got %d solutions, expected 1", len(grids))
		}
	}
}
