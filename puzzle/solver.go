package puzzle

import (
	"fmt"
	"sort"
)

/*

Solution search

Solving runs in two phases: the propagation engine pares down
the candidate patterns, then a backtracking search assembles
complete solutions from the templates compatible with those
patterns.  The balance works well: on ordinary puzzles the logic
does nearly everything, and on adversarial ones it still prunes
enough for the template walk to finish quickly.

Digits are searched most-constrained first, fewest compatible
templates leading.  With a unique solution the order hardly
matters; with sparse clues it is the difference between
milliseconds and minutes.  The cost is that solution order
shifts as added clues change the per-digit counts, so callers
must not rely on it.

*/

// digitTemplates pairs a digit with the templates compatible
// with its candidate pattern.
type digitTemplates struct {
	digit     int
	templates []Template
}

// byTemplateCount orders digits for search, fewest templates
// first.
type byTemplateCount []digitTemplates

func (dt byTemplateCount) Len() int      { return len(dt) }
func (dt byTemplateCount) Swap(i, j int) { dt[i], dt[j] = dt[j], dt[i] }
func (dt byTemplateCount) Less(i, j int) bool {
	return len(dt[i].templates) < len(dt[j].templates)
}

// Solutions searches the engine's candidate state for complete
// solutions, stopping once maxSolutions have been recorded.  A
// cap below one still yields the first solution found, because
// the cap is checked after recording, not before exploring.
func (p *Possibilities) Solutions(maxSolutions int) []Solution {
	ranked := make([]digitTemplates, digitCount)
	for d := 0; d < digitCount; d++ {
		ranked[d].digit = d
		for t := range TemplatesWithin(p.patterns[d]) {
			ranked[d].templates = append(ranked[d].templates, t)
		}
	}
	sort.Stable(byTemplateCount(ranked))

	var solutions []Solution
	var scratch Solution
	searchTemplates(&solutions, &scratch, Pattern{}, ranked, maxSolutions)
	return solutions
}

// searchTemplates extends the partial solution in scratch with a
// template for the first remaining digit and recurses for the
// rest.  filled is the union of the cells committed so far;
// templates that touch it are skipped.  A digit with no
// compatible template simply ends the branch.  Recording copies
// scratch, so recorded solutions are never disturbed by further
// search.
func searchTemplates(out *[]Solution, scratch *Solution, filled Pattern,
	remaining []digitTemplates, maxSolutions int) {
	if len(remaining) == 0 {
		*out = append(*out, *scratch)
		return
	}

	first, rest := remaining[0], remaining[1:]
	for _, t := range first.templates {
		if t.Pattern().Intersects(filled) {
			continue
		}
		scratch[first.digit] = t
		searchTemplates(out, scratch, filled.Union(t.Pattern()), rest, maxSolutions)
		if len(*out) >= maxSolutions {
			return
		}
	}
}

/*

Boundary operations

*/

// Prepare builds a propagation engine from 81 row-major values,
// 0 for an empty cell and 1-9 for a clue, committing every clue.
// It returns ErrImpossible if the clues are contradictory and a
// descriptive error if the values are malformed.  The values are
// checked in full before any clue is committed, so the two kinds
// of failure never mask each other.
func Prepare(values []int) (*Possibilities, error) {
	if len(values) != cellCount {
		return nil, fmt.Errorf("puzzle has %d cells, need %d", len(values), cellCount)
	}
	for i, v := range values {
		if v < 0 || v > digitCount {
			return nil, fmt.Errorf("cell %d holds %d, need 0 through 9", i, v)
		}
	}
	p := NewPossibilities()
	for i, v := range values {
		if v == 0 {
			continue
		}
		if err := p.Set(i/sideLength, i%sideLength, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Solve finds up to maxSolutions completions of the given grid,
// each rendered as 81 row-major digit characters.  The result is
// empty when the grid is malformed, the clues are contradictory,
// or no completion exists; callers who need to tell those apart
// use Prepare directly.
func Solve(values []int, maxSolutions int) []string {
	p, err := Prepare(values)
	if err != nil {
		return nil
	}
	solutions := p.Solutions(maxSolutions)
	grids := make([]string, len(solutions))
	for i, s := range solutions {
		grids[i] = s.String()
	}
	return grids
}
