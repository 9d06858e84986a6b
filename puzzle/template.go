package puzzle

import (
	"fmt"
	"iter"
	"sync"
)

/*

Templates

A template is one legal way to place a single digit: nine cells,
one in each row, column, and box.  There are exactly 46656 of
them, so the whole catalog is computed once per process and a
template is just an index into it.  That keeps search state at
two bytes per digit instead of a full pattern, and the search
hot loop reads the shared catalog instead of churning allocations.

*/

// templateCount is the number of legal single-digit layouts.
const templateCount = 46656

// A Template identifies one legal single-digit layout in the
// process-wide catalog.  Identities are stable for a process run
// but are not an external format.
type Template uint16

// A Solution is a complete puzzle: one template per digit.
// Digit 1 is index 0.
type Solution [digitCount]Template

var (
	catalogOnce sync.Once
	catalog     []Pattern // pattern for each Template, in generation order
)

// templateCatalog returns the shared catalog, building it on
// first use.  Generation goes row by row, placing the digit in a
// free column and free box; the two 9-bit masks track what is
// used.  Every complete placement is recorded at row 9.
func templateCatalog() []Pattern {
	catalogOnce.Do(func() {
		catalog = make([]Pattern, 0, templateCount)
		var fill func(build Pattern, cols, boxes uint16, row int)
		fill = func(build Pattern, cols, boxes uint16, row int) {
			if row == sideLength {
				catalog = append(catalog, build)
				return
			}
			for col := 0; col < sideLength; col++ {
				box := boxOf(row, col)
				if cols&(1<<col) == 0 && boxes&(1<<box) == 0 {
					fill(build.With(row, col), cols|1<<col, boxes|1<<box, row+1)
				}
			}
		}
		fill(Pattern{}, 0, 0, 0)
	})
	return catalog
}

// Pattern expands the template to its cell pattern.
func (t Template) Pattern() Pattern {
	return templateCatalog()[t]
}

// TemplatesWithin returns the templates whose pattern is a
// subset of possible, in catalog order.  The sequence is lazy
// and can be ranged over any number of times.
func TemplatesWithin(possible Pattern) iter.Seq[Template] {
	return func(yield func(Template) bool) {
		for i, pat := range templateCatalog() {
			if pat.IsSubset(possible) {
				if !yield(Template(i)) {
					return
				}
			}
		}
	}
}

/*

Solutions

*/

// valid reports whether the nine digit patterns are pairwise
// disjoint.  Nine disjoint templates necessarily cover all 81
// cells.
func (s Solution) valid() bool {
	var filled Pattern
	for _, t := range s {
		if t.Pattern().Intersects(filled) {
			return false
		}
		filled = filled.Union(t.Pattern())
	}
	return true
}

// cell returns the digit (1-9) a solution puts in a cell.
func (s Solution) cell(row, col int) int {
	for d := 0; d < digitCount; d++ {
		if s[d].Pattern().Has(row, col) {
			return d + 1
		}
	}
	panic(fmt.Errorf("empty cell (%d, %d) in solution", row, col))
}

// Grid returns the solution as 81 row-major values 1-9.
func (s Solution) Grid() []int {
	values := make([]int, cellCount)
	for i := range values {
		values[i] = s.cell(i/sideLength, i%sideLength)
	}
	return values
}

// String renders the solution as 81 row-major digit characters.
// The solution must be valid.
func (s Solution) String() string {
	if !s.valid() {
		panic(fmt.Errorf("overlapping digit patterns in solution"))
	}
	b := make([]byte, cellCount)
	for i := range b {
		b[i] = byte('0' + s.cell(i/sideLength, i%sideLength))
	}
	return string(b)
}
