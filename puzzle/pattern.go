package puzzle

import (
	"lukechampine.com/uint128"
)

/*

Cell patterns

*/

// A Pattern is a set of cells, stored as an 81-bit field in
// row-major order.  Bit 0 is the top-left cell and bit 80 the
// bottom-right.  The zero value is the empty set.
//
// Every operation keeps the 47 bits above the grid clear, so
// patterns can be compared directly with ==.
type Pattern struct {
	bits uint128.Uint128
}

// fullPattern has all 81 cells present: 64 low bits plus the 17
// bits above them.
var fullPattern = Pattern{bits: uint128.New(^uint64(0), 0x1FFFF)}

// cellBit returns the single-bit field for a cell.
func cellBit(row, col int) uint128.Uint128 {
	return uint128.From64(1).Lsh(uint(cellIndex(row, col)))
}

// Has reports whether the pattern contains the cell.
func (p Pattern) Has(row, col int) bool {
	return !p.bits.And(cellBit(row, col)).IsZero()
}

// Remove takes the cell out of the pattern, reporting whether it
// was previously present.
func (p *Pattern) Remove(row, col int) bool {
	bit := cellBit(row, col)
	if p.bits.And(bit).IsZero() {
		return false
	}
	p.bits = p.bits.Xor(bit)
	return true
}

// With returns a pattern that also contains the given cell.
func (p Pattern) With(row, col int) Pattern {
	return Pattern{bits: p.bits.Or(cellBit(row, col))}
}

// IsSubset reports whether every cell of p is also in other.
func (p Pattern) IsSubset(other Pattern) bool {
	return p.bits.And(other.bits) == p.bits
}

// Intersects reports whether p and other share any cell.
func (p Pattern) Intersects(other Pattern) bool {
	return !p.bits.And(other.bits).IsZero()
}

// Union returns the cells present in either pattern.
func (p Pattern) Union(other Pattern) Pattern {
	return Pattern{bits: p.bits.Or(other.bits)}
}

// Intersect returns the cells present in both patterns.
func (p Pattern) Intersect(other Pattern) Pattern {
	return Pattern{bits: p.bits.And(other.bits)}
}

// Invert returns the cells absent from p.  The complement is
// taken against the 81-cell grid, never the raw 128-bit width.
func (p Pattern) Invert() Pattern {
	return Pattern{bits: p.bits.Xor(fullPattern.bits)}
}

// Count returns the number of cells in the pattern.
func (p Pattern) Count() int {
	return p.bits.OnesCount()
}
