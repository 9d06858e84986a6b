// sudokan - a web-based Sudoku game and teaching tool.
// Copyright (C) 2015-2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package puzzle

import (
	"fmt"
	"unicode"
)

/*

Grid strings

*/

// ParseGrid reads a puzzle from its usual written form: 81 cells
// in row-major order, with `1` through `9` for clues and `0` or
// `.` for empty cells.  Whitespace is layout and is ignored, so
// one-line and row-per-line strings both parse.
func ParseGrid(s string) ([]int, error) {
	values := make([]int, 0, cellCount)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			values = append(values, int(r-'0'))
		case r == '.':
			values = append(values, 0)
		case unicode.IsSpace(r):
		default:
			return nil, fmt.Errorf("unexpected %q in grid", r)
		}
	}
	if len(values) != cellCount {
		return nil, fmt.Errorf("grid has %d cells, need %d", len(values), cellCount)
	}
	return values, nil
}

// GridString is the inverse of ParseGrid with no layout: exactly
// 81 digit characters, `0` for an empty cell.
func GridString(values []int) string {
	result := make([]byte, len(values))
	for i, v := range values {
		if v >= 0 && v <= digitCount {
			result[i] = byte('0' + v)
		} else {
			result[i] = '?'
		}
	}
	return string(result)
}

/*

Print forms of puzzle values

*/

var (
	valueStrings   = []string{" ", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	nonValueString = "?"
	bigValueString = "!"
)

func vstr(i int) string {
	if i < 0 {
		return nonValueString
	}
	if i < len(valueStrings) {
		return valueStrings[i]
	}
	return bigValueString
}

/*

Pretty-printed grids in strings, for debugging and the CLI.

*/

// ValuesDiagram returns a framed grid of the given values, one
// character per cell, empty cells blank.
func ValuesDiagram(values []int) (result string) {
	for row := 0; row < sideLength; row++ {
		if row == 3 || row == 6 {
			result += "---+---+---\n"
		}
		for col := 0; col < sideLength; col++ {
			if col == 3 || col == 6 {
				result += "|"
			}
			v := 0
			if i := cellIndex(row, col); i < len(values) {
				v = values[i]
			}
			result += vstr(v)
		}
		result += "\n"
	}
	return
}

// String draws the pattern in the same frame, `X` where a cell
// is in the pattern.
func (p Pattern) String() (result string) {
	for row := 0; row < sideLength; row++ {
		if row == 3 || row == 6 {
			result += "---+---+---\n"
		}
		for col := 0; col < sideLength; col++ {
			if col == 3 || col == 6 {
				result += "|"
			}
			if p.Has(row, col) {
				result += "X"
			} else {
				result += " "
			}
		}
		result += "\n"
	}
	return
}

// String lists every cell's remaining candidates.  Each cell is
// nine columns wide so a digit always appears in its own column;
// cells in a row are separated by `|`.
func (p *Possibilities) String() (result string) {
	for row := 0; row < sideLength; row++ {
		for col := 0; col < sideLength; col++ {
			if col != 0 {
				result += "|"
			}
			for digit := 0; digit < digitCount; digit++ {
				if p.patterns[digit].Has(row, col) {
					result += valueStrings[digit+1]
				} else {
					result += " "
				}
			}
		}
		result += "\n"
	}
	return
}
