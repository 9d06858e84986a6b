// sudokan - a web-based Sudoku game and teaching tool.
// Copyright (C) 2015 Daniel C. Brotsky.
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
	"reflect"
	"testing"
)

/*

Cell numbering

*/

func TestCellIndex(t *testing.T) {
	rows := []int{0, 0, 1, 4, 8, 8}
	cols := []int{0, 8, 0, 4, 0, 8}
	indices := []int{0, 8, 9, 40, 72, 80}
	for i := range rows {
		if got := cellIndex(rows[i], cols[i]); got != indices[i] {
			t.Errorf("cellIndex(%d, %d) = %d but expected %d",
				rows[i], cols[i], got, indices[i])
		}
	}
}

func TestBoxOf(t *testing.T) {
	rows := []int{0, 0, 2, 3, 4, 5, 8, 6, 8}
	cols := []int{0, 8, 4, 0, 4, 8, 0, 6, 8}
	boxes := []int{0, 2, 1, 3, 4, 5, 6, 8, 8}
	for i := range rows {
		if got := boxOf(rows[i], cols[i]); got != boxes[i] {
			t.Errorf("boxOf(%d, %d) = %d but expected %d",
				rows[i], cols[i], got, boxes[i])
		}
	}
}

func TestBoxCells(t *testing.T) {
	center := [9][2]int{
		{3, 3}, {3, 4}, {3, 5},
		{4, 3}, {4, 4}, {4, 5},
		{5, 3}, {5, 4}, {5, 5},
	}
	if got := boxCells(4, 4); !reflect.DeepEqual(got, center) {
		t.Errorf("boxCells(4, 4) = %v but expected %v", got, center)
	}
	// every cell of a box names the same nine cells
	for _, cell := range center {
		if got := boxCells(cell[0], cell[1]); !reflect.DeepEqual(got, center) {
			t.Errorf("boxCells(%d, %d) = %v but expected %v",
				cell[0], cell[1], got, center)
		}
	}
	corner := [9][2]int{
		{0, 6}, {0, 7}, {0, 8},
		{1, 6}, {1, 7}, {1, 8},
		{2, 6}, {2, 7}, {2, 8},
	}
	if got := boxCells(0, 8); !reflect.DeepEqual(got, corner) {
		t.Errorf("boxCells(0, 8) = %v but expected %v", got, corner)
	}
}
