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

package main

import (
	"os"
	"testing"

	"github.com/wirelyre/sudoku/dbprep"
)

var (
	storageChecked     bool
	storageUnavailable bool
)

func requireStorage(t *testing.T) {
	if !storageChecked {
		storageChecked = true
		os.Setenv("REDIS_NAMESPACE", "sudokan-test")
		if err := dbprep.ClearCache(); err != nil {
			t.Logf("Cache not reachable: %v", err)
			storageUnavailable = true
		} else if _, err := dbprep.SchemaVersion(); err != nil {
			t.Logf("Database not reachable: %v", err)
			storageUnavailable = true
		}
	}
	if storageUnavailable {
		t.Skip("Skipping: cache or database not reachable")
	}
}

func TestClearStorage(t *testing.T) {
	requireStorage(t)
	if err := dbprep.ReinitializeAll(); err != nil {
		t.Errorf("%v", err)
	}
	version, err := dbprep.SchemaVersion()
	if err != nil {
		t.Fatalf("Couldn't read the schema version: %v", err)
	}
	if version == 0 {
		t.Errorf("Schema version is still 0 after re-initialization.")
	}
}
