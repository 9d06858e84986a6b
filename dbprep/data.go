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

package dbprep

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wirelyre/sudoku/puzzle"
)

/*

entries

*/

type dataFunction func(pgx.Tx) error

var (
	upFunctions = []dataFunction{
		insertSamples,
	}
	downFunctions = []dataFunction{
		deleteSamples,
	}
)

// DataUp: load the sample data into the database.  You should do
// this after you get the schema up!
func DataUp() error {
	return applyFunctions(upFunctions)
}

// DataDown: remove the sample data from the database.  You
// should do this before you tear the schema down!
func DataDown() error {
	return applyFunctions(downFunctions)
}

// apply dataFunctions to the database.  Each is applied in a
// separate transaction, so later ones can rely on the effect of
// earlier ones having been committed.
func applyFunctions(fns []dataFunction) error {
	// open the database, defer the close
	conn, err := pgx.Connect(context.Background(), databaseUrl())
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	// helper that runs each function inside a transaction, and
	// ensures that any problems are rolled back.
	runFunc := func(fn dataFunction) error {
		tx, err := conn.Begin(context.Background())
		if err != nil {
			return err
		}
		defer func() {
			if e := recover(); e != nil {
				tx.Rollback(context.Background())
				panic(e)
			}
		}()
		if err := fn(tx); err != nil {
			tx.Rollback(context.Background())
			return err
		}
		return tx.Commit(context.Background())
	}

	// run the functions
	for i, fn := range fns {
		if err := runFunc(fn); err != nil {
			return fmt.Errorf("Data function %d failed: %v", i+1, err)
		}
	}
	return nil
}

/*

sample puzzles

*/

var (
	sampleValues = [][]int{
		{
			4, 0, 0, 0, 0, 3, 5, 0, 2,
			0, 0, 9, 5, 0, 6, 3, 4, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 8,
			0, 0, 0, 0, 3, 4, 8, 6, 0,
			0, 0, 4, 6, 0, 5, 2, 0, 0,
			0, 2, 8, 7, 9, 0, 0, 0, 0,
			9, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 8, 7, 3, 0, 2, 9, 0, 0,
			5, 0, 2, 9, 0, 0, 0, 0, 6,
		},
		{
			0, 1, 0, 5, 0, 6, 0, 2, 0,
			0, 0, 0, 0, 0, 3, 0, 1, 8,
			0, 0, 0, 0, 7, 0, 0, 0, 6,
			0, 0, 5, 0, 0, 0, 0, 3, 0,
			0, 0, 8, 0, 9, 0, 7, 0, 0,
			0, 6, 0, 0, 0, 0, 4, 0, 0,
			5, 0, 0, 0, 4, 0, 0, 0, 0,
			6, 4, 0, 2, 0, 0, 0, 0, 0,
			0, 3, 0, 9, 0, 1, 0, 8, 0,
		},
		{
			9, 0, 0, 4, 5, 0, 0, 0, 8,
			0, 2, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 1, 7, 2, 4, 0, 0,
			0, 7, 9, 0, 0, 0, 6, 8, 0,
			2, 0, 0, 0, 0, 0, 0, 0, 5,
			0, 4, 3, 0, 0, 0, 2, 7, 0,
			0, 0, 8, 3, 2, 5, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 6, 0,
			4, 0, 0, 0, 1, 6, 0, 0, 3,
		},
		{
			9, 4, 8, 0, 5, 0, 2, 0, 0,
			0, 0, 7, 8, 0, 3, 0, 0, 1,
			0, 5, 0, 0, 7, 0, 0, 0, 0,
			0, 7, 0, 0, 0, 0, 3, 0, 0,
			2, 0, 0, 6, 0, 5, 0, 0, 4,
			0, 0, 5, 0, 0, 0, 0, 9, 0,
			0, 0, 0, 0, 6, 0, 0, 1, 0,
			3, 0, 0, 5, 0, 9, 7, 0, 0,
			0, 0, 6, 0, 1, 0, 4, 2, 3,
		},
		{
			0, 0, 0, 0, 0, 0, 0, 0, 0,
			9, 0, 0, 5, 0, 7, 0, 3, 0,
			0, 0, 0, 1, 0, 0, 6, 0, 7,
			0, 4, 0, 0, 6, 0, 0, 8, 2,
			6, 7, 0, 0, 0, 0, 0, 1, 3,
			3, 8, 0, 0, 1, 0, 0, 9, 0,
			7, 0, 5, 0, 0, 8, 0, 0, 0,
			0, 2, 0, 3, 0, 9, 0, 0, 8,
			0, 0, 0, 0, 0, 0, 0, 0, 0,
		},
		{
			2, 0, 0, 8, 0, 0, 0, 5, 0,
			0, 8, 5, 0, 0, 0, 0, 0, 0,
			0, 3, 6, 7, 5, 0, 0, 0, 1,
			0, 0, 3, 0, 4, 0, 0, 9, 8,
			0, 0, 0, 3, 0, 5, 0, 0, 0,
			4, 1, 0, 0, 6, 0, 7, 0, 0,
			5, 0, 0, 0, 0, 7, 1, 2, 0,
			0, 0, 0, 0, 0, 0, 5, 6, 0,
			0, 2, 0, 0, 0, 0, 0, 0, 4,
		},
		{
			0, 0, 0, 0, 0, 0, 0, 1, 0,
			0, 0, 0, 0, 0, 2, 0, 0, 3,
			0, 0, 0, 4, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 5, 0, 0,
			4, 0, 1, 6, 0, 0, 0, 0, 0,
			0, 0, 7, 1, 0, 0, 0, 0, 0,
			0, 5, 0, 0, 0, 0, 2, 0, 0,
			0, 0, 0, 0, 8, 0, 0, 4, 0,
			0, 3, 0, 9, 1, 0, 0, 0, 0,
		},
	}
	sampleIDs   []string // see init
	sampleNames []string // see init

	// DefaultPuzzleID is the content address of the sample that
	// new sessions start with.
	DefaultPuzzleID string
)

// PuzzleID returns the stable ID a puzzle is stored under: the
// hex SHA-256 of its one-line string form.  The same values
// always get the same ID, so reloading a puzzle never makes a
// duplicate row.
func PuzzleID(values []int) string {
	sum := sha256.Sum256([]byte(puzzle.GridString(values)))
	return hex.EncodeToString(sum[:])
}

// DefaultPuzzle returns a copy of the default sample's values,
// for clients that want the starting puzzle without going
// through storage.
func DefaultPuzzle() []int {
	values := make([]int, len(sampleValues[0]))
	copy(values, sampleValues[0])
	return values
}

// initialize the ids and names from the sample puzzles
func init() {
	sampleIDs = make([]string, len(sampleValues))
	sampleNames = make([]string, len(sampleValues))
	for i, values := range sampleValues {
		sampleIDs[i] = PuzzleID(values)
		sampleNames[i] = fmt.Sprintf("sample-%d", i+1)
	}
	DefaultPuzzleID = sampleIDs[0]
}

// Create and insert the sample puzzles.  Puzzle IDs are content
// addresses, so inserting a sample that is already present is a
// no-op and the whole load is idempotent.
func insertSamples(tx pgx.Tx) error {
	now := time.Now().Format(time.RFC3339)
	for i, values := range sampleValues {
		flat := make([]int32, len(values))
		for j, v := range values {
			flat[j] = int32(v) // use 4-byte ints in database
		}
		_, err := tx.Exec(context.Background(),
			"INSERT INTO puzzles (puzzleId, name, valueList, created) "+
				"VALUES ($1, $2, $3, $4) "+
				"ON CONFLICT (puzzleId) DO NOTHING",
			sampleIDs[i], sampleNames[i], flat, now)
		if err != nil {
			return fmt.Errorf("Database error saving sample puzzle %d: %v", i+1, err)
		}
	}
	return nil
}

// Delete the sample puzzles, and any sessions and solutions
// recorded against them.
func deleteSamples(tx pgx.Tx) error {
	for i, id := range sampleIDs {
		_, err := tx.Exec(context.Background(),
			"DELETE FROM sessions WHERE puzzleId = $1", id)
		if err != nil {
			return fmt.Errorf("Database error deleting sessions of sample %d: %v", i+1, err)
		}
		_, err = tx.Exec(context.Background(),
			"DELETE FROM solutions WHERE puzzleId = $1", id)
		if err != nil {
			return fmt.Errorf("Database error deleting solutions of sample %d: %v", i+1, err)
		}
		_, err = tx.Exec(context.Background(),
			"DELETE FROM puzzles WHERE puzzleId = $1", id)
		if err != nil {
			return fmt.Errorf("Database error deleting sample puzzle %d: %v", i+1, err)
		}
	}
	return nil
}
