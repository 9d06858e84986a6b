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

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"

	"github.com/wirelyre/sudoku/dbprep"
	"github.com/wirelyre/sudoku/puzzle"
)

// the sample puzzle that new sessions start with
var defaultPuzzleID = dbprep.DefaultPuzzleID

/*

stored puzzles

*/

// SavePuzzle stores a puzzle under its content address and
// returns that ID.  Storing the same values again is a no-op
// that returns the existing ID and keeps the existing name.  An
// empty name gets a generated one.  Malformed values are the
// only error; a conflicted puzzle stores fine.
func SavePuzzle(name string, values []int) (string, error) {
	if _, err := puzzle.NewGrid(values); err != nil {
		return "", err
	}
	id := dbprep.PuzzleID(values)
	pe := &puzzleEntry{PuzzleID: id}
	if pe.load() {
		return id, nil
	}
	if name == "" {
		name = "Untitled " + id[:8]
	}
	pe.Name = name
	pe.Values = make([]int32, len(values))
	for i, v := range values {
		pe.Values[i] = int32(v)
	}
	pe.Created = time.Now().Format(time.RFC3339)
	pe.databaseInsert()
	pe.cacheInsert()
	log.Printf("Saved puzzle %q as %q.", name, id)
	return id, nil
}

// LoadPuzzle returns the starting values of a stored puzzle, and
// whether the puzzle is stored at all.
func LoadPuzzle(id string) ([]int, bool) {
	pe := &puzzleEntry{PuzzleID: id}
	if !pe.load() {
		return nil, false
	}
	values := make([]int, len(pe.Values))
	for i, v := range pe.Values {
		values[i] = int(v)
	}
	return values, true
}

/*

puzzle info

*/

// A PuzzleInfo is the exported description of one stored puzzle,
// as needed by puzzle-selection interfaces.
type PuzzleInfo struct {
	PuzzleID string // unique ID for this puzzle
	Name     string // user-facing name of the puzzle
	Clues    int    // number of given cells
	Created  string // RFC3339 time when the puzzle was stored
}

// makeInfo - make a PuzzleInfo from a puzzleEntry
func (pe *puzzleEntry) makeInfo() *PuzzleInfo {
	return &PuzzleInfo{
		PuzzleID: pe.PuzzleID,
		Name:     pe.Name,
		Clues:    countClues(pe.Values),
		Created:  pe.Created,
	}
}

// compute the number of given cells
func countClues(vals []int32) (count int) {
	for _, v := range vals {
		if v != 0 {
			count++
		}
	}
	return
}

// sorting of info sequences by puzzle name
type ByName []*PuzzleInfo

func (pi ByName) Len() int           { return len(pi) }
func (pi ByName) Swap(i, j int)      { pi[i], pi[j] = pi[j], pi[i] }
func (pi ByName) Less(i, j int) bool { return pi[i].Name < pi[j].Name }

// ListPuzzles returns info about every stored puzzle, sorted by
// name.
func ListPuzzles() []*PuzzleInfo {
	var infos []*PuzzleInfo
	body := func(tx pgx.Tx) error {
		rows, err := tx.Query(context.Background(),
			"SELECT puzzleId, name, valueList, created FROM puzzles")
		if err != nil {
			return fmt.Errorf("Failure listing puzzles: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			pe := &puzzleEntry{}
			if err := rows.Scan(&pe.PuzzleID, &pe.Name, &pe.Values, &pe.Created); err != nil {
				return fmt.Errorf("Failure reading puzzle row: %v", err)
			}
			infos = append(infos, pe.makeInfo())
		}
		return rows.Err()
	}
	pgExecute(body)
	sort.Sort(ByName(infos))
	return infos
}

/*

puzzle entries

*/

// A puzzleEntry is the stored form of a puzzle's starting point.
// It is JSON serializable so it can go into the cache as well as
// the database.
type puzzleEntry struct {
	PuzzleID string // content address of the values
	Name     string // user-facing name of the puzzle
	Values   []int32
	Created  string
}

// key: compute the cache key for a puzzleEntry.
func (pe *puzzleEntry) key() string {
	return rdEnv + ":PID:" + pe.PuzzleID
}

// load fills the entry from the cache or, failing that, the
// database (caching what it finds).  Returns whether the entry
// is stored at all.
func (pe *puzzleEntry) load() bool {
	if pe.cacheLoad() {
		return true
	}
	if !pe.databaseLoad() {
		return false
	}
	pe.cacheInsert()
	return true
}

// makeGrid: make the grid described in a puzzle entry
func (pe *puzzleEntry) makeGrid() *puzzle.Grid {
	values := make([]int, len(pe.Values))
	for i, v := range pe.Values {
		values[i] = int(v)
	}
	g, err := puzzle.NewGrid(values)
	if err != nil {
		panic(fmt.Errorf("Failed to create grid for puzzle %q: %v", pe.PuzzleID, err))
	}
	return g
}

// cacheLoad: load an already cached puzzle entry.  Returns
// whether the entry was found in the cache.
func (pe *puzzleEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", pe.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading puzzle entry %q: %v", pe.PuzzleID, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var spe *puzzleEntry
	if err := json.Unmarshal(bytes, &spe); err != nil {
		panic(fmt.Errorf("Failed to unmarshal puzzle entry %q: %v", pe.PuzzleID, err))
	}
	if spe.PuzzleID != pe.PuzzleID {
		panic(fmt.Errorf("Cached puzzle entry (id: %q) found for puzzle %q!",
			spe.PuzzleID, pe.PuzzleID))
	}
	*pe = *spe
	return true
}

// databaseLoad: load a puzzle entry from the database.  Returns
// whether a stored entry was found.
func (pe *puzzleEntry) databaseLoad() (found bool) {
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT name, valueList, created FROM puzzles "+
				"WHERE puzzleId = $1", pe.PuzzleID)
		err := row.Scan(&pe.Name, &pe.Values, &pe.Created)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Failure looking up puzzle %q: %v", pe.PuzzleID, err)
		}
		found = true
		return nil
	}
	pgExecute(body)
	return
}

// cacheInsert: insert a puzzle entry into the cache.  Replaces
// any existing entry with the same id.
func (pe *puzzleEntry) cacheInsert() {
	bytes, e := json.Marshal(pe)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal puzzle entry %q: %v", pe.PuzzleID, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", pe.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving puzzle entry %q: %v", pe.PuzzleID, err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a new puzzle entry into the database.
// IDs are content addresses, so inserting over an existing row
// is a no-op.
func (pe *puzzleEntry) databaseInsert() {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(context.Background(),
			"INSERT INTO puzzles (puzzleId, name, valueList, created) "+
				"VALUES ($1, $2, $3, $4) "+
				"ON CONFLICT (puzzleId) DO NOTHING",
			pe.PuzzleID, pe.Name, pe.Values, pe.Created)
		if err != nil {
			err = fmt.Errorf("Database error saving puzzle entry %q: %v", pe.PuzzleID, err)
		}
		return
	}
	pgExecute(body)
}

/*

stored solutions

*/

// A solutionEntry is the stored outcome of a solutions
// computation for one puzzle.  It is JSON serializable so it can
// go into the cache as well as the database.
type solutionEntry struct {
	PuzzleID string
	Grids    []string
	Complete bool
}

// key: compute the cache key for a solutionEntry.
func (se *solutionEntry) key() string {
	return rdEnv + ":SOL:" + se.PuzzleID
}

// LoadSolutions returns the stored solutions of a puzzle, if
// what's stored can answer a request for up to max of them.  A
// stored enumeration that was cut off below max is a miss, and
// the caller has to recompute.
func LoadSolutions(id string, max int) (puzzle.SolutionsResult, bool) {
	if max < 1 {
		max = 1
	}
	se := &solutionEntry{PuzzleID: id}
	if !se.load() {
		return puzzle.SolutionsResult{}, false
	}
	if !se.Complete && len(se.Grids) < max {
		return puzzle.SolutionsResult{}, false
	}
	result := puzzle.SolutionsResult{Grids: se.Grids, Complete: se.Complete}
	if len(result.Grids) > max {
		result.Grids = result.Grids[:max]
		result.Complete = false
	}
	return result, true
}

// SaveSolutions stores the outcome of a solutions computation
// against its puzzle, in both tiers, replacing any earlier
// stored outcome.
func SaveSolutions(id string, result puzzle.SolutionsResult) {
	grids := result.Grids
	if grids == nil {
		// a conflicted puzzle has no solution grids at all;
		// store an empty list, not a null
		grids = []string{}
	}
	se := &solutionEntry{PuzzleID: id, Grids: grids, Complete: result.Complete}
	se.databaseSave()
	se.cacheInsert()
	log.Printf("Stored %d solutions (complete %t) for puzzle %q.",
		len(se.Grids), se.Complete, id)
}

// load fills the entry from the cache or, failing that, the
// database (caching what it finds).  Returns whether the entry
// is stored at all.
func (se *solutionEntry) load() bool {
	if se.cacheLoad() {
		return true
	}
	if !se.databaseLoad() {
		return false
	}
	se.cacheInsert()
	return true
}

// cacheLoad: load an already cached solution entry.  Returns
// whether the entry was found in the cache.
func (se *solutionEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", se.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading solutions of %q: %v", se.PuzzleID, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var sse *solutionEntry
	if err := json.Unmarshal(bytes, &sse); err != nil {
		panic(fmt.Errorf("Failed to unmarshal solutions of %q: %v", se.PuzzleID, err))
	}
	if sse.PuzzleID != se.PuzzleID {
		panic(fmt.Errorf("Cached solutions (id: %q) found for puzzle %q!",
			sse.PuzzleID, se.PuzzleID))
	}
	*se = *sse
	return true
}

// databaseLoad: load a solution entry from the database.
// Returns whether a stored entry was found.
func (se *solutionEntry) databaseLoad() (found bool) {
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(context.Background(),
			"SELECT gridList, complete FROM solutions "+
				"WHERE puzzleId = $1", se.PuzzleID)
		err := row.Scan(&se.Grids, &se.Complete)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Failure looking up solutions of %q: %v", se.PuzzleID, err)
		}
		found = true
		return nil
	}
	pgExecute(body)
	return
}

// cacheInsert: insert a solution entry into the cache.  Replaces
// any existing entry with the same id.
func (se *solutionEntry) cacheInsert() {
	bytes, e := json.Marshal(se)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal solutions of %q: %v", se.PuzzleID, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", se.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving solutions of %q: %v", se.PuzzleID, err)
		}
		return
	}
	rdExecute(body)
}

// databaseSave: upsert a solution entry in the database.
func (se *solutionEntry) databaseSave() {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(context.Background(),
			"INSERT INTO solutions (puzzleId, gridList, complete) "+
				"VALUES ($1, $2, $3) "+
				"ON CONFLICT (puzzleId) DO UPDATE SET gridList = $2, complete = $3",
			se.PuzzleID, se.Grids, se.Complete)
		if err != nil {
			err = fmt.Errorf("Database error saving solutions of %q: %v", se.PuzzleID, err)
		}
		return
	}
	pgExecute(body)
}
