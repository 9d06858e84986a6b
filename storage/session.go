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
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"

	"github.com/wirelyre/sudoku/puzzle"
)

// A Session tracks a user's progress through one puzzle: which
// puzzle they are solving and the choices they have made so far,
// oldest first.  The clue list is what persists; the grid is
// rebuilt from it by replay, so the session can go back (undo)
// any number of choices.
type Session struct {
	// these elements are persisted as part of the session
	SID     string // session ID
	PID     string // ID of puzzle being solved
	Created string // RFC3339 time when the session was created
	Saved   string // RFC3339 time when the session was last saved

	// the grid is rebuilt from the clues, never persisted
	Grid  *puzzle.Grid `redis:"-"`
	clues []puzzle.Choice
}

/*

session manipulation

*/

// Lookup: find the saved state for a session ID.  The cache is
// the fast path; if the cache has been flushed since the session
// was last saved, the state is rebuilt from the database and put
// back in the cache.
func (session *Session) Lookup() (found bool) {
	body := func(tx redis.Conn) error {
		vals, err := redis.Values(tx.Do("HGETALL", session.key()))
		if len(vals) > 0 {
			if err := redis.ScanStruct(vals, session); err != nil {
				log.Printf("Redis error on parse of saved session %q: %v", session.SID, err)
				return err
			}
			found = true
			return nil
		}
		if err != nil {
			log.Printf("Redis error on lookup of session %q: %v", session.SID, err)
			return err
		}
		return nil
	}
	rdExecute(body)
	if found {
		session.loadClues()
		session.loadGrid()
		return
	}

	// cold cache; see if the database remembers this session
	if session.databaseLoad() {
		log.Printf("Restored session %v from the database.", session.SID)
		session.cacheSave()
		session.loadGrid()
		found = true
	}
	return
}

// SelectPuzzle: point the session at a stored puzzle and clear
// any choices made so far.  An empty puzzle ID means stay on the
// session's current puzzle; the special value "default" (or an
// unknown ID) selects the default puzzle.
func (session *Session) SelectPuzzle(pid string) {
	if pid == "" {
		pid = session.PID
	}
	if pid == "" || pid == "default" {
		pid = defaultPuzzleID
	}
	entry := &puzzleEntry{PuzzleID: pid}
	if !entry.load() {
		if pid == defaultPuzzleID {
			panic(fmt.Errorf("No stored entry for the default puzzle %q", pid))
		}
		log.Printf("No stored puzzle %q; session %v gets the default.", pid, session.SID)
		entry = &puzzleEntry{PuzzleID: defaultPuzzleID}
		if !entry.load() {
			panic(fmt.Errorf("No stored entry for the default puzzle %q", defaultPuzzleID))
		}
	}
	session.PID = entry.PuzzleID
	session.clues = nil
	session.Grid = entry.makeGrid()
	if session.Created == "" {
		session.Created = time.Now().Format(time.RFC3339)
	}
	session.save()
	log.Printf("Reset session %v to start solving puzzle %q.", session.SID, session.PID)
}

// AddClue: assign a choice on the session's grid and, if the
// grid accepts it, append it to the persisted clue list.  A
// rejected choice changes nothing and returns the grid's error.
func (session *Session) AddClue(choice puzzle.Choice) error {
	if err := session.Grid.Assign(choice); err != nil {
		return err
	}
	session.RecordClue(choice)
	return nil
}

// RecordClue: append a choice that has already been applied to
// the session's grid to the persisted clue list.  Callers that
// assign through the grid's own handlers use this to keep the
// stored session in step with the grid.
func (session *Session) RecordClue(choice puzzle.Choice) {
	session.Saved = time.Now().Format(time.RFC3339)
	session.clues = append(session.clues, choice)
	bytes := marshalClue(choice)
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		_, err = tx.Do("RPUSH", session.cluesKey(), bytes)
		if err != nil {
			log.Printf("Redis error on save of %s:%q clue %d: %v",
				session.SID, session.PID, len(session.clues), err)
		}
		return
	}
	rdExecute(body)
	session.databaseSave()
	log.Printf("Added session %v:%v clue %d.", session.SID, session.PID, len(session.clues))
}

// RemoveClue: take back the most recent choice and restore the
// grid to the state before it.
func (session *Session) RemoveClue() {
	if len(session.clues) == 0 {
		// nothing to do
		return
	}
	session.Saved = time.Now().Format(time.RFC3339)
	session.clues = session.clues[:len(session.clues)-1]
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		_, err = tx.Do("LTRIM", session.cluesKey(), 0, -2)
		if err != nil {
			log.Printf("Redis error on remove of %s:%q clue %d: %v",
				session.SID, session.PID, len(session.clues)+1, err)
		}
		return
	}
	rdExecute(body)
	session.databaseSave()
	session.loadGrid()
	log.Printf("Reverted session %v:%v to %d clues.", session.SID, session.PID, len(session.clues))
}

// ClearClues: take back all the choices made in this session,
// restoring the grid to the puzzle's starting point.
func (session *Session) ClearClues() {
	if len(session.clues) == 0 {
		// nothing to do
		return
	}
	session.Saved = time.Now().Format(time.RFC3339)
	session.clues = nil
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		_, err = tx.Do("DEL", session.cluesKey())
		if err != nil {
			log.Printf("Redis error on clear of %s:%q clues: %v",
				session.SID, session.PID, err)
		}
		return
	}
	rdExecute(body)
	session.databaseSave()
	session.loadGrid()
	log.Printf("Reset session %v:%v to its starting point.", session.SID, session.PID)
}

// Clues returns a copy of the choices made so far in this
// session, oldest first.
func (session *Session) Clues() []puzzle.Choice {
	clues := make([]puzzle.Choice, len(session.clues))
	copy(clues, session.clues)
	return clues
}

/*

rebuilding session state

*/

// loadClues - read the persisted clue list from the cache
func (session *Session) loadClues() {
	var items [][]byte
	body := func(tx redis.Conn) (err error) {
		items, err = redis.ByteSlices(tx.Do("LRANGE", session.cluesKey(), 0, -1))
		if err != nil {
			log.Printf("Redis error on load of %s:%q clues: %v",
				session.SID, session.PID, err)
		}
		return
	}
	rdExecute(body)
	session.clues = make([]puzzle.Choice, len(items))
	for i, bytes := range items {
		if err := json.Unmarshal(bytes, &session.clues[i]); err != nil {
			log.Printf("Failed to unmarshal saved clue %d of %s:%q: %v",
				i+1, session.SID, session.PID, err)
			panic(err)
		}
	}
}

// loadGrid rebuilds the session's grid by replaying its clues
// against its puzzle.  A session whose puzzle has vanished gets
// the default puzzle; a session whose clues no longer apply gets
// its starting point back.
func (session *Session) loadGrid() {
	entry := &puzzleEntry{PuzzleID: session.PID}
	if !entry.load() {
		log.Printf("Session %v's puzzle %q is gone; selecting the default.",
			session.SID, session.PID)
		session.SelectPuzzle(defaultPuzzleID)
		return
	}
	session.Grid = entry.makeGrid()
	for i, choice := range session.clues {
		if err := session.Grid.Assign(choice); err != nil {
			log.Printf("Session %v:%v clue %d no longer applies (%v); clearing clues.",
				session.SID, session.PID, i+1, err)
			session.ClearClues()
			return
		}
	}
}

/*

persistence

*/

// save - write the whole session to both tiers
func (session *Session) save() {
	session.Saved = time.Now().Format(time.RFC3339)
	session.cacheSave()
	session.databaseSave()
}

// cacheSave - write the whole session, clues included, to the
// cache.  Used when (re)building the cache entry from scratch.
func (session *Session) cacheSave() {
	args := redis.Args{}.Add(session.cluesKey())
	for _, choice := range session.clues {
		args = args.Add(marshalClue(choice))
	}
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		if len(session.clues) == 0 {
			_, err = tx.Do("DEL", session.cluesKey())
		} else {
			tx.Send("DEL", session.cluesKey())
			_, err = tx.Do("RPUSH", args...)
		}
		if err != nil {
			log.Printf("Redis error on save of session %q: %v", session.SID, err)
		}
		return
	}
	rdExecute(body)
}

// databaseLoad - read the session row from the database.
// Returns false if the database has never seen this session.
func (session *Session) databaseLoad() (found bool) {
	body := func(tx pgx.Tx) error {
		var clues []int32
		row := tx.QueryRow(context.Background(),
			"SELECT puzzleId, clueList, created, saved FROM sessions "+
				"WHERE sessionId = $1", session.SID)
		err := row.Scan(&session.PID, &clues, &session.Created, &session.Saved)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			log.Printf("Database error on load of session %q: %v", session.SID, err)
			return err
		}
		session.clues = unflattenClues(clues)
		found = true
		return nil
	}
	pgExecute(body)
	return
}

// databaseSave - upsert the session row in the database
func (session *Session) databaseSave() {
	body := func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(),
			"INSERT INTO sessions (sessionId, puzzleId, clueList, created, saved) "+
				"VALUES ($1, $2, $3, $4, $5) "+
				"ON CONFLICT (sessionId) DO UPDATE SET puzzleId = $2, clueList = $3, saved = $5",
			session.SID, session.PID, flattenClues(session.clues),
			session.Created, session.Saved)
		if err != nil {
			log.Printf("Database error on save of session %q: %v", session.SID, err)
		}
		return err
	}
	pgExecute(body)
}

/*

serialization of clues into and out of the stores

*/

// marshalClue - get JSON for one clue
func marshalClue(choice puzzle.Choice) []byte {
	bytes, err := json.Marshal(choice)
	if err != nil {
		log.Printf("Failed to marshal clue %+v as JSON: %v", choice, err)
		panic(err)
	}
	return bytes
}

// clues cross into Postgres as a flat array of index/value pairs
// in a single integer array column
func flattenClues(clues []puzzle.Choice) []int32 {
	flat := make([]int32, 0, 2*len(clues))
	for _, choice := range clues {
		flat = append(flat, int32(choice.Index), int32(choice.Value))
	}
	return flat
}

func unflattenClues(flat []int32) []puzzle.Choice {
	clues := make([]puzzle.Choice, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		clues = append(clues, puzzle.Choice{Index: int(flat[i]), Value: int(flat[i+1])})
	}
	return clues
}

/*

session key generation

*/

// key - returns the session key
func (session *Session) key() string {
	return rdEnv + ":SID:" + session.SID
}

// cluesKey - returns the key for the session's clue list
func (session *Session) cluesKey() string {
	return session.key() + ":Clues"
}
