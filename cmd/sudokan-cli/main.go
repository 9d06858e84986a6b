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

// Command-line client for the sudokan puzzle utilities
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/wirelyre/sudoku/dbprep"
	"github.com/wirelyre/sudoku/puzzle"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

/*

commands

*/

func newRootCommand() *cobra.Command {
	var profileRun bool
	var profiler interface{ Stop() }

	root := &cobra.Command{
		Use:   "sudokan-cli",
		Short: "Solve and explore Sudoku puzzles without a server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if profileRun {
				profiler = profile.Start()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if profiler != nil {
				profiler.Stop()
			}
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&profileRun, "profile", false,
		"write a CPU profile for this run")
	root.AddCommand(
		newShowCommand(),
		newSolveCommand(),
		newCountCommand(),
		newShellCommand(),
	)
	return root
}

func newShowCommand() *cobra.Command {
	var digit int
	cmd := &cobra.Command{
		Use:   "show [PUZZLE]",
		Short: "Print a puzzle and what remains possible",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readPuzzle(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			grid, err := puzzle.NewGrid(values)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, puzzle.ValuesDiagram(grid.Values()))
			fmt.Fprintf(out, "%s\n", gridStatus(grid))
			if grid.Conflict() {
				return nil
			}
			engine, err := puzzle.Prepare(values)
			if err != nil {
				return err
			}
			if digit != 0 {
				if digit < 1 || digit > 9 {
					return fmt.Errorf("digit %d is not between 1 and 9", digit)
				}
				pattern := engine.DigitPattern(digit)
				fmt.Fprintf(out, "\nCells where %d remains possible:\n%s", digit, pattern)
				fmt.Fprintf(out, "Viable templates: %d\n", countTemplates(pattern))
				return nil
			}
			fmt.Fprintf(out, "\nCandidates after propagation:\n%s", engine)
			return nil
		},
	}
	cmd.Flags().IntVar(&digit, "digit", 0, "show where one digit remains possible")
	return cmd
}

func countTemplates(pattern puzzle.Pattern) (n int) {
	for range puzzle.TemplatesWithin(pattern) {
		n++
	}
	return
}

func newSolveCommand() *cobra.Command {
	var max int
	cmd := &cobra.Command{
		Use:   "solve [PUZZLE]",
		Short: "Print completions of a puzzle, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := openGrid(cmd, args)
			if err != nil {
				return err
			}
			result := grid.Solutions(max)
			if len(result.Grids) == 0 {
				return fmt.Errorf("the puzzle has no solutions")
			}
			out := cmd.OutOrStdout()
			for _, solution := range result.Grids {
				fmt.Fprintln(out, solution)
			}
			if !result.Complete {
				fmt.Fprintf(cmd.ErrOrStderr(), "More solutions exist.\n")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&max, "max", 1, "maximum number of solutions to print")
	return cmd
}

func newCountCommand() *cobra.Command {
	var max int
	cmd := &cobra.Command{
		Use:   "count [PUZZLE]",
		Short: "Count the solutions of a puzzle",
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := openGrid(cmd, args)
			if err != nil {
				return err
			}
			result := grid.Solutions(max)
			out := cmd.OutOrStdout()
			if result.Complete {
				fmt.Fprintf(out, "Solutions found: %d\n", len(result.Grids))
			} else {
				fmt.Fprintf(out, "Solutions found: %d (stopped at the limit)\n",
					len(result.Grids))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&max, "max", 100, "stop counting after this many solutions")
	return cmd
}

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [PUZZLE]",
		Short: "Explore a puzzle interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := dbprep.DefaultPuzzle()
			if len(args) > 0 {
				var err error
				values, err = readPuzzle(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}
			}
			session, err := newShellSession(values)
			if err != nil {
				return err
			}
			return listener(cmd.OutOrStdout(), cmd.InOrStdin(), session)
		},
	}
}

// readPuzzle resolves a puzzle argument.  An argument starting
// with "@" names a file holding the puzzle, "-" or a missing
// argument reads it from standard input, and anything else is
// the puzzle itself, in as many arguments as it takes.
func readPuzzle(in io.Reader, args []string) ([]int, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		content, err := io.ReadAll(in)
		if err != nil {
			return nil, err
		}
		return puzzle.ParseGrid(string(content))
	}
	if strings.HasPrefix(args[0], "@") {
		content, err := os.ReadFile(strings.TrimPrefix(args[0], "@"))
		if err != nil {
			return nil, err
		}
		return puzzle.ParseGrid(string(content))
	}
	return puzzle.ParseGrid(strings.Join(args, " "))
}

func openGrid(cmd *cobra.Command, args []string) (*puzzle.Grid, error) {
	values, err := readPuzzle(cmd.InOrStdin(), args)
	if err != nil {
		return nil, err
	}
	return puzzle.NewGrid(values)
}

// gridStatus phrases a grid's condition the way the solver page
// does, so the CLI and the web client agree.
func gridStatus(grid *puzzle.Grid) string {
	switch {
	case grid.Conflict():
		return "The entered values conflict."
	case grid.Empty() == 0:
		return "Puzzle solved!"
	default:
		return fmt.Sprintf("%d cells left to fill.", grid.Empty())
	}
}

/*

shell listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

var bufsize = 4096

// listener reads lines and dispatches them to handlers
func listener(out io.Writer, in io.Reader, session *shellSession) error {
	// if we are on a terminal, we do prompting
	// (see http://stackoverflow.com/questions/22744443/ for source)
	prompt := false
	if f, ok := out.(*os.File); ok {
		if stat, _ := f.Stat(); (stat.Mode() & os.ModeCharDevice) != 0 {
			prompt = true
		}
	}

	input := bufio.NewReaderSize(in, bufsize)
	for {
		if prompt {
			fmt.Fprintf(out, "sudokan> ")
		}
		line, err := input.ReadString('\n')
		r := &request{inline: strings.Trim(line, " \t\r\n")}
		args := strings.Split(r.inline, " ")
		r.command = strings.ToLower(args[0])
		for _, arg := range args[1:] {
			if len(arg) > 0 {
				r.args = append(r.args, arg)
			}
		}
		switch r.command {
		case "":
		case "quit", "exit":
			return nil
		default:
			dispatchCommand(session, out, r)
		}
		switch err {
		case nil:
		case io.EOF:
			if prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return nil
		default:
			if prompt {
				fmt.Fprintf(out, " (read error)\n")
			}
			return err
		}
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(*shellSession, io.Writer, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"assign", "cell value", "assign a value to a cell", assignHandler},
		{"back", "", "undo the last assignment", backHandler},
		{"candidates", "[cell]", "show candidates for one or all cells", candidatesHandler},
		{"count", "[limit]", "count solutions up to a limit", countHandler},
		{"help", "", "show this command list", helpHandler},
		{"load", "grid|@file", "start over with a new puzzle", loadHandler},
		{"reset", "", "take back every assignment", resetHandler},
		{"show", "", "show the current position", showHandler},
		{"solve", "[limit]", "show completions of the position", solveHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(session *shellSession, w io.Writer, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(session, w, r)
	}
}

/*

request handlers

*/

func assignHandler(session *shellSession, w io.Writer, r *request) {
	if len(r.args) != 2 {
		usageHandler(fmt.Sprintf("%s requires a cell and a value", r.command), w, r)
		return
	}
	index, err := parseCell(r.args[0])
	if err != nil {
		usageHandler(err.Error(), w, r)
		return
	}
	value, err := strconv.Atoi(r.args[1])
	if err != nil {
		usageHandler(fmt.Sprintf("%s value (%s) must be a number", r.command, r.args[1]), w, r)
		return
	}
	if err := session.assign(puzzle.Choice{Index: index, Value: value}); err != nil {
		fmt.Fprintf(w, "Assign failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Assign succeeded:\n")
	showHandler(session, w, r)
}

func backHandler(session *shellSession, w io.Writer, r *request) {
	if len(session.clues) == 0 {
		fmt.Fprintf(w, "No choices to undo.\n")
		return
	}
	session.clues = session.clues[:len(session.clues)-1]
	session.rebuild()
	showHandler(session, w, r)
}

func candidatesHandler(session *shellSession, w io.Writer, r *request) {
	if session.grid.Conflict() {
		fmt.Fprintf(w, "The entered values conflict; no candidates.\n")
		return
	}
	if len(r.args) > 0 {
		index, err := parseCell(r.args[0])
		if err != nil {
			usageHandler(err.Error(), w, r)
			return
		}
		printCandidates(w, session.grid, index)
		return
	}
	for _, index := range session.emptyCells() {
		printCandidates(w, session.grid, index)
	}
}

func printCandidates(w io.Writer, grid *puzzle.Grid, index int) {
	fmt.Fprintf(w, "%s: %v\n", cellName(index), grid.Candidates(index/9, index%9))
}

func countHandler(session *shellSession, w io.Writer, r *request) {
	limit := 100
	if len(r.args) > 0 {
		n, err := strconv.Atoi(r.args[0])
		if err != nil || n < 1 {
			usageHandler(fmt.Sprintf("%s limit (%s) must be a positive number", r.command, r.args[0]), w, r)
			return
		}
		limit = n
	}
	result := session.grid.Solutions(limit)
	if result.Complete {
		fmt.Fprintf(w, "Solutions found: %d\n", len(result.Grids))
	} else {
		fmt.Fprintf(w, "Solutions found: %d (stopped at the limit)\n", len(result.Grids))
	}
}

func helpHandler(session *shellSession, w io.Writer, r *request) {
	printUsage(w)
}

func loadHandler(session *shellSession, w io.Writer, r *request) {
	if len(r.args) == 0 {
		usageHandler(fmt.Sprintf("%s requires a grid or @file argument", r.command), w, r)
		return
	}
	if r.args[0] == "-" {
		usageHandler("the shell cannot load a puzzle from standard input", w, r)
		return
	}
	values, err := readPuzzle(nil, r.args)
	if err != nil {
		fmt.Fprintf(w, "Load failed: %v\n", err)
		return
	}
	if err := session.load(values); err != nil {
		fmt.Fprintf(w, "Load failed: %v\n", err)
		return
	}
	showHandler(session, w, r)
}

func resetHandler(session *shellSession, w io.Writer, r *request) {
	session.clues = nil
	session.rebuild()
	showHandler(session, w, r)
}

func showHandler(session *shellSession, w io.Writer, r *request) {
	fmt.Fprint(w, puzzle.ValuesDiagram(session.grid.Values()))
	fmt.Fprintf(w, "%s\n", gridStatus(session.grid))
}

func solveHandler(session *shellSession, w io.Writer, r *request) {
	max := 1
	if len(r.args) > 0 {
		n, err := strconv.Atoi(r.args[0])
		if err != nil || n < 1 {
			usageHandler(fmt.Sprintf("%s limit (%s) must be a positive number", r.command, r.args[0]), w, r)
			return
		}
		max = n
	}
	result := session.grid.Solutions(max)
	if len(result.Grids) == 0 {
		fmt.Fprintf(w, "This position cannot be completed.\n")
		return
	}
	for i, solution := range result.Grids {
		if i > 0 {
			fmt.Fprintln(w)
		}
		values, err := puzzle.ParseGrid(solution)
		if err != nil {
			panic(err)
		}
		fmt.Fprint(w, puzzle.ValuesDiagram(values))
	}
	switch {
	case !result.Complete:
		fmt.Fprintf(w, "More solutions exist.\n")
	case len(result.Grids) == 1:
		fmt.Fprintf(w, "This is the only solution.\n")
	default:
		fmt.Fprintf(w, "These are all the solutions.\n")
	}
}

func printUsage(w io.Writer) {
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "    %10s %-11s\t%s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  and 'quit' or EOF to exit.\n")
}

func usageHandler(msg string, w io.Writer, r *request) {
	fmt.Fprintf(w, "Error: %s\nUsage:\n", msg)
	printUsage(w)
}

func errorHandler(err interface{}, w io.Writer, r *request) {
	fmt.Fprintf(w, "Panic executing %q: %v\n", r.inline, err)
	log.Printf("Shell error executing %q: %v", r.inline, err)
}

/*

cell addressing

*/

// parseCell turns a cell reference like "c7" (row letter, then
// column number) into a cell index.
func parseCell(ref string) (int, error) {
	if len(ref) < 2 {
		return 0, fmt.Errorf("cell reference %q is too short", ref)
	}
	row := int(lower(ref[0]) - 'a')
	if row < 0 || row >= 9 {
		return 0, fmt.Errorf("cell reference %q row must be a through i", ref)
	}
	col, err := strconv.Atoi(ref[1:])
	if err != nil {
		return 0, fmt.Errorf("cell reference %q column is not a number", ref)
	}
	if col < 1 || col > 9 {
		return 0, fmt.Errorf("cell reference %q column must be 1 through 9", ref)
	}
	return row*9 + (col - 1), nil
}

// cellName is the inverse of parseCell.
func cellName(index int) string {
	return fmt.Sprintf("%c%d", 'a'+index/9, index%9+1)
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

/*

shell sessions

*/

// A shellSession is a solving session held entirely in memory:
// the puzzle it started from, the grid as it stands, and the
// assignments made along the way, oldest first.
type shellSession struct {
	base  []int
	grid  *puzzle.Grid
	clues []puzzle.Choice
}

func newShellSession(values []int) (*shellSession, error) {
	grid, err := puzzle.NewGrid(values)
	if err != nil {
		return nil, err
	}
	return &shellSession{base: grid.Values(), grid: grid}, nil
}

// assign applies a choice to the grid and, when the grid takes
// it, records it so back can take it back.
func (session *shellSession) assign(choice puzzle.Choice) error {
	if err := session.grid.Assign(choice); err != nil {
		return err
	}
	session.clues = append(session.clues, choice)
	return nil
}

// load starts the session over on a different puzzle.
func (session *shellSession) load(values []int) error {
	grid, err := puzzle.NewGrid(values)
	if err != nil {
		return err
	}
	session.base = grid.Values()
	session.grid = grid
	session.clues = nil
	return nil
}

// rebuild rederives the grid from the base values and the
// remaining clues.  The clues all applied cleanly once, so a
// replay failure means the session is corrupt.
func (session *shellSession) rebuild() {
	grid, err := puzzle.NewGrid(session.base)
	if err != nil {
		panic(err)
	}
	for _, choice := range session.clues {
		if err := grid.Assign(choice); err != nil {
			panic(err)
		}
	}
	session.grid = grid
}

// emptyCells lists the indexes of the cells with no value yet.
func (session *shellSession) emptyCells() (cells []int) {
	for i, v := range session.grid.Values() {
		if v == 0 {
			cells = append(cells, i)
		}
	}
	return
}
