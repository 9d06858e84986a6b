package client

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/wirelyre/sudoku/puzzle"
	"github.com/wirelyre/sudoku/storage"
)

/*

solver pages

*/

// A templateSolverPage contains the values to fill the solver
// page template.
type templateSolverPage struct {
	SessionID, PuzzleID       string
	Title, TopHead            string
	IconFile, CssFile, JsFile string
	Puzzle                    templatePuzzle
	Empty                     int
	Conflict                  bool
	ApplicationFooter         string
}

// templatePuzzle is the structure expected by the puzzle grid
// section of the solver page template.
type templatePuzzle [][]templatePuzzleCell

// A templatePuzzleCell contains the cell's index, value, and CSS
// styling classes as expected by the puzzle grid section of the
// solver page template.
type templatePuzzleCell struct {
	Index                   int
	Value                   template.HTML
	Shade, HBorder, VBorder string
}

// add solver statics to the static list
func init() {
	staticResourcePaths["/solver.js"] = "solver.js"
}

// SolverPage executes the solver page template over the passed
// session and puzzle state, and returns the solver page content
// as a string.  If there is an error, what's returned is the
// error page content as a string.
func SolverPage(sessionID string, puzzleID string, state *puzzle.State) string {
	tp, err := gridTemplatePuzzle(state.Values)
	if err != nil {
		return ErrorPage(err)
	}

	tsp := templateSolverPage{
		SessionID:         sessionID,
		PuzzleID:          puzzleID,
		Title:             fmt.Sprintf("%s: Solver", brandName),
		TopHead:           "Puzzle Solver",
		IconFile:          iconPath,
		CssFile:           cssPath,
		JsFile:            "/solver.js",
		Puzzle:            tp,
		Empty:             state.Empty,
		Conflict:          state.Conflict,
		ApplicationFooter: applicationFooter(),
	}

	tmpl, err := loadPageTemplate("solver")
	if err != nil {
		return ErrorPage(fmt.Errorf("Couldn't load the %q template: %v", "solver", err))
	}
	buf := new(bytes.Buffer)
	err = tmpl.Execute(buf, tsp)
	if err != nil {
		return ErrorPage(err)
	}
	return buf.String()
}

// gridTemplatePuzzle takes the values of a puzzle and returns
// the appropriate templatePuzzle.  Errors mean the given values
// have the wrong shape for a standard grid.
func gridTemplatePuzzle(vals []int) (templatePuzzle, error) {
	if len(vals) != 81 {
		return nil, fmt.Errorf("Puzzle cell count is %v: not a standard grid.", len(vals))
	}
	rows := make(templatePuzzle, 9)
	for i := 0; i < 9; i++ {
		rows[i] = make([]templatePuzzleCell, 9)
		// is this top, bottom, or middle row of box
		hborder := "middle"
		if i%3 == 0 {
			hborder = "top"
		} else if i%3 == 2 {
			hborder = "bottom"
		}
		for j := 0; j < 9; j++ {
			index := i*9 + j
			value := template.HTML("&nbsp;")
			if val := vals[index]; val > 0 {
				value = template.HTML(fmt.Sprint(val))
			}
			box := i/3 + j/3
			// even box or odd box shading
			shade := "lighter"
			if box%2 == 0 {
				shade = "darker"
			}
			// is this left, center, or right column of box
			vborder := "center"
			if j%3 == 0 {
				vborder = "left"
			} else if j%3 == 2 {
				vborder = "right"
			}
			rows[i][j] = templatePuzzleCell{
				Index:   index,
				Value:   value,
				Shade:   shade,
				HBorder: hborder,
				VBorder: vborder,
			}
		}
	}
	return rows, nil
}

/*

error pages

*/

// A templateErrorPage contains the values to fill the error page
// template.
type templateErrorPage struct {
	Title, TopHead, Message string
	IconFile, CssFile       string
	ReportBugPage           string
	ApplicationFooter       string
}

// ErrorPage executes the error page template over the passed
// error, and returns the error page content as a string.  It
// never fails: if the template itself can't be used, it falls
// back to a plain-text message.
func ErrorPage(e error) string {
	tep := templateErrorPage{
		Title:             fmt.Sprintf("%s: Error", brandName),
		TopHead:           "Error Page",
		Message:           e.Error(),
		IconFile:          iconPath,
		CssFile:           cssPath,
		ReportBugPage:     reportBugPage,
		ApplicationFooter: applicationFooter(),
	}

	tmpl, err := loadPageTemplate("error")
	if err != nil {
		return fmt.Sprintf("Couldn't load the %q template: %v", "error", err)
	}
	buf := new(bytes.Buffer)
	err = tmpl.Execute(buf, tep)
	if err != nil {
		return fmt.Sprintf("A templating error has occurred: %v", err)
	}
	return buf.String()
}

/*

home page

*/

// A templateHomePage contains the values to fill the home page
// template.
type templateHomePage struct {
	SessionID, PuzzleID       string
	Title, TopHead            string
	IconFile, CssFile, JsFile string
	Puzzles                   []*storage.PuzzleInfo
	ApplicationFooter         string
}

// add home statics to the static list
func init() {
	staticResourcePaths["/home.js"] = "home.js"
}

// HomePage executes the home page template over the passed
// session and puzzle list, and returns the home page content as
// a string.  The entry for the session's current puzzle is
// marked in the list.  If there is an error, what's returned is
// the error page content as a string.
func HomePage(sessionID string, puzzleID string, puzzles []*storage.PuzzleInfo) string {
	thp := templateHomePage{
		SessionID:         sessionID,
		PuzzleID:          puzzleID,
		Title:             fmt.Sprintf("%s: Home", brandName),
		TopHead:           brandName,
		IconFile:          iconPath,
		CssFile:           cssPath,
		JsFile:            "/home.js",
		Puzzles:           puzzles,
		ApplicationFooter: applicationFooter(),
	}

	tmpl, err := loadPageTemplate("home")
	if err != nil {
		return ErrorPage(fmt.Errorf("Couldn't load the %q template: %v", "home", err))
	}
	buf := new(bytes.Buffer)
	err = tmpl.Execute(buf, thp)
	if err != nil {
		return ErrorPage(err)
	}
	return buf.String()
}

/*

application footer

*/

// applicationFooter - the application footer that shows at the
// bottom of all pages.
func applicationFooter() string {
	appName := os.Getenv(applicationNameEnvVar)
	appEnv := os.Getenv(applicationEnvEnvVar)
	appVersion := os.Getenv(applicationVersionEnvVar)
	appInstance := os.Getenv(applicationInstanceEnvVar)
	appBuild := os.Getenv(applicationBuildEnvVar)

	if appName == "" {
		appName = brandName
	}

	if appEnv == "" {
		appEnv = "local"
	}

	if appVersion != "" {
		appVersion = " " + appVersion
	}
	if len(appBuild) >= 7 {
		appBuild = appBuild[:7]
	}

	if appInstance != "" {
		appInstance = " (dyno " + appInstance + ")"
	}

	switch appEnv {
	case "local":
		return "[" + appName + " local]"
	case "dev":
		return "[" + appName + " CI/CD]"
	case "stg":
		return "[" + appName + appVersion + " <" + appBuild + ">]"
	case "prd":
		return "[" + appName + appVersion + " <" + appBuild + ">" + appInstance + "]"
	}
	return "[" + appName + " <??>]"
}
