package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/wirelyre/sudoku/client"
	"github.com/wirelyre/sudoku/puzzle"
	"github.com/wirelyre/sudoku/storage"
)

const cookieName = "sudokanID"
const cookiePath = "/"

var startTime = time.Now()

/*

session handling

*/

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
//
// Cookies are qualified by the transport protocol, because
// Heroku-served instances get both HTTP and HTTPS traffic at the
// same endpoint.  Browsers will offer a cookie set over HTTP to
// the HTTPS endpoint as well, so tabs on different protocols
// would otherwise share and fight over one stored session.
func getCookie(w http.ResponseWriter, r *http.Request) string {
	proto := "httpx" // absent other indicators, protocol is unknown

	// Heroku-transported protocols are specified in a header
	if herokuProtocol := r.Header.Get("X-Forwarded-Proto"); herokuProtocol != "" {
		proto = herokuProtocol
	}

	// check for an existing cookie whose value matches the protocol
	if sc, e := r.Cookie(cookieName); e == nil {
		if m, e := regexp.MatchString(proto+"-[0-9a-z]{3,}", sc.Value); e == nil && m {
			return sc.Value
		}
	}

	// no session cookie or not a valid session cookie,
	// start a new session with a new cookie
	sid := proto + "-" + strconv.FormatInt(int64(time.Since(startTime)), 36)
	sc := &http.Cookie{Name: cookieName, Value: sid, Path: cookiePath}
	http.SetCookie(w, sc)
	return sid
}

// sessionSelect resumes the stored session for the request's
// cookie, or starts a new one on the default puzzle.
func sessionSelect(w http.ResponseWriter, r *http.Request) *storage.Session {
	session := &storage.Session{SID: getCookie(w, r)}
	if !session.Lookup() {
		session.SelectPuzzle("")
	}
	return session
}

/*

page handlers

*/

func writePage(w http.ResponseWriter, status int, body string) {
	hs := w.Header()
	hs.Add("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func homeHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	body := client.HomePage(session.SID, session.PID, storage.ListPuzzles())
	writePage(w, http.StatusOK, body)
}

func solverHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	state := session.Grid.State()
	body := client.SolverPage(session.SID, session.PID, &state)
	writePage(w, http.StatusOK, body)
}

/*

api handlers

*/

// writeJSON sends a JSON response the way the puzzle handlers
// do.
func writeJSON(w http.ResponseWriter, status int, body any) {
	bytes, e := json.Marshal(body)
	if e != nil {
		http.Error(w, e.Error(), http.StatusInternalServerError)
		return
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

// jsonError sends a puzzle Error as a 400 response.  Other error
// types fall back to plain text.
func jsonError(w http.ResponseWriter, e error) {
	if perr, ok := e.(puzzle.Error); ok {
		perr.Message = perr.Error()
		writeJSON(w, http.StatusBadRequest, perr)
		return
	}
	http.Error(w, e.Error(), http.StatusBadRequest)
}

// postOnly guards the state-changing endpoints.
func postOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == "POST" {
		return true
	}
	log.Printf("%s %s unexpected; no action taken.", r.Method, r.URL.Path)
	http.Error(w, "This endpoint requires POST.", http.StatusMethodNotAllowed)
	return false
}

func apiHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/state":
		session.Grid.StateHandler(w, r)
		log.Printf("Returned current state of session %v.", session.SID)
	case "/api/assign":
		if !postOnly(w, r) {
			return
		}
		update, e := session.Grid.AssignHandler(w, r)
		if e != nil {
			log.Printf("Assign failed, returned error, no session change.")
		} else {
			session.RecordClue(update.Choice)
			log.Printf("Assign succeeded, returned update.")
		}
	case "/api/back":
		if !postOnly(w, r) {
			return
		}
		session.RemoveClue()
		session.Grid.StateHandler(w, r)
	case "/api/reset":
		if !postOnly(w, r) {
			return
		}
		session.ClearClues()
		session.Grid.StateHandler(w, r)
	case "/api/solutions":
		solutionsHandler(session, w, r)
	case "/api/new":
		if !postOnly(w, r) {
			return
		}
		newHandler(session, w, r)
	default:
		http.NotFound(w, r)
	}
}

// solutionsHandler answers a solutions request from storage when
// it can.  Solutions are stored per puzzle, so they only apply
// while the session is at the puzzle's starting point; once the
// session has clues of its own the position is solved directly
// and nothing is stored.
func solutionsHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	if len(session.Clues()) > 0 {
		if _, e := session.Grid.SolutionsHandler(w, r); e == nil {
			log.Printf("Solved session %v's current position.", session.SID)
		}
		return
	}
	if result, ok := storage.LoadSolutions(session.PID, puzzle.SolutionsArg(r)); ok {
		writeJSON(w, http.StatusOK, result)
		log.Printf("Returned stored solutions of puzzle %q.", session.PID)
		return
	}
	result, e := session.Grid.SolutionsHandler(w, r)
	if e == nil {
		storage.SaveSolutions(session.PID, *result)
		log.Printf("Solved puzzle %q and stored the solutions.", session.PID)
	}
}

// newPuzzleResponse carries the stored ID of a new puzzle along
// with its starting state.
type newPuzzleResponse struct {
	PuzzleID string       `json:"puzzleID"`
	State    puzzle.State `json:"state"`
}

// newHandler saves a posted puzzle and switches the session to
// it.  The puzzle's name, if any, comes from the request's name
// argument.
func newHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	var posted puzzle.State
	if e := json.NewDecoder(r.Body).Decode(&posted); e != nil {
		jsonError(w, e)
		return
	}
	id, e := storage.SavePuzzle(r.FormValue("name"), posted.Values)
	if e != nil {
		jsonError(w, e)
		return
	}
	session.SelectPuzzle(id)
	writeJSON(w, http.StatusOK, newPuzzleResponse{PuzzleID: id, State: session.Grid.State()})
	log.Printf("Session %v is now solving new puzzle %q.", session.SID, id)
}

/*

dispatch

*/

// dispatch serves one request.  Storage failures surface as
// panics, so they are recovered here and turned into error
// pages.
func dispatch(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("Handler panic on %s %s: %v", r.Method, r.URL.Path, err)
			writePage(w, http.StatusInternalServerError, client.ErrorPage(fmt.Errorf("%v", err)))
		}
	}()
	if client.StaticHandler(w, r) {
		return
	}
	log.Printf("Handling %s %s...", r.Method, r.URL.Path)
	session := sessionSelect(w, r)
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/"):
		apiHandler(session, w, r)
	case strings.HasPrefix(r.URL.Path, "/select/"):
		session.SelectPuzzle(strings.TrimPrefix(r.URL.Path, "/select/"))
		http.Redirect(w, r, "/solver/", http.StatusFound)
	case strings.HasPrefix(r.URL.Path, "/solver/"):
		solverHandler(session, w, r)
	case r.URL.Path == "/":
		homeHandler(session, w, r)
	default:
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func main() {
	if err := client.VerifyResources(); err != nil {
		log.Fatalf("Resource verification failure: %v", err)
	}
	cacheId, databaseId, err := storage.Connect()
	if err != nil {
		log.Fatalf("Storage initialization failure: %v", err)
	}
	log.Printf("Connected to cache at %q.", cacheId)
	log.Printf("Connected to database at %q.", databaseId)

	http.HandleFunc("/", dispatch)

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	srv := &http.Server{Addr: port}
	go func() {
		log.Printf("Listening on %s...", port)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Listener failure: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Printf("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown failure: %v", err)
	}
	storage.Close()
}
