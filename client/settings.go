package client

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"
)

/*

Common client settings

*/

const (
	brandName                      = "Sudokan"
	templatePageSuffix             = "Page.tmpl.html"
	defaultTemplateDirectoryEnvVar = "TEMPLATE_DIRECTORY"
	defaultStaticDirectoryEnvVar   = "STATIC_DIRECTORY"
	iconPath                       = "/favicon.svg"
	cssPath                        = "/app.css"
	reportBugPage                  = "https://github.com/wirelyre/sudoku/issues"
)

// Environment variables that identify the running application in
// the page footer.  The instance and build variables are the
// ones Heroku sets on its dynos.
const (
	applicationNameEnvVar     = "APPLICATION_NAME"
	applicationEnvEnvVar      = "APPLICATION_ENV"
	applicationVersionEnvVar  = "APPLICATION_VERSION"
	applicationInstanceEnvVar = "DYNO"
	applicationBuildEnvVar    = "SOURCE_VERSION"
)

// All the client's resources are compiled into the binary, so
// the server needs no files on disk.  The environment variables
// above can point either lookup at a directory instead, which is
// handy when editing pages against a running server.
//
//go:embed static
var embeddedResources embed.FS

// embeddedRoot is the prefix of every resource path inside
// embeddedResources.
const embeddedRoot = "static"

var staticResourcePaths = map[string]string{
	iconPath:      "favicon.svg",
	cssPath:       "app.css",
	"/robots.txt": "robots.txt",
}

// pageTemplateNames lists the page templates the client can
// render.  VerifyResources checks that all of them parse.
var pageTemplateNames = []string{"error", "home", "solver"}

// VerifyResources - check that all the static resources and page
// templates can be found and parsed, return error if not.
func VerifyResources() error {
	for urlPath, name := range staticResourcePaths {
		if dir := os.Getenv(defaultStaticDirectoryEnvVar); dir != "" {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
				return err
			}
		} else if _, err := fs.Stat(embeddedResources, path.Join(embeddedRoot, name)); err != nil {
			return fmt.Errorf("Static resource for %q is missing: %v", urlPath, err)
		}
	}
	for _, name := range pageTemplateNames {
		if _, err := loadPageTemplate(name); err != nil {
			return fmt.Errorf("Couldn't load the %q template: %v", name, err)
		}
	}
	return nil
}

/*

handle static resources

*/

// StaticHandler serves the static resources the pages refer to.
// It reports whether the request was for a known resource, so
// callers can fall through to their own routing when it wasn't.
func StaticHandler(w http.ResponseWriter, r *http.Request) bool {
	name, ok := staticResourcePaths[r.URL.Path]
	if ok {
		log.Printf("Serving static resource for %q", r.URL.Path)
		if dir := os.Getenv(defaultStaticDirectoryEnvVar); dir != "" {
			http.ServeFile(w, r, filepath.Join(dir, filepath.FromSlash(name)))
		} else {
			http.ServeFileFS(w, r, embeddedResources, path.Join(embeddedRoot, name))
		}
	}
	return ok
}

/*

find and parse templates

*/

// loadedTemplates is the cache of already-parsed templates.  The
// cache is shared by concurrent request handlers.
var (
	loadedTemplates = make(map[string]*template.Template)
	templateMutex   sync.Mutex
)

// loadPageTemplate does what you would expect: give it the
// template name, and it will find and parse the template file
// and return the resulting template.
func loadPageTemplate(name string) (*template.Template, error) {
	templateMutex.Lock()
	defer templateMutex.Unlock()
	if tmpl, ok := loadedTemplates[name]; ok {
		return tmpl, nil
	}
	var tmpl *template.Template
	var err error
	if dir := os.Getenv(defaultTemplateDirectoryEnvVar); dir != "" {
		tmpl, err = template.ParseFiles(filepath.Join(dir, name+templatePageSuffix))
	} else {
		tmpl, err = template.ParseFS(embeddedResources,
			path.Join(embeddedRoot, "tmpl", name+templatePageSuffix))
	}
	if err != nil {
		return nil, err
	}
	loadedTemplates[name] = tmpl
	return tmpl, nil
}
