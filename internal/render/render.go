// Package render provides HTML template rendering for both the public
// site and the admin interface. Page templates are embedded at compile
// time and paired with their section's base layout. Every render injects
// the current session, CSRF token, and any pending flash messages.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"inkpress/internal/middleware"
	"inkpress/internal/session"
)

//go:embed templates/site/*.html templates/admin/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string          // Page title for the <title> tag
	Section   string          // Active nav section (e.g. "home", "chat", "posts")
	Session   *session.Data   // Current user session (nil if unauthenticated)
	CSRFToken string          // CSRF token for forms
	Flashes   []session.Flash // One-time notification messages
	Data      map[string]any  // Page-specific data
	Errors    map[string]string // Field-level validation errors, if any
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	sessions  *session.Store
	devMode   bool
}

// New creates a Renderer by parsing all embedded templates. Site pages
// pair with templates/site/base.html, admin pages (registered under an
// "admin_" prefix) with templates/admin/base.html. When devMode is true,
// templates load assets from CDN instead of the embedded static files.
func New(sessions *session.Store, devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		sessions:  sessions,
		devMode:   devMode,
	}

	funcMap := template.FuncMap{
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// isDev returns true when the app runs in development mode.
		"isDev": func() bool {
			return devMode
		},
		// activeClass highlights the current nav section.
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
	}

	for _, dir := range []string{"site", "admin"} {
		entries, err := templateFS.ReadDir("templates/" + dir)
		if err != nil {
			return nil, fmt.Errorf("read embedded templates: %w", err)
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
				continue
			}

			tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
				templateFS,
				"templates/"+dir+"/base.html",
				"templates/"+dir+"/"+name,
			)
			if err != nil {
				return nil, fmt.Errorf("parse template %s/%s: %w", dir, name, err)
			}

			tmplName := strings.TrimSuffix(name, ".html")
			if dir == "admin" {
				tmplName = "admin_" + tmplName
			}
			r.templates[tmplName] = tmpl
		}
	}

	return r, nil
}

// Page renders a full page. The session, CSRF token, and pending flash
// messages are filled in from the request when the caller leaves them unset.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Flashes == nil && rn.sessions != nil {
		data.Flashes = rn.sessions.PopFlashes(r.Context(), r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := executeTemplate(w, tmpl, "base.html", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// PageWithStatus renders a page with a non-200 status code (e.g. a 404
// page, or a form re-render flagged as 422 for tests and crawlers).
func (rn *Renderer) PageWithStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Flashes == nil && rn.sessions != nil {
		data.Flashes = rn.sessions.PopFlashes(r.Context(), r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := executeTemplate(w, tmpl, "base.html", data); err != nil {
		// Headers are already sent; nothing more we can do.
		return
	}
}

// NotFound renders the shared 404 page.
func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.PageWithStatus(w, r, http.StatusNotFound, "not_found", &PageData{
		Title: "Not Found",
	})
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}
