package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/crucial707/cpe-tracker/internal/auth"
	"github.com/crucial707/cpe-tracker/internal/export"
	"github.com/crucial707/cpe-tracker/internal/middleware"
	"github.com/crucial707/cpe-tracker/internal/service"
)

//go:embed templates
var templatesFS embed.FS

var pages = []string{
	"login.html",
	"register.html",
	"dashboard.html",
	"records.html",
	"record_form.html",
	"export.html",
}

// Server holds everything the page handlers need. Build it once in main and
// mount its methods on a router.
type Server struct {
	Users        *service.Users
	Records      *service.Records
	Sessions     *auth.SessionManager
	CookieSecure bool

	templates map[string]*template.Template
}

func NewServer(users *service.Users, records *service.Records, sessions *auth.SessionManager, cookieSecure bool) (*Server, error) {
	funcs := template.FuncMap{
		"hours": export.FormatHours,
	}
	tmpls := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		tmpls[name] = t
	}
	return &Server{
		Users:        users,
		Records:      records,
		Sessions:     sessions,
		CookieSecure: cookieSecure,
		templates:    tmpls,
	}, nil
}

// render executes page name inside the layout. Pending flashes and the
// current user are added to data.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	t, ok := s.templates[name]
	if !ok {
		serverError(w, r, fmt.Errorf("template %s not found", name))
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	flashes := popFlashes(w, r)
	if extra, ok := data["Flashes"].([]Flash); ok {
		flashes = append(flashes, extra...)
	}
	data["Flashes"] = flashes
	if u, ok := middleware.GetUser(r.Context()); ok {
		data["CurrentUser"] = u
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		serverError(w, r, fmt.Errorf("execute template %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirectWithFlash queues a message and sends the browser to target.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, category, message string) {
	addFlash(w, r, category, message)
	http.Redirect(w, r, target, http.StatusFound)
}
