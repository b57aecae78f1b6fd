package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/middleware"
	"github.com/crucial707/cpe-tracker/internal/service"
)

// ==========================
// Register
// ==========================
func (s *Server) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "register.html", nil)
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/register", flashDanger, msgBadForm)
		return
	}

	_, err := s.Users.Register(r.Context(), service.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	var verr *common.ValidationError
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/login", flashSuccess, msgRegistered)
	case errors.Is(err, common.ErrConflict):
		redirectWithFlash(w, r, "/register", flashDanger, msgUsernameTaken)
	case errors.As(err, &verr):
		redirectWithFlash(w, r, "/register", flashDanger, verr.Message)
	default:
		serverError(w, r, err)
	}
}

// ==========================
// Login
// ==========================
func (s *Server) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); ok {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", map[string]interface{}{
		"Next":     r.URL.Query().Get("next"),
		"Username": "",
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/login", flashDanger, msgBadForm)
		return
	}
	next := r.PostFormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	creds := service.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	user, err := s.Users.Authenticate(r.Context(), creds)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidCredentials) {
			serverError(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "login.html", map[string]interface{}{
			"Next":     next,
			"Username": strings.TrimSpace(creds.Username),
			"Flashes":  []Flash{{Category: flashDanger, Message: msgBadCredentials}},
		})
		return
	}

	token, sess, err := s.Sessions.Issue(user.ID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token, int(s.Sessions.TTL().Seconds()), s.CookieSecure)
	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID, "session", sess.ID)
	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

// ==========================
// Logout
// ==========================
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSession(r.Context()); ok {
		s.Sessions.Revoke(sess)
	}
	middleware.ClearSessionCookie(w)
	redirectWithFlash(w, r, "/login", flashInfo, msgLoggedOut)
}

// safeNext keeps post-login redirects on this site. Only local absolute
// paths are allowed; anything else goes to the dashboard.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
