package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/cpe-tracker/internal/auth"
	"github.com/crucial707/cpe-tracker/internal/middleware"
	"github.com/crucial707/cpe-tracker/internal/models"
	"github.com/crucial707/cpe-tracker/internal/repo/memory"
	"github.com/crucial707/cpe-tracker/internal/service"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	users := service.NewUsers(st.Users(), auth.NewPasswordHasher(4))
	records := service.NewRecords(st.Records())
	sessions := auth.NewSessionManager([]byte("test-secret"), time.Hour)
	s, err := NewServer(users, records, sessions, false)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s, st
}

func mustUser(t *testing.T, s *Server, name, password string) *models.User {
	t.Helper()
	u, err := s.Users.Register(context.Background(), service.Credentials{Username: name, Password: password})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func mustRecord(t *testing.T, s *Server, owner *models.User, name, category, hours string) *models.Record {
	t.Helper()
	rec, err := s.Records.Add(context.Background(), owner.ID, service.RecordInput{
		TrainingName: name, Category: category, Hours: hours,
	})
	if err != nil {
		t.Fatalf("add record: %v", err)
	}
	return rec
}

// formRequest builds a POST with an urlencoded body.
func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// asUser attaches u as the authenticated user, as middleware.Session would.
func asUser(req *http.Request, u *models.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), u))
}

// withURLParams sets chi URL params so handlers can read {id}.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// flashesFrom decodes the flash cookie set on rr.
func flashesFrom(rr *httptest.ResponseRecorder) []Flash {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashCookieName && c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return readFlashes(req)
}

func assertRedirect(t *testing.T, rr *httptest.ResponseRecorder, location, flash string) {
	t.Helper()
	if rr.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != location {
		t.Errorf("Location: got %q, want %q", got, location)
	}
	if flash == "" {
		return
	}
	for _, f := range flashesFrom(rr) {
		if f.Message == flash {
			return
		}
	}
	t.Errorf("flash %q not set; got %+v", flash, flashesFrom(rr))
}
