package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/cpe-tracker/internal/auth"
	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/models"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "cpe_session"

type key string

const (
	userKey    key = "user"
	sessionKey key = "session"
)

// UserLoader rehydrates the user a session points at.
type UserLoader interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

// Session resolves the session cookie to a user and stores both in the request
// context. Requests without a valid session pass through anonymously; a
// present but invalid cookie, or one naming a deleted user, is cleared. A
// failing user lookup is a 500 and leaves the cookie alone.
func Session(sessions *auth.SessionManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			s, err := sessions.Parse(c.Value)
			if err != nil {
				ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.Get(r.Context(), s.UserID)
			if errors.Is(err, common.ErrNotFound) {
				ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.ErrorContext(r.Context(), "session user lookup failed",
					"request_id", chimw.GetReqID(r.Context()),
					"user_id", s.UserID,
					"error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser redirects anonymous requests to /login, keeping the requested
// path and query in ?next= for after login.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			target := r.URL.Path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?next="+url.QueryEscape(target), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser returns the authenticated user, if any.
func GetUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// GetUserID returns the authenticated user's id, if any.
func GetUserID(ctx context.Context) (int, bool) {
	u, ok := GetUser(ctx)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// GetSession returns the verified session behind the current request.
func GetSession(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(auth.Session)
	return s, ok
}

// SetSessionCookie writes token as an HttpOnly, SameSite=Lax cookie.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// WithUser returns ctx carrying u as the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
