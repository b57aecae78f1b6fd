package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recoverer turns a handler panic into a logged stack trace and a 500. If the
// handler already started its response, the status is left alone.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newStatusRecorder(w)
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			slog.Error("panic recovered",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"route", routeLabel(r),
				"panic", p,
				"stack", string(debug.Stack()))
			if !rec.wroteHeader {
				http.Error(rec, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
