package middleware

import (
	"log/slog"
	"net/http"
)

// DefaultMaxBodyBytes caps form posts when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps request bodies for methods that carry one. A declared
// Content-Length over the cap is answered with 413 before the handler runs;
// otherwise the body is read through http.MaxBytesReader, so a chunked
// oversized body makes ParseForm fail in the handler.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				slog.Warn("request body too large", "path", r.URL.Path, "content_length", r.ContentLength, "limit", maxBytes)
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
