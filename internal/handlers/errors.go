package handlers

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "Internal Server Error"

// Flash messages shown to users. Missing and not-owned records both get
// msgUnauthorized.
const (
	msgUnauthorized   = "Unauthorized access"
	msgUsernameTaken  = "Username already exists"
	msgBadCredentials = "Invalid username or password"
	msgRegistered     = "Registration successful! Please log in."
	msgLoggedOut      = "You have been logged out."
	msgRecordAdded    = "Training record added successfully!"
	msgRecordUpdated  = "Record updated successfully!"
	msgRecordDeleted  = "Record deleted successfully!"
	msgBadForm        = "Could not read the submitted form"
)

// serverError logs err with the request id and sends a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
}
