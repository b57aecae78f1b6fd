package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/export"
	"github.com/crucial707/cpe-tracker/internal/metrics"
	"github.com/crucial707/cpe-tracker/internal/middleware"
)

func (s *Server) ExportForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "export.html", nil)
}

// Export streams the user's records in the requested window as a CSV
// attachment. The body is built in memory first so a store error can still
// become a 500.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/export", flashDanger, msgBadForm)
		return
	}

	rng, err := export.ParseRange(r.PostFormValue("start_date"), r.PostFormValue("end_date"))
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			redirectWithFlash(w, r, "/export", flashDanger, verr.Message)
			return
		}
		serverError(w, r, err)
		return
	}

	records, err := s.Records.Range(r.Context(), user.ID, rng.Start, rng.End)
	if err != nil {
		serverError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		serverError(w, r, err)
		return
	}

	metrics.IncCSVExports()
	slog.InfoContext(r.Context(), "records exported", "user_id", user.ID, "rows", len(records), "file", rng.Filename())

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", rng.ContentDisposition())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
