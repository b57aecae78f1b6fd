package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/middleware"
	"github.com/crucial707/cpe-tracker/internal/models"
	"github.com/crucial707/cpe-tracker/internal/service"
	"github.com/go-chi/chi/v5"
)

// ==========================
// List
// ==========================
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	records, err := s.Records.List(r.Context(), user.ID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "records.html", map[string]interface{}{
		"Records": records,
	})
}

// ==========================
// Add
// ==========================
func (s *Server) AddRecordForm(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s.renderRecordForm(w, r, user.ID, nil, "Add training record", "/add", "Add record")
}

func (s *Server) AddRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/add", flashDanger, msgBadForm)
		return
	}

	_, err := s.Records.Add(r.Context(), user.ID, recordInput(r))
	var verr *common.ValidationError
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/records", flashSuccess, msgRecordAdded)
	case errors.As(err, &verr):
		redirectWithFlash(w, r, "/add", flashDanger, verr.Message)
	default:
		serverError(w, r, err)
	}
}

// ==========================
// Edit
// ==========================
func (s *Server) EditRecordForm(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id, ok := recordID(r)
	if !ok {
		redirectWithFlash(w, r, "/records", flashDanger, msgUnauthorized)
		return
	}

	rec, err := s.Records.Get(r.Context(), user.ID, id)
	if err != nil {
		if service.IsAccessDenied(err) {
			redirectWithFlash(w, r, "/records", flashDanger, msgUnauthorized)
			return
		}
		serverError(w, r, err)
		return
	}
	s.renderRecordForm(w, r, user.ID, rec, "Edit training record", fmt.Sprintf("/edit/%d", rec.ID), "Save changes")
}

func (s *Server) EditRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id, ok := recordID(r)
	if !ok {
		redirectWithFlash(w, r, "/records", flashDanger, msgUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, fmt.Sprintf("/edit/%d", id), flashDanger, msgBadForm)
		return
	}

	_, err := s.Records.Edit(r.Context(), user.ID, id, recordInput(r))
	var verr *common.ValidationError
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/records", flashSuccess, msgRecordUpdated)
	case service.IsAccessDenied(err):
		redirectWithFlash(w, r, "/records", flashDanger, msgUnauthorized)
	case errors.As(err, &verr):
		redirectWithFlash(w, r, fmt.Sprintf("/edit/%d", id), flashDanger, verr.Message)
	default:
		serverError(w, r, err)
	}
}

// ==========================
// Delete
// ==========================
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id, ok := recordID(r)
	if !ok {
		redirectWithFlash(w, r, "/records", flashDanger, msgUnauthorized)
		return
	}

	err := s.Records.Delete(r.Context(), user.ID, id)
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/records", flashSuccess, msgRecordDeleted)
	case service.IsAccessDenied(err):
		redirectWithFlash(w, r, "/records", flashDanger, msgUnauthorized)
	default:
		serverError(w, r, err)
	}
}

func (s *Server) renderRecordForm(w http.ResponseWriter, r *http.Request, ownerID int, rec *models.Record, heading, action, submit string) {
	categories, err := s.Records.Categories(r.Context(), ownerID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "record_form.html", map[string]interface{}{
		"Heading":    heading,
		"Action":     action,
		"Submit":     submit,
		"Record":     rec,
		"Categories": categories,
	})
}

func recordInput(r *http.Request) service.RecordInput {
	return service.RecordInput{
		TrainingName: r.PostFormValue("training_name"),
		Category:     r.PostFormValue("category"),
		Hours:        r.PostFormValue("hours"),
		Link:         r.PostFormValue("link"),
	}
}

// recordID reads {id}. Anything that is not a positive integer cannot name a
// record and is reported as not ok.
func recordID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
