package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/metrics"
	"github.com/crucial707/cpe-tracker/internal/models"
)

// RecentLimit is how many records the dashboard shows.
const RecentLimit = 5

// RecordInput is the add/edit form as submitted. Hours is raw text.
type RecordInput struct {
	TrainingName string `validate:"required,max=200"`
	Category     string `validate:"max=100"`
	Hours        string
	Link         string `validate:"max=500"`
}

// Dashboard is the summary shown on the landing page.
type Dashboard struct {
	TotalHours    float64
	Recent        []models.Record
	CategoryHours []models.CategoryHours
}

// Records owns validation and ownership rules for training records.
type Records struct {
	Store RecordStore
	now   func() time.Time
}

func NewRecords(store RecordStore) *Records {
	return &Records{Store: store, now: func() time.Time { return time.Now().UTC() }}
}

// ParseHours converts form input to hours. NaN, infinities and negative
// values are rejected.
func ParseHours(raw string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return 0, common.NewValidationError("Invalid hours value")
	}
	return h, nil
}

func (in RecordInput) normalize() (RecordInput, float64, error) {
	in.TrainingName = strings.TrimSpace(in.TrainingName)
	in.Category = strings.TrimSpace(in.Category)
	in.Link = strings.TrimSpace(in.Link)
	if err := validateStruct(in); err != nil {
		return in, 0, err
	}
	hours, err := ParseHours(in.Hours)
	if err != nil {
		return in, 0, err
	}
	if in.Category == "" {
		in.Category = models.DefaultCategory
	}
	return in, hours, nil
}

// Add creates a record owned by ownerID with created_at = modified_at = now.
func (s *Records) Add(ctx context.Context, ownerID int, in RecordInput) (*models.Record, error) {
	in, hours, err := in.normalize()
	if err != nil {
		return nil, err
	}
	now := s.now()
	rec, err := s.Store.Create(ctx, models.Record{
		UserID:       ownerID,
		TrainingName: in.TrainingName,
		Category:     in.Category,
		Hours:        hours,
		Link:         in.Link,
		CreatedAt:    now,
		ModifiedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	metrics.IncRecordsWritten("create")
	slog.InfoContext(ctx, "record created", "user_id", ownerID, "record_id", rec.ID, "hours", rec.Hours)
	return rec, nil
}

// Get returns a record only if ownerID owns it. A record that belongs to
// someone else yields common.ErrForbidden; a missing one common.ErrNotFound.
func (s *Records) Get(ctx context.Context, ownerID, id int) (*models.Record, error) {
	rec, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != ownerID {
		return nil, common.ErrForbidden
	}
	return rec, nil
}

// Edit rewrites every mutable field and refreshes modified_at.
func (s *Records) Edit(ctx context.Context, ownerID, id int, in RecordInput) (*models.Record, error) {
	cur, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	in, hours, err := in.normalize()
	if err != nil {
		return nil, err
	}

	modified := s.now()
	if modified.Before(cur.ModifiedAt) {
		modified = cur.ModifiedAt
	}
	cur.TrainingName = in.TrainingName
	cur.Category = in.Category
	cur.Hours = hours
	cur.Link = in.Link
	cur.ModifiedAt = modified

	rec, err := s.Store.Update(ctx, *cur)
	if err != nil {
		return nil, err
	}
	metrics.IncRecordsWritten("update")
	slog.InfoContext(ctx, "record updated", "user_id", ownerID, "record_id", id)
	return rec, nil
}

// Delete hard-deletes a record after the same ownership check as Edit.
func (s *Records) Delete(ctx context.Context, ownerID, id int) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	metrics.IncRecordsWritten("delete")
	slog.InfoContext(ctx, "record deleted", "user_id", ownerID, "record_id", id)
	return nil
}

// List returns every record of ownerID, newest first.
func (s *Records) List(ctx context.Context, ownerID int) ([]models.Record, error) {
	return s.Store.List(ctx, ownerID, models.RecordFilter{})
}

// Range returns records created within [start, end], newest first. Nil bounds are open.
func (s *Records) Range(ctx context.Context, ownerID int, start, end *time.Time) ([]models.Record, error) {
	return s.Store.List(ctx, ownerID, models.RecordFilter{Start: start, End: end})
}

// Categories returns the owner's previously used categories for form suggestions.
func (s *Records) Categories(ctx context.Context, ownerID int) ([]string, error) {
	return s.Store.Categories(ctx, ownerID)
}

func (s *Records) Dashboard(ctx context.Context, ownerID int) (*Dashboard, error) {
	total, err := s.Store.SumHours(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	recent, err := s.Store.List(ctx, ownerID, models.RecordFilter{Limit: RecentLimit})
	if err != nil {
		return nil, err
	}
	byCat, err := s.Store.SumHoursByCategory(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{TotalHours: total, Recent: recent, CategoryHours: byCat}, nil
}

// IsAccessDenied reports errors shown as "Unauthorized access": a missing
// record and another user's record.
func IsAccessDenied(err error) bool {
	return errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrForbidden)
}
