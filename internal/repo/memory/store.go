// Package memory is an in-process implementation of the user and record
// stores. It backs STORE=memory for local development and the service and
// handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/models"
)

// Store holds both tables so user deletion can cascade to records.
type Store struct {
	mu         sync.RWMutex
	users      map[int]models.User
	records    map[int]models.Record
	nextUserID int
	nextRecID  int
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int]models.User),
		records:    make(map[int]models.Record),
		nextUserID: 1,
		nextRecID:  1,
	}
}

// Users returns the user table view of s.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Records returns the record table view of s.
func (s *Store) Records() *RecordRepo { return &RecordRepo{s: s} }

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return nil, common.ErrConflict
		}
	}
	u := models.User{ID: r.s.nextUserID, Username: username, PasswordHash: passwordHash}
	r.s.nextUserID++
	r.s.users[u.ID] = u
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

// Delete removes the user and every record it owns.
func (r *UserRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.users, id)
	for rid, rec := range r.s.records {
		if rec.UserID == id {
			delete(r.s.records, rid)
		}
	}
	return nil
}

type RecordRepo struct {
	s *Store
}

func (r *RecordRepo) Create(ctx context.Context, rec models.Record) (*models.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[rec.UserID]; !ok {
		return nil, common.ErrNotFound
	}
	rec.ID = r.s.nextRecID
	r.s.nextRecID++
	r.s.records[rec.ID] = rec
	return &rec, nil
}

func (r *RecordRepo) GetByID(ctx context.Context, id int) (*models.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rec, nil
}

func (r *RecordRepo) List(ctx context.Context, ownerID int, f models.RecordFilter) ([]models.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Record
	for _, rec := range r.s.records {
		if rec.UserID != ownerID {
			continue
		}
		if f.Start != nil && rec.CreatedAt.Before(*f.Start) {
			continue
		}
		if f.End != nil && rec.CreatedAt.After(*f.End) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *RecordRepo) SumHours(ctx context.Context, ownerID int) (float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total float64
	for _, rec := range r.s.records {
		if rec.UserID == ownerID {
			total += rec.Hours
		}
	}
	return total, nil
}

func (r *RecordRepo) SumHoursByCategory(ctx context.Context, ownerID int) ([]models.CategoryHours, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sums := make(map[string]float64)
	for _, rec := range r.s.records {
		if rec.UserID == ownerID {
			sums[rec.Category] += rec.Hours
		}
	}
	out := make([]models.CategoryHours, 0, len(sums))
	for c, h := range sums {
		out = append(out, models.CategoryHours{Category: c, Hours: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (r *RecordRepo) Categories(ctx context.Context, ownerID int) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, rec := range r.s.records {
		if rec.UserID != ownerID {
			continue
		}
		if _, ok := seen[rec.Category]; ok {
			continue
		}
		seen[rec.Category] = struct{}{}
		out = append(out, rec.Category)
	}
	sort.Strings(out)
	return out, nil
}

// Update rewrites the mutable fields. created_at and owner are never changed.
func (r *RecordRepo) Update(ctx context.Context, rec models.Record) (*models.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.records[rec.ID]
	if !ok || cur.UserID != rec.UserID {
		return nil, common.ErrNotFound
	}
	cur.TrainingName = rec.TrainingName
	cur.Category = rec.Category
	cur.Hours = rec.Hours
	cur.Link = rec.Link
	cur.ModifiedAt = rec.ModifiedAt
	r.s.records[cur.ID] = cur
	return &cur, nil
}

func (r *RecordRepo) Delete(ctx context.Context, id, ownerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.records[id]
	if !ok || rec.UserID != ownerID {
		return common.ErrNotFound
	}
	delete(r.s.records, id)
	return nil
}
