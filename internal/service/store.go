package service

import (
	"context"

	"github.com/crucial707/cpe-tracker/internal/models"
)

// UserStore is the persistence contract for users.
// Lookups return common.ErrNotFound when the row is absent; Create returns
// common.ErrConflict on a duplicate username.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Delete(ctx context.Context, id int) error
}

// RecordStore is the persistence contract for records. All list, aggregate
// and mutating calls are scoped by owner id.
type RecordStore interface {
	Create(ctx context.Context, rec models.Record) (*models.Record, error)
	GetByID(ctx context.Context, id int) (*models.Record, error)
	List(ctx context.Context, ownerID int, f models.RecordFilter) ([]models.Record, error)
	SumHours(ctx context.Context, ownerID int) (float64, error)
	SumHoursByCategory(ctx context.Context, ownerID int) ([]models.CategoryHours, error)
	Categories(ctx context.Context, ownerID int) ([]string, error)
	Update(ctx context.Context, rec models.Record) (*models.Record, error)
	Delete(ctx context.Context, id, ownerID int) error
}
