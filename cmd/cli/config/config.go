package config

import (
	"context"
	"fmt"

	"github.com/crucial707/cpe-tracker/internal/auth"
	appconfig "github.com/crucial707/cpe-tracker/internal/config"
	"github.com/crucial707/cpe-tracker/internal/db"
	"github.com/crucial707/cpe-tracker/internal/repo"
	"github.com/crucial707/cpe-tracker/internal/repo/memory"
	"github.com/crucial707/cpe-tracker/internal/service"
)

// Services is what CLI commands operate on. Close releases the store.
type Services struct {
	Users   *service.Users
	Records *service.Records
	Close   func() error
}

// Opener builds Services. Commands take one so tests can swap the store.
type Opener func(ctx context.Context) (*Services, error)

// Open connects to the store selected by the same environment the web server
// reads (STORE, DB_*, BCRYPT_COST).
func Open(ctx context.Context) (*Services, error) {
	cfg := appconfig.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	if cfg.Store == appconfig.StoreMemory {
		return MemoryServices(memory.NewStore(), hasher), nil
	}

	database, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &Services{
		Users:   service.NewUsers(repo.NewUserRepo(database), hasher),
		Records: service.NewRecords(repo.NewRecordRepo(database)),
		Close:   database.Close,
	}, nil
}

// MemoryServices wraps an in-process store.
func MemoryServices(st *memory.Store, hasher *auth.PasswordHasher) *Services {
	return &Services{
		Users:   service.NewUsers(st.Users(), hasher),
		Records: service.NewRecords(st.Records()),
		Close:   func() error { return nil },
	}
}
