package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/crucial707/cpe-tracker/internal/auth"
	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/metrics"
	"github.com/crucial707/cpe-tracker/internal/models"
)

// Credentials is the register/login form.
type Credentials struct {
	Username string `validate:"required,max=80"`
	Password string `validate:"required"`
}

// Users handles registration and authentication.
type Users struct {
	Store  UserStore
	Hasher *auth.PasswordHasher
}

func NewUsers(store UserStore, hasher *auth.PasswordHasher) *Users {
	return &Users{Store: store, Hasher: hasher}
}

// Register creates an account. A taken username yields common.ErrConflict
// and leaves the store untouched.
func (s *Users) Register(ctx context.Context, in Credentials) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.Store.GetByUsername(ctx, in.Username); err == nil {
		return nil, common.ErrConflict
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.Store.Create(ctx, in.Username, hash)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate returns the user for valid credentials. Unknown usernames and
// wrong passwords both yield common.ErrInvalidCredentials.
func (s *Users) Authenticate(ctx context.Context, in Credentials) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	user, err := s.Store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			metrics.IncLogins("failure")
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Hasher.Verify(in.Password, user.PasswordHash) {
		metrics.IncLogins("failure")
		slog.InfoContext(ctx, "login failed", "username", username)
		return nil, common.ErrInvalidCredentials
	}
	metrics.IncLogins("success")
	return user, nil
}

// Get rehydrates a session's user.
func (s *Users) Get(ctx context.Context, id int) (*models.User, error) {
	return s.Store.GetByID(ctx, id)
}

// Lookup finds a user by name.
func (s *Users) Lookup(ctx context.Context, username string) (*models.User, error) {
	return s.Store.GetByUsername(ctx, strings.TrimSpace(username))
}

// Delete removes a user and, through the store, all of its records.
func (s *Users) Delete(ctx context.Context, id int) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}
