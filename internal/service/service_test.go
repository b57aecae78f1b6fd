package service

import (
	"context"
	"testing"
	"time"

	"github.com/crucial707/cpe-tracker/internal/auth"
	"github.com/crucial707/cpe-tracker/internal/repo/memory"
	"golang.org/x/crypto/bcrypt"
)

// newTestServices wires both services to one in-memory store and a
// controllable clock.
func newTestServices(t *testing.T) (*Users, *Records, *memory.Store, *time.Time) {
	t.Helper()
	store := memory.NewStore()
	users := NewUsers(store.Users(), auth.NewPasswordHasher(bcrypt.MinCost))
	records := NewRecords(store.Records())
	clock := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	records.now = func() time.Time { return clock }
	return users, records, store, &clock
}

func mustRegister(t *testing.T, u *Users, name string) int {
	t.Helper()
	user, err := u.Register(context.Background(), Credentials{Username: name, Password: "pw123"})
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	return user.ID
}
