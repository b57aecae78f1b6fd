package auth

import (
	"testing"
	"time"
)

func TestSessionManager_IssueParse(t *testing.T) {
	m := NewSessionManager([]byte("test-secret"), time.Hour)

	tok, s, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.UserID != 42 || got.ID != s.ID {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestSessionManager_WrongSecret(t *testing.T) {
	tok, _, _ := NewSessionManager([]byte("a"), time.Hour).Issue(1)
	if _, err := NewSessionManager([]byte("b"), time.Hour).Parse(tok); err != ErrInvalidSession {
		t.Errorf("Parse with wrong secret: got %v, want ErrInvalidSession", err)
	}
}

func TestSessionManager_Expired(t *testing.T) {
	m := NewSessionManager([]byte("s"), time.Minute)
	base := time.Now()
	m.now = func() time.Time { return base }
	tok, _, _ := m.Issue(1)

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := m.Parse(tok); err != ErrInvalidSession {
		t.Errorf("Parse expired: got %v, want ErrInvalidSession", err)
	}
}

func TestSessionManager_Revoke(t *testing.T) {
	m := NewSessionManager([]byte("s"), time.Hour)
	tok, s, _ := m.Issue(7)
	other, _, _ := m.Issue(7)

	m.Revoke(s)
	if _, err := m.Parse(tok); err != ErrRevokedSession {
		t.Errorf("Parse revoked: got %v, want ErrRevokedSession", err)
	}
	if _, err := m.Parse(other); err != nil {
		t.Errorf("other session should survive: %v", err)
	}
}

func TestSessionManager_Garbage(t *testing.T) {
	m := NewSessionManager([]byte("s"), time.Hour)
	if _, err := m.Parse("not.a.token"); err != ErrInvalidSession {
		t.Errorf("Parse garbage: got %v", err)
	}
}
