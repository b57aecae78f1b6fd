package auth

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrRevokedSession = errors.New("session revoked")
)

// Session is the verified content of a session token.
type Session struct {
	UserID    int
	ID        string
	ExpiresAt time.Time
}

// SessionManager issues and verifies HS256 session tokens and remembers
// tokens revoked by logout until they would have expired anyway.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessionManager(secret []byte, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// TTL is the lifetime of newly issued tokens.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a new token for userID.
func (m *SessionManager) Issue(userID int) (string, Session, error) {
	now := m.now()
	s := Session{
		UserID:    userID,
		ID:        uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Session{}, err
	}
	return signed, s, nil
}

// Parse verifies signature, expiry and revocation of tokenStr.
func (m *SessionManager) Parse(tokenStr string) (Session, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidSession
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || claims.ID == "" {
		return Session{}, ErrInvalidSession
	}
	if m.isRevoked(claims.ID) {
		return Session{}, ErrRevokedSession
	}
	return Session{UserID: userID, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Revoke invalidates s until its expiry.
func (m *SessionManager) Revoke(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	m.revoked[s.ID] = s.ExpiresAt
}

func (m *SessionManager) isRevoked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok
}

func (m *SessionManager) pruneLocked() {
	now := m.now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
}
