package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const defaultSessionTTL = time.Hour

// SessionClaims is the JWT payload of a session cookie.
// Subject carries the username.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// SessionManager signs and verifies session tokens. Logged-out tokens are
// remembered by ID until they would have expired anyway.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked cmap.ConcurrentMap[string, time.Time]
	now     func() time.Time
}

// NewSessionManager creates a manager signing with secret (HS256).
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: cmap.New[time.Time](),
		now:     time.Now,
	}
}

// TTL is the lifetime given to new tokens.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for s and returns it with its expiry.
func (m *SessionManager) Issue(s Session) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		Role: s.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies token and returns the session it carries.
func (m *SessionManager) Parse(token string) (Session, error) {
	claims, err := m.parseClaims(token)
	if err != nil {
		return Session{}, err
	}
	if m.revoked.Has(claims.ID) {
		return Session{}, ErrTokenRevoked
	}
	return Session{Username: claims.Subject, Role: claims.Role}, nil
}

// Revoke marks token as logged out. Tokens that are already invalid or
// expired need no revocation, so Revoke never fails.
func (m *SessionManager) Revoke(token string) {
	m.pruneRevoked()

	claims, err := m.parseClaims(token)
	if err != nil || claims.ID == "" {
		return
	}
	m.revoked.Set(claims.ID, claims.ExpiresAt.Time)
}

// RevokedCount is the number of remembered logged-out tokens.
func (m *SessionManager) RevokedCount() int {
	return m.revoked.Count()
}

func (m *SessionManager) parseClaims(token string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if _, err := ParseRole(string(claims.Role)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	return claims, nil
}

func (m *SessionManager) pruneRevoked() {
	now := m.now()
	for id, exp := range m.revoked.Items() {
		if now.After(exp) {
			m.revoked.Remove(id)
		}
	}
}
