// Package session issues the signed cookie tokens that keep a user logged
// in, and tracks which of them are still live so logout takes effect
// before the token expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevoked      = errors.New("session has been logged out")
)

// Claims is the payload of a session token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Registry records live session ids. DeleteUser drops every session of
// one user.
type Registry interface {
	Save(ctx context.Context, id string, userID uint, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, userID uint) error
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	registry Registry
	now      func() time.Time
}

func NewManager(secret string, ttl time.Duration, registry Registry) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, registry: registry, now: time.Now}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a token for the user and registers it.
func (m *Manager) Issue(ctx context.Context, userID uint, username string) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}
	if err := m.registry.Save(ctx, claims.ID, userID, m.ttl); err != nil {
		return "", nil, fmt.Errorf("error storing session: %w", err)
	}
	return token, claims, nil
}

// Verify parses a token and checks it has not been revoked.
func (m *Manager) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	live, err := m.registry.Exists(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke ends the session named by claims.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	return m.registry.Delete(ctx, claims.ID)
}

// RevokeUser ends every session of userID, as when the account is deleted.
func (m *Manager) RevokeUser(ctx context.Context, userID uint) error {
	return m.registry.DeleteUser(ctx, userID)
}
