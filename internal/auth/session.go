package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// ErrInvalidSession is returned for a missing, malformed, expired or forged token.
var ErrInvalidSession = errors.New("invalid session")

// Claims are carried in a session token.
type Claims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Provider  string `json:"provider"`
	jwt.RegisteredClaims
}

// User returns the identity held in the claims.
func (c *Claims) User() domain.AuthUser {
	return domain.AuthUser{
		ID: c.Subject, Email: c.Email, FirstName: c.FirstName, LastName: c.LastName, Provider: c.Provider,
	}
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions returns Sessions signing with secret. Tokens live for ttl.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long issued tokens stay valid.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a token for u.
func (s *Sessions) Issue(u domain.AuthUser) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Provider:  u.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth.Sessions.Issue: %w", err)
	}
	return signed, exp, nil
}

// Verify parses and checks a token.
func (s *Sessions) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
