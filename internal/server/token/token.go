// Package token issues and validates the two credential kinds of the
// authority: bearer tokens for the HTTP API and short-lived session-scoped
// tokens for the push channel.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongSession = errors.New("token not valid for this session")
)

// Claims are the bearer token claims. Subject carries the user ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionClaims are the push channel token claims, scoped to one session.
type SessionClaims struct {
	Role      string `json:"role"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// Service signs and validates HS256 tokens.
type Service struct {
	secret     []byte
	tokenTTL   time.Duration
	wsTokenTTL time.Duration
}

// NewService creates a token service. secret must be non-empty.
func NewService(secret string, tokenTTL, wsTokenTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		wsTokenTTL: wsTokenTTL,
	}
}

// Mint issues a bearer token for the given user and role.
func (s *Service) Mint(userID, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// MintSessionToken issues a short-lived token bound to one session for the
// push channel handshake.
func (s *Service) MintSessionToken(userID, role, sessionID string) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.wsTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a bearer token.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateSessionToken parses a push channel token and checks its session
// binding.
func (s *Service) ValidateSessionToken(tokenString, sessionID string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.SessionID != sessionID {
		return nil, ErrWrongSession
	}
	return claims, nil
}

func (s *Service) parse(tokenString string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
