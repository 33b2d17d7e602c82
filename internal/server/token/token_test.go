package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("test-secret", 15*time.Minute, 5*time.Minute)
}

func TestMintAndValidate(t *testing.T) {
	svc := newTestService()

	signed, expiresAt, err := svc.Mint("user-1", "SURGEON")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "SURGEON", claims.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signed, _, err := NewService("secret-a", time.Minute, time.Minute).Mint("user-1", "SURGEON")
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Minute, time.Minute).Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute, time.Minute)

	signed, _, err := svc.Mint("user-1", "SURGEON")
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := newTestService().Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsUnsignedAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService().Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenBinding(t *testing.T) {
	svc := newTestService()

	signed, err := svc.MintSessionToken("user-1", "OBSERVER", "session-a")
	require.NoError(t, err)

	claims, err := svc.ValidateSessionToken(signed, "session-a")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "OBSERVER", claims.Role)
	assert.Equal(t, "session-a", claims.SessionID)

	// A token minted for one session grants nothing on another.
	_, err = svc.ValidateSessionToken(signed, "session-b")
	assert.ErrorIs(t, err, ErrWrongSession)
}

func TestBearerTokenIsNotASessionToken(t *testing.T) {
	svc := newTestService()

	bearer, _, err := svc.Mint("user-1", "SURGEON")
	require.NoError(t, err)

	// A bearer token has no session claim, so the binding check fails.
	_, err = svc.ValidateSessionToken(bearer, "session-a")
	assert.ErrorIs(t, err, ErrWrongSession)
}
