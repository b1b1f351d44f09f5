package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key", 24*time.Hour)
}

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := newTestJWTManager()
	playerID := uuid.New()

	token, err := mgr.GenerateToken(playerID, "grimhilde")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, playerID.String(), claims.Subject)
	assert.Equal(t, "grimhilde", claims.Login)

	got, err := claims.PlayerID()
	require.NoError(t, err)
	assert.Equal(t, playerID, got)
}

func TestInvalidSecretRejected(t *testing.T) {
	mgr1 := NewJWTManager("secret-1", time.Hour)
	mgr2 := NewJWTManager("secret-2", time.Hour)

	token, err := mgr1.GenerateToken(uuid.New(), "a")
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager("secret", time.Millisecond)

	token, err := mgr.GenerateToken(uuid.New(), "a")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestForeignIssuerRejected(t *testing.T) {
	mgr := newTestJWTManager()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestNoneAlgorithmRejected(t *testing.T) {
	mgr := newTestJWTManager()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: uuid.NewString()}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}
