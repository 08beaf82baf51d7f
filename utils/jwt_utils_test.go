package utils

import (
	"testing"
	"time"

	"codingcats/api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager([]byte("secret"), time.Hour)
	token, err := m.GenerateJWT(&models.User{ID: 42, Email: "cat@codingcats.dev"})
	require.NoError(t, err)

	claims, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "cat@codingcats.dev", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTManager([]byte("other"), time.Hour).GenerateJWT(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewJWTManager([]byte("secret"), time.Hour).ValidateJWT(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTManager_RejectsWrongIssuer(t *testing.T) {
	claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTManager([]byte("secret"), time.Hour).ValidateJWT(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	assert.Equal(t, time.Hour, NewJWTManager([]byte("s"), 0).TTL())
}
