package gatewayauth_test

import (
	"testing"
	"time"

	"github.com/corraldata/rustlers/internal/gatewayauth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims gatewayauth.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidatorCheckAcceptsValidToken(t *testing.T) {
	secret := "test-secret"
	claims := gatewayauth.Claims{
		UserID: "user-1",
		Perms:  []string{"stream:read"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := signToken(t, secret, claims)

	v := gatewayauth.NewValidator(secret)
	got, err := v.Check(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.HasPerm("stream:read"))
}

func TestValidatorCheckStripsBearerPrefix(t *testing.T) {
	secret := "test-secret"
	token := signToken(t, secret, gatewayauth.Claims{UserID: "user-2"})

	v := gatewayauth.NewValidator(secret)
	got, err := v.Check("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", got.UserID)
}

func TestValidatorCheckRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "secret-a", gatewayauth.Claims{UserID: "user-3"})

	v := gatewayauth.NewValidator("secret-b")
	_, err := v.Check(token)
	assert.ErrorIs(t, err, gatewayauth.ErrInvalidToken)
}

func TestValidatorCheckRejectsExpiredToken(t *testing.T) {
	secret := "test-secret"
	claims := gatewayauth.Claims{
		UserID: "user-4",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := signToken(t, secret, claims)

	v := gatewayauth.NewValidator(secret)
	_, err := v.Check(token)
	assert.ErrorIs(t, err, gatewayauth.ErrInvalidToken)
}

func TestValidatorCheckRejectsGarbage(t *testing.T) {
	v := gatewayauth.NewValidator("secret")
	_, err := v.Check("not-a-jwt")
	assert.ErrorIs(t, err, gatewayauth.ErrInvalidToken)
}
