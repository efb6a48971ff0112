package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/herbtrade/herbtrade-backend-go/config"
)

func setSecret(t *testing.T, secret string) {
	t.Helper()
	config.Set(&config.Config{JWTSecret: secret})
	t.Cleanup(func() { config.Set(nil) })
}

func TestJWT_Roundtrip(t *testing.T) {
	setSecret(t, "test-secret")

	token, err := GenerateJWT("650000000000000000000001", "delivery", "sellers", SessionTokenTTL)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	require.Equal(t, "650000000000000000000001", claims.ID)
	require.Equal(t, "delivery", claims.Role)
	require.Equal(t, "sellers", claims.Collection)
}

func TestJWT_ExpiredRejected(t *testing.T) {
	setSecret(t, "test-secret")

	token, err := GenerateJWT("650000000000000000000001", "user", "users", -time.Second)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	require.Error(t, err)
}

func TestJWT_TamperedRejected(t *testing.T) {
	setSecret(t, "test-secret")

	token, err := GenerateJWT("650000000000000000000001", "user", "users", SessionTokenTTL)
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	require.Error(t, err)
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	setSecret(t, "test-secret")
	token, err := GenerateJWT("650000000000000000000001", "user", "users", SessionTokenTTL)
	require.NoError(t, err)

	config.Set(&config.Config{JWTSecret: "other-secret"})
	_, err = ValidateJWT(token)
	require.Error(t, err)
}

func TestJWT_UsesLoadedConfigSecret(t *testing.T) {
	// The environment variable alone must not be enough; the signer reads
	// the parsed Config that startup validates.
	t.Setenv("JWT_SECRET", "env-secret")
	config.Set(&config.Config{JWTSecret: "config-secret"})
	t.Cleanup(func() { config.Set(nil) })

	token, err := GenerateJWT("650000000000000000000001", "user", "users", SessionTokenTTL)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	require.Equal(t, "user", claims.Role)

	config.Set(&config.Config{JWTSecret: "env-secret"})
	_, err = ValidateJWT(token)
	require.Error(t, err)
}
