package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingotale/lingotale-api/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            strings.Repeat("s", 32),
		TokenLifetimeMinutes: 60,
	}
}

// newTestService creates a service with a fixed clock for deterministic
// expiry behavior.
func newTestService(t *testing.T, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	hmacSvc, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	hmacSvc.timeFunc = func() time.Time { return now }
	return hmacSvc
}

func TestNewJWTService(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		svc, err := NewJWTService(testAuthConfig())
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("short secret rejected", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.JWTSecret = "too-short"
		_, err := NewJWTService(cfg)
		assert.Error(t, err)
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestValidateTokenFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other, err := NewJWTService(config.AuthConfig{
			JWTSecret:            strings.Repeat("x", 32),
			TokenLifetimeMinutes: 60,
		})
		require.NoError(t, err)

		token, err := other.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		// Advance the clock beyond lifetime plus clock skew leeway.
		svc.timeFunc = func() time.Time { return now.Add(time.Hour + 3*time.Minute) }
		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)

		svc.timeFunc = func() time.Time { return now }
	})

	t.Run("expired within leeway accepted", func(t *testing.T) {
		token, err := svc.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		svc.timeFunc = func() time.Time { return now.Add(time.Hour + time.Minute) }
		_, err = svc.ValidateToken(ctx, token)
		assert.NoError(t, err)

		svc.timeFunc = func() time.Time { return now }
	})
}
