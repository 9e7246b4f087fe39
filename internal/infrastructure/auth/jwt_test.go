package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-jwt-validation",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "relove-test",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	actor := shared.Actor{ID: uuid.New(), Role: shared.RoleBuyer}

	token, expiresAt, err := svc.GenerateToken(actor)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, parsed.ID)
	assert.Equal(t, shared.RoleBuyer, parsed.Role)
}

func TestJWTService_GenerateToken(t *testing.T) {
	svc := newTestJWTService()

	t.Run("rejects nil user id", func(t *testing.T) {
		_, _, err := svc.GenerateToken(shared.Actor{Role: shared.RoleBuyer})
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, _, err := svc.GenerateToken(shared.Actor{ID: uuid.New(), Role: "WIZARD"})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestJWTService_ValidateToken(t *testing.T) {
	svc := newTestJWTService()

	t.Run("rejects garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "a-completely-different-secret",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "relove-test",
		})
		token, _, err := other.GenerateToken(shared.Actor{ID: uuid.New(), Role: shared.RoleSeller})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		short := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-for-jwt-validation",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "relove-test",
		})
		token, _, err := short.GenerateToken(shared.Actor{ID: uuid.New(), Role: shared.RoleBuyer})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects system role from bearer token", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
			UserID: uuid.New().String(),
			Role:   shared.RoleSystem.String(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-secret-key-for-jwt-validation"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
			Role: shared.RoleBuyer.String(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-secret-key-for-jwt-validation"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}
