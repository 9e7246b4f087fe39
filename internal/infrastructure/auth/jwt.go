package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrInvalidRole      = errors.New("unknown role in claims")
)

// Claims represents the marketplace JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// JWTService issues and validates access tokens carrying the actor role
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateToken signs an access token for the given actor
func (s *JWTService) GenerateToken(actor shared.Actor) (string, time.Time, error) {
	if actor.ID == uuid.Nil {
		return "", time.Time{}, ErrMissingUserID
	}
	if !actor.Role.IsValid() {
		return "", time.Time{}, ErrInvalidRole
	}

	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   actor.ID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: actor.ID.String(),
		Role:   actor.Role.String(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateToken validates an access token and maps its claims to an actor
func (s *JWTService) ValidateToken(tokenString string) (shared.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return shared.Actor{}, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return shared.Actor{}, ErrTokenNotYetValid
		}
		return shared.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return shared.Actor{}, ErrInvalidClaims
	}

	if claims.UserID == "" {
		return shared.Actor{}, ErrMissingUserID
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return shared.Actor{}, ErrInvalidClaims
	}

	role := shared.Role(claims.Role)
	if !role.IsValid() || role == shared.RoleSystem {
		// The system role is reserved for in-process callers and never
		// accepted from a bearer token.
		return shared.Actor{}, ErrInvalidRole
	}

	return shared.Actor{ID: userID, Role: role}, nil
}

// GetAccessTokenExpiration returns the access token expiration duration
func (s *JWTService) GetAccessTokenExpiration() time.Duration {
	return s.expiration
}
