package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/infrastructure/auth"
	"github.com/relove/backend/internal/interfaces/http/dto"
)

// Context and header keys for the authentication middleware
const (
	ActorKey      = "auth_actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authentication validates the bearer token on every request and stores the
// resulting actor in the gin context for handlers to pick up.
func Authentication(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthenticated(c, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthenticated(c, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthenticated(c, "Missing token")
			return
		}

		actor, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthenticated(c, "Token has expired")
				return
			}
			abortUnauthenticated(c, "Invalid token")
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// RequireRoles rejects authenticated requests whose actor role is not in
// the allowed set. It must run after Authentication.
func RequireRoles(roles ...shared.Role) gin.HandlerFunc {
	allowed := make(map[shared.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortUnauthenticated(c, "Missing credentials")
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient role for this operation"))
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor stored by the Authentication
// middleware, and false when the request never passed through it.
func GetActor(c *gin.Context) (shared.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return shared.Actor{}, false
	}
	actor, ok := value.(shared.Actor)
	return actor, ok
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthenticated, message))
}
