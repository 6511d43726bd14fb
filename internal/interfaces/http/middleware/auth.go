// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/auth"
)

const actorKey = "actor"

// TokenValidator verifies identity provider tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// UserMirror makes sure the authenticated account has a local row
type UserMirror interface {
	EnsureUser(ctx context.Context, actor user.Actor) error
}

// AuthMiddleware validates the bearer token and stores the actor. When users
// is not nil, the account is mirrored locally on first sight.
func AuthMiddleware(tokens TokenValidator, users UserMirror, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Debug("Rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		actor := claims.Actor()
		if users != nil {
			if err := users.EnsureUser(c.Request.Context(), actor); err != nil {
				log.WithError(err).WithField("user_id", actor.UserID).Error("Failed to mirror user")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
				return
			}
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// AdminMiddleware ensures the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			return
		}

		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}

		c.Next()
	}
}

// ActorFromContext returns the authenticated caller
func ActorFromContext(c *gin.Context) (user.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return user.Actor{}, false
	}
	actor, ok := v.(user.Actor)
	return actor, ok
}
