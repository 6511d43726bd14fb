package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	cartSessionKey    = "cart_session"
	CartSessionHeader = "X-Cart-Session"
	cartSessionCookie = "cart_session"
)

// CartSession resolves the opaque cart token from the X-Cart-Session header
// or the cart_session cookie, minting a new one when neither is present.
// The token is echoed back in both places.
func CartSession(ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(CartSessionHeader)
		if token == "" {
			if cookie, err := c.Cookie(cartSessionCookie); err == nil {
				token = cookie
			}
		}
		if _, err := uuid.Parse(token); err != nil {
			token = uuid.NewString()
		}

		c.Set(cartSessionKey, token)
		c.Header(CartSessionHeader, token)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cartSessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
		c.Next()
	}
}

// CartTokenFromContext returns the cart token of the request
func CartTokenFromContext(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}
