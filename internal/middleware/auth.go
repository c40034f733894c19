package middleware

import (
	"net/http"
	"strings"

	"github.com/01moynul/taptosell-cart/internal/logging"
	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenParser turns a bearer token into a principal.
type TokenParser interface {
	ParseToken(token string) (models.Principal, error)
}

// AuthMiddleware creates a gin.HandlerFunc that acts as our "security guard".
// It resolves the bearer token once and stores the principal for handlers.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format (must be Bearer)"})
			return
		}

		// 2. --- Validate Token ---
		principal, err := tokens.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		// 3. --- Success ---
		c.Set(principalKey, principal)
		c.Set(logging.UserIDKey, principal.UserID.String())
		c.Next()
	}
}

// Principal returns the caller resolved by AuthMiddleware.
func Principal(c *gin.Context) (models.Principal, bool) {
	raw, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := raw.(models.Principal)
	return p, ok
}
