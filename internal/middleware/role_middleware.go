package middleware

import (
	"net/http"

	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Capability Middleware ---
//
// Runs *AFTER* AuthMiddleware(). Roles are never compared as strings here;
// the role enum decides through Role.Can.
//

// RequireCapability rejects callers whose role lacks the capability.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		if !principal.Can(capability) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Next()
	}
}
