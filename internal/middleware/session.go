package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/intervue-backend/internal/response"
	"github.com/prepdeck/intervue-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active
// login session in Redis. A mismatch means the session was invalidated
// (logout, or a login elsewhere was reset); the request is rejected with
// SESSION_EXPIRED so the client knows to re-authenticate.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for candidate tokens.
		if claims.TokenType != service.TokenTypeCandidate {
			c.Next()
			return
		}

		if err := authService.ValidateCandidateSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionExpired)
			return
		}

		c.Next()
	}
}
