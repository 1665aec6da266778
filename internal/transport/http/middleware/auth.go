package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/logger"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/security"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

// SessionKey is the gin context key holding the authenticated session.
const SessionKey = "session"

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	}
}

// RequireSession validates the bearer token and confirms it names the
// live session record. A token referring to a session that has been
// replaced or cleared is rejected.
func RequireSession(tokens *security.SessionTokenManager, auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			switch {
			case errors.Is(err, security.ErrExpiredSessionToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "session token expired"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid session token"))
			}
			return
		}

		session, err := auth.CurrentSession(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}
		if session == nil || session.ID != claims.SessionID {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "session no longer active"))
			return
		}

		c.Set(SessionKey, session)

		c.Next()
	}
}

// RequireRole checks the authenticated session holds one of the given roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		for _, role := range roles {
			if session.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "insufficient permissions"))
	}
}

// SessionFromContext retrieves the authenticated session, if any.
func SessionFromContext(c *gin.Context) *domain.Session {
	raw, exists := c.Get(SessionKey)
	if !exists {
		return nil
	}

	session, ok := raw.(*domain.Session)
	if !ok {
		return nil
	}

	return session
}
