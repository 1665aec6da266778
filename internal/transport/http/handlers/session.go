package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/transport/http/middleware"
)

// SessionHandler exposes the current session to authenticated callers.
type SessionHandler struct{}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// RegisterRoutes binds session routes; the group must already carry the
// session middleware.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/current", h.current)
}

func (h *SessionHandler) current(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newSessionSummary(session))
}
