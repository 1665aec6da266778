package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

// AuditHandler exposes the persisted audit trail. Access is limited to
// managers at the routing layer.
type AuditHandler struct {
	audit *usecase.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *usecase.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// RegisterRoutes binds audit routes.
func (h *AuditHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
}

func (h *AuditHandler) list(c *gin.Context) {
	entries, err := h.audit.Entries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to read audit trail"))
		return
	}

	views := make([]AuditEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, AuditEntryView{
			ID:     entry.ID,
			Actor:  entry.Actor,
			Action: string(entry.Action),
			Branch: entry.Branch,
			At:     entry.At,
		})
	}

	c.JSON(http.StatusOK, AuditTrailResponse{
		Entries: views,
		Count:   len(views),
	})
}
