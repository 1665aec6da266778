package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

// AdminHandler exposes catalog maintenance operations. Access is limited
// to managers at the routing layer.
type AdminHandler struct {
	credentials *usecase.CredentialStore
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(credentials *usecase.CredentialStore) *AdminHandler {
	return &AdminHandler{credentials: credentials}
}

// RegisterRoutes binds admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/catalog/refresh", h.refreshCatalog)
	r.DELETE("/overrides", h.clearOverrides)
}

func (h *AdminHandler) refreshCatalog(c *gin.Context) {
	if err := h.credentials.Refresh(c.Request.Context()); err != nil {
		RespondWithMappedError(c, err, loginErrorCases, http.StatusInternalServerError, "failed to refresh catalog")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "catalog refreshed"})
}

func (h *AdminHandler) clearOverrides(c *gin.Context) {
	removed, err := h.credentials.ClearOverrides(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to clear overrides"))
		return
	}

	c.JSON(http.StatusOK, OverridesClearedResponse{Removed: removed})
}
