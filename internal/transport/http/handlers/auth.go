package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/security"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

// AuthHandler exposes login, logout, and the password reset flow.
type AuthHandler struct {
	auth   *usecase.AuthService
	tokens *security.SessionTokenManager
	isDev  bool
}

// AuthHandlerOption configures optional AuthHandler behaviour.
type AuthHandlerOption func(*AuthHandler)

// WithDevMode toggles development-only behaviour, such as returning the
// reset code in the response instead of delivering it out-of-band.
func WithDevMode(isDev bool) AuthHandlerOption {
	return func(h *AuthHandler) {
		h.isDev = isDev
	}
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, tokens *security.SessionTokenManager, opts ...AuthHandlerOption) *AuthHandler {
	handler := &AuthHandler{
		auth:   auth,
		tokens: tokens,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}

	return handler
}

// RegisterRoutes binds authentication routes. sessionMiddleware guards
// the endpoints that require an active session.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, sessionMiddleware gin.HandlerFunc) {
	r.POST("/login", h.login)
	r.POST("/logout", sessionMiddleware, h.logout)

	reset := r.Group("/reset")
	reset.POST("/request", h.resetRequest)
	reset.POST("/confirm", h.resetConfirm)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	var expectedRole domain.Role
	if strings.TrimSpace(req.Role) != "" {
		expectedRole = domain.ParseRole(req.Role)
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, expectedRole)
	if err != nil {
		RespondWithMappedError(c, err, loginErrorCases, http.StatusInternalServerError, "authentication failed")
		return
	}

	token, err := h.tokens.Mint(session.ID, session.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue session token"))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Session: newSessionSummary(session),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to end session"))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) resetRequest(c *gin.Context) {
	var req ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username is required"))
		return
	}

	challenge, err := h.auth.RequestReset(c.Request.Context(), req.Username)
	if err != nil {
		RespondWithMappedError(c, err, resetErrorCases, http.StatusInternalServerError, "failed to issue reset code")
		return
	}

	resp := ResetRequestResponse{
		Message:   "reset code issued",
		ExpiresAt: challenge.ExpiresAt,
	}
	if h.isDev {
		if code := strings.TrimSpace(challenge.Code); code != "" {
			resp.DevCode = &code
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) resetConfirm(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username, code, and new_password are required"))
		return
	}

	if err := h.auth.CompleteReset(c.Request.Context(), req.Username, req.Code, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, resetErrorCases, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset"})
}
