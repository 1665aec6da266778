package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/logger"
)

// ErrorResponse represents a generic error payload with a request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request correlation ID.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest defines the payload for the login endpoint. Role is
// optional; when present the account must hold it.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// SessionSummary is the API view of the active session.
type SessionSummary struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Branch      string    `json:"branch,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

func newSessionSummary(session *domain.Session) SessionSummary {
	return SessionSummary{
		ID:          session.ID,
		Username:    session.Username,
		Role:        string(session.Role),
		Branch:      session.Branch,
		Permissions: session.Permissions,
		IssuedAt:    session.IssuedAt,
	}
}

// LoginResponse describes a successful login.
type LoginResponse struct {
	Token   string         `json:"token"`
	Session SessionSummary `json:"session"`
}

// ResetRequestRequest asks for a one-time reset code.
type ResetRequestRequest struct {
	Username string `json:"username" binding:"required"`
}

// ResetRequestResponse acknowledges the code was issued. DevCode is
// populated only in development, where no delivery channel exists.
type ResetRequestResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	DevCode   *string   `json:"dev_code,omitempty"`
}

// ResetConfirmRequest completes a reset with the delivered code.
type ResetConfirmRequest struct {
	Username    string `json:"username" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// AuditEntryView is the API shape of one audit trail entry.
type AuditEntryView struct {
	ID     string    `json:"id"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Branch string    `json:"branch,omitempty"`
	At     time.Time `json:"ts"`
}

// AuditTrailResponse wraps the persisted trail, oldest first.
type AuditTrailResponse struct {
	Entries []AuditEntryView `json:"entries"`
	Count   int              `json:"count"`
}

// OverridesClearedResponse reports how many credential overrides were removed.
type OverridesClearedResponse struct {
	Removed int `json:"removed"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
