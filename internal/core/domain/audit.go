package domain

import "time"

// AuditAction enumerates the security-relevant actions the portal records.
type AuditAction string

const (
	AuditActionLogin         AuditAction = "login"
	AuditActionLogout        AuditAction = "logout"
	AuditActionOTPSent       AuditAction = "otp_sent"
	AuditActionResetOverride AuditAction = "password_reset_override"
)

// AuditEntry is one record in the bounded, append-only audit trail.
// The timestamp is stamped by the audit service at record time, never
// supplied by the caller.
type AuditEntry struct {
	ID     string      `json:"id,omitempty"`
	Actor  string      `json:"actor"`
	Action AuditAction `json:"action"`
	Branch string      `json:"branch,omitempty"`
	At     time.Time   `json:"ts"`
}
