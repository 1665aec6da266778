package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/metrics"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/security"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

var (
	// ErrUserNotFound indicates the username has no catalog entry.
	// Deliberately distinct from ErrInvalidCredentials; see DESIGN.md.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleMismatch indicates the account exists but does not hold the expected role.
	ErrRoleMismatch = errors.New("role mismatch")
	// ErrInvalidCredentials indicates the password digest did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoChallenge indicates no reset code is outstanding for the username.
	ErrNoChallenge = errors.New("no reset code outstanding")
	// ErrChallengeExpired indicates the reset code is past its validity window.
	ErrChallengeExpired = errors.New("reset code expired")
	// ErrCodeMismatch indicates the supplied reset code is incorrect.
	ErrCodeMismatch = errors.New("reset code incorrect")
)

// AuthService orchestrates login and the password reset flow across the
// credential store, hasher, OTP service, session manager, and audit log.
type AuthService struct {
	credentials *CredentialStore
	hasher      port.PasswordHasher
	otp         *OTPService
	sessions    *SessionService
	audit       *AuditService
	logger      *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	credentials *CredentialStore,
	hasher port.PasswordHasher,
	otp *OTPService,
	sessions *SessionService,
	audit *AuditService,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		credentials: credentials,
		hasher:      hasher,
		otp:         otp,
		sessions:    sessions,
		audit:       audit,
		logger:      logger,
	}
}

// Login authenticates username/password and issues the current session.
// An empty expectedRole accepts any role; otherwise the catalog role must
// match before credentials are even checked.
func (s *AuthService) Login(ctx context.Context, username, password string, expectedRole domain.Role) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	record, err := s.credentials.Resolve(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("not_found").Inc()
			return nil, ErrUserNotFound
		}
		metrics.LoginAttempts.WithLabelValues("catalog_unavailable").Inc()
		return nil, err
	}

	if expectedRole != "" && record.Role != expectedRole {
		metrics.LoginAttempts.WithLabelValues("role_mismatch").Inc()
		return nil, ErrRoleMismatch
	}

	record = s.credentials.WithOverride(ctx, record)

	digest := s.hasher.Digest(record.Salt, password)
	if !security.DigestsEqual(digest, record.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		Actor:  record.Username,
		Action: domain.AuditActionLogin,
		Branch: record.Branch,
	})
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	return session, nil
}

// RequestReset issues a one-time reset code for username. The code is
// returned to the caller; delivering it out-of-band to the legitimate
// owner is an external concern.
func (s *AuthService) RequestReset(ctx context.Context, username string) (*domain.Challenge, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	record, err := s.credentials.Resolve(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	challenge, err := s.otp.Issue(ctx, record.Username)
	if err != nil {
		return nil, fmt.Errorf("issue reset code: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		Actor:  record.Username,
		Action: domain.AuditActionOTPSent,
		Branch: record.Branch,
	})
	metrics.ResetCodesIssued.Inc()

	return challenge, nil
}

// CompleteReset verifies the supplied code and, on success, consumes the
// challenge and stores a credential override with a freshly salted digest
// of the new password. Nothing is mutated on any failure outcome.
func (s *AuthService) CompleteReset(ctx context.Context, username, code, newPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}

	result, err := s.otp.Check(ctx, username, code)
	if err != nil {
		return fmt.Errorf("check reset code: %w", err)
	}
	switch result {
	case CheckNoChallenge:
		metrics.ResetsCompleted.WithLabelValues("no_challenge").Inc()
		return ErrNoChallenge
	case CheckExpired:
		metrics.ResetsCompleted.WithLabelValues("expired").Inc()
		return ErrChallengeExpired
	case CheckMismatch:
		metrics.ResetsCompleted.WithLabelValues("mismatch").Inc()
		return ErrCodeMismatch
	case CheckValid:
	default:
		return fmt.Errorf("unexpected check result %v", result)
	}

	if err := s.otp.Consume(ctx, username); err != nil {
		return err
	}

	salt, err := s.hasher.Salt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	digest := s.hasher.Digest(salt, newPassword)

	if err := s.credentials.StoreOverride(ctx, username, salt, digest); err != nil {
		return err
	}

	// Branch is audit garnish; a catalog hiccup here must not fail a
	// reset that already took effect.
	branch := ""
	if record, err := s.credentials.Resolve(ctx, username); err == nil {
		branch = record.Branch
	}

	s.audit.Record(ctx, domain.AuditEntry{
		Actor:  username,
		Action: domain.AuditActionResetOverride,
		Branch: branch,
	})
	metrics.ResetsCompleted.WithLabelValues("success").Inc()

	return nil
}

// Logout clears the current session, recording who signed out.
func (s *AuthService) Logout(ctx context.Context) error {
	session, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}

	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}

	if session != nil {
		s.audit.Record(ctx, domain.AuditEntry{
			Actor:  session.Username,
			Action: domain.AuditActionLogout,
			Branch: session.Branch,
		})
	}

	return nil
}

// CurrentSession exposes the session manager's current session.
func (s *AuthService) CurrentSession(ctx context.Context) (*domain.Session, error) {
	return s.sessions.Current(ctx)
}
