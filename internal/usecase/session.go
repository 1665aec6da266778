package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

const sessionKey = "session"

// SessionService issues and holds the single current session. A new
// login silently replaces any prior session. Expiry is an explicit
// configuration choice: with a zero TTL sessions never expire.
type SessionService struct {
	storage port.Storage
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(storage port.Storage, ttl time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionService{
		storage: storage,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue builds a session from the resolved record and persists it,
// overwriting any existing session.
func (s *SessionService) Issue(ctx context.Context, record domain.UserRecord) (*domain.Session, error) {
	session := domain.Session{
		ID:          uuid.NewString(),
		Username:    record.Username,
		Role:        record.Role,
		Branch:      record.Branch,
		Permissions: record.Permissions,
		IssuedAt:    s.now().UTC(),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	if err := s.storage.Set(ctx, sessionKey, string(payload)); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &session, nil
}

// Current returns the persisted session, or nil when none exists. When
// a TTL is configured, an expired session is removed lazily and reported
// as absent; there is no background sweeper.
func (s *SessionService) Current(ctx context.Context) (*domain.Session, error) {
	raw, err := s.storage.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.logger.Warn("session parse failed", zap.Error(err))
		return nil, nil
	}

	if session.ExpiredAt(s.now().UTC(), s.ttl) {
		if err := s.storage.Delete(ctx, sessionKey); err != nil {
			s.logger.Warn("expired session cleanup failed", zap.Error(err))
		}
		return nil, nil
	}

	return &session, nil
}

// Clear removes the current session, if any.
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// WithClock overrides the internal clock, used in tests.
func (s *SessionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}
