package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/metrics"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

const (
	auditKey = "audit_log"

	defaultAuditCapacity = 500
)

// AuditService keeps the bounded, append-only trail of security-relevant
// actions. Recording is strictly best-effort: a persistence failure is
// logged and counted, and must never fail the operation that produced
// the entry.
type AuditService struct {
	storage   port.Storage
	logger    *zap.Logger
	publisher port.AuditPublisher
	capacity  int
	now       func() time.Time

	// mu serializes read-modify-write appends so eviction stays FIFO
	// under concurrent callers.
	mu sync.Mutex
}

// NewAuditService constructs an AuditService with the given capacity;
// non-positive values fall back to the default of 500.
func NewAuditService(storage port.Storage, capacity int, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}

	return &AuditService{
		storage:  storage,
		logger:   logger,
		capacity: capacity,
		now:      time.Now,
	}
}

// WithPublisher attaches an external fan-out sink for audit entries.
func (s *AuditService) WithPublisher(publisher port.AuditPublisher) *AuditService {
	s.publisher = publisher
	return s
}

// Record stamps the entry with the server-observed time and appends it,
// evicting oldest-first above capacity. Failures are swallowed; callers
// never branch on the outcome of an audit write.
func (s *AuditService) Record(ctx context.Context, entry domain.AuditEntry) {
	entry.ID = uuid.NewString()
	entry.At = s.now().UTC()

	s.mu.Lock()
	err := s.append(ctx, entry)
	s.mu.Unlock()

	if err != nil {
		metrics.AuditWriteFailures.Inc()
		s.logger.Warn("audit write failed",
			zap.String("actor", entry.Actor),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAuditEntry(ctx, entry); err != nil {
			s.logger.Warn("audit publish failed", zap.Error(err))
		}
	}
}

// Entries returns the persisted trail, oldest first.
func (s *AuditService) Entries(ctx context.Context) ([]domain.AuditEntry, error) {
	raw, err := s.storage.Get(ctx, auditKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.AuditEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *AuditService) append(ctx context.Context, entry domain.AuditEntry) error {
	var entries []domain.AuditEntry

	raw, err := s.storage.Get(ctx, auditKey)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			// A corrupt trail is replaced rather than blocking new entries.
			s.logger.Warn("audit log parse failed, starting fresh", zap.Error(err))
			entries = nil
		}
	case errors.Is(err, repository.ErrNotFound):
	default:
		return err
	}

	entries = append(entries, entry)
	if excess := len(entries) - s.capacity; excess > 0 {
		entries = entries[excess:]
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return s.storage.Set(ctx, auditKey, string(payload))
}

// WithClock overrides the internal clock, used in tests.
func (s *AuditService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}
