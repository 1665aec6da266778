package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

const overrideKeyPrefix = "override:"

// ErrCatalogUnavailable indicates the credential catalog could not be
// fetched. It is a hard failure, distinct from any credential outcome.
var ErrCatalogUnavailable = errors.New("credential catalog unavailable")

// CredentialStore resolves usernames against the read-only catalog and
// layers persisted credential overrides on top. The catalog is fetched
// at most once per process: concurrent first resolves share a single
// outstanding fetch, and only an explicit Refresh re-fetches.
type CredentialStore struct {
	loader  port.CatalogLoader
	storage port.Storage
	logger  *zap.Logger

	mu      sync.Mutex
	records map[string]domain.UserRecord
	fetch   *catalogFetch
}

type catalogFetch struct {
	done    chan struct{}
	records map[string]domain.UserRecord
	err     error
}

// NewCredentialStore constructs a CredentialStore.
func NewCredentialStore(loader port.CatalogLoader, storage port.Storage, logger *zap.Logger) *CredentialStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CredentialStore{
		loader:  loader,
		storage: storage,
		logger:  logger,
	}
}

// Resolve returns the catalog record for username, or
// repository.ErrNotFound when the catalog has no such entry. The
// returned record does not include any override; see WithOverride.
func (s *CredentialStore) Resolve(ctx context.Context, username string) (domain.UserRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.UserRecord{}, fmt.Errorf("username is required")
	}

	records, err := s.load(ctx, false)
	if err != nil {
		return domain.UserRecord{}, err
	}

	record, ok := records[username]
	if !ok {
		return domain.UserRecord{}, repository.ErrNotFound
	}

	return record, nil
}

// Refresh discards the memoized catalog and fetches it again.
func (s *CredentialStore) Refresh(ctx context.Context) error {
	_, err := s.load(ctx, true)
	return err
}

// WithOverride returns the record with any persisted credential override
// applied. Absent or malformed override data leaves the record unchanged;
// overrides never alter identity fields.
func (s *CredentialStore) WithOverride(ctx context.Context, record domain.UserRecord) domain.UserRecord {
	raw, err := s.storage.Get(ctx, overrideKeyPrefix+record.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("override lookup failed", zap.String("username", record.Username), zap.Error(err))
		}
		return record
	}

	var override domain.Override
	if err := json.Unmarshal([]byte(raw), &override); err != nil {
		s.logger.Warn("override parse failed", zap.String("username", record.Username), zap.Error(err))
		return record
	}
	if !override.Valid() {
		return record
	}

	return record.WithCredentials(override.Salt, override.PasswordHash)
}

// StoreOverride persists the credential override for username,
// replacing any prior one.
func (s *CredentialStore) StoreOverride(ctx context.Context, username, salt, passwordHash string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}

	payload, err := json.Marshal(domain.Override{Salt: salt, PasswordHash: passwordHash})
	if err != nil {
		return fmt.Errorf("marshal override: %w", err)
	}

	if err := s.storage.Set(ctx, overrideKeyPrefix+username, string(payload)); err != nil {
		return fmt.Errorf("store override: %w", err)
	}

	return nil
}

// ClearOverrides removes every persisted credential override, reverting
// all accounts to their catalog credentials. Returns the number of
// overrides removed.
func (s *CredentialStore) ClearOverrides(ctx context.Context) (int, error) {
	pairs, err := s.storage.ScanPrefix(ctx, overrideKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("scan overrides: %w", err)
	}

	removed := 0
	for _, pair := range pairs {
		if err := s.storage.Delete(ctx, pair.Key); err != nil {
			return removed, fmt.Errorf("delete override %s: %w", pair.Key, err)
		}
		removed++
	}

	return removed, nil
}

// load returns the memoized catalog, starting a fetch when none has
// completed. Callers that arrive while a fetch is outstanding wait on
// the same fetch instead of issuing their own; a failed fetch is not
// memoized, so the next call retries.
func (s *CredentialStore) load(ctx context.Context, force bool) (map[string]domain.UserRecord, error) {
	s.mu.Lock()

	if s.records != nil && !force {
		records := s.records
		s.mu.Unlock()
		return records, nil
	}

	if s.fetch != nil {
		pending := s.fetch
		s.mu.Unlock()

		select {
		case <-pending.done:
			return pending.records, pending.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	pending := &catalogFetch{done: make(chan struct{})}
	s.fetch = pending
	if force {
		s.records = nil
	}
	s.mu.Unlock()

	loaded, err := s.loader.Load(ctx)

	var records map[string]domain.UserRecord
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	} else {
		records = make(map[string]domain.UserRecord, len(loaded))
		for _, record := range loaded {
			records[record.Username] = record
		}
	}

	s.mu.Lock()
	if err == nil {
		s.records = records
	}
	s.fetch = nil
	s.mu.Unlock()

	pending.records = records
	pending.err = err
	close(pending.done)

	return records, err
}
