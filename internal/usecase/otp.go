package usecase

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

const (
	otpKeyPrefix  = "otp:"
	otpCodeDigits = 6

	defaultOTPTTL = 10 * time.Minute
)

// CheckResult is the outcome of comparing a supplied code against the
// stored challenge. Check never mutates state; consumption is separate.
type CheckResult int

const (
	// CheckNoChallenge means no challenge is outstanding for the username.
	CheckNoChallenge CheckResult = iota
	// CheckExpired means the challenge exists but is past its window.
	CheckExpired
	// CheckMismatch means the supplied code does not match.
	CheckMismatch
	// CheckValid means the supplied code matches an unexpired challenge.
	CheckValid
)

// String renders the result for logs.
func (r CheckResult) String() string {
	switch r {
	case CheckNoChallenge:
		return "no_challenge"
	case CheckExpired:
		return "expired"
	case CheckMismatch:
		return "mismatch"
	case CheckValid:
		return "valid"
	default:
		return "unknown"
	}
}

// OTPService issues, verifies, and consumes time-boxed one-time codes.
// At most one challenge exists per username; issuing replaces the prior
// one, which stops verifying immediately.
type OTPService struct {
	storage port.Storage
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time
	genCode func() (string, error)
}

// NewOTPService constructs an OTPService with the default 10-minute window.
func NewOTPService(storage port.Storage, logger *zap.Logger) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OTPService{
		storage: storage,
		logger:  logger,
		ttl:     defaultOTPTTL,
		now:     time.Now,
		genCode: randomCode,
	}
}

// Issue generates a fresh challenge for username and persists it,
// replacing any outstanding one.
func (s *OTPService) Issue(ctx context.Context, username string) (*domain.Challenge, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	code, err := s.genCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	challenge := domain.Challenge{
		Username:  username,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}

	payload, err := json.Marshal(challenge)
	if err != nil {
		return nil, fmt.Errorf("marshal challenge: %w", err)
	}

	if err := s.storage.Set(ctx, otpKeyPrefix+username, string(payload)); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	return &challenge, nil
}

// Check compares the supplied code against the stored challenge. It is
// a pure read: repeated checks with the correct code keep returning
// CheckValid until Consume deletes the challenge.
func (s *OTPService) Check(ctx context.Context, username, code string) (CheckResult, error) {
	raw, err := s.storage.Get(ctx, otpKeyPrefix+strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CheckNoChallenge, nil
		}
		return CheckNoChallenge, fmt.Errorf("fetch challenge: %w", err)
	}

	var challenge domain.Challenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		s.logger.Warn("challenge parse failed", zap.String("username", username), zap.Error(err))
		return CheckNoChallenge, nil
	}

	if challenge.ExpiredAt(s.now().UTC()) {
		return CheckExpired, nil
	}
	if !challenge.Matches(strings.TrimSpace(code)) {
		return CheckMismatch, nil
	}

	return CheckValid, nil
}

// Consume deletes the outstanding challenge. Called only by the reset
// completion path after a CheckValid outcome.
func (s *OTPService) Consume(ctx context.Context, username string) error {
	if err := s.storage.Delete(ctx, otpKeyPrefix+strings.TrimSpace(username)); err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	return nil
}

// WithClock overrides the internal clock, used in tests.
func (s *OTPService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithTTL overrides the challenge validity window.
func (s *OTPService) WithTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// WithCodeGenerator overrides code generation, used in tests.
func (s *OTPService) WithCodeGenerator(gen func() (string, error)) {
	if gen != nil {
		s.genCode = gen
	}
}

// randomCode samples uniformly over 000000-999999 and zero-pads to six
// digits.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpCodeDigits, n.Int64()), nil
}
