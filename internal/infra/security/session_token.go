package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSessionToken indicates the token is malformed or its signature failed.
	ErrInvalidSessionToken = errors.New("invalid session token")
	// ErrExpiredSessionToken indicates the token is past its expiry.
	ErrExpiredSessionToken = errors.New("session token expired")
)

// SessionTokenClaims binds a bearer token to a persisted session record.
// The session record remains the source of truth; the token only names it.
type SessionTokenClaims struct {
	SessionID string `json:"sid"`
	Username  string `json:"uname"`
	jwt.RegisteredClaims
}

// SessionTokenManager mints and parses HS256 session tokens for the
// HTTP surface.
type SessionTokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokenManager constructs a manager with the given signing
// secret and issuer. A non-positive ttl disables the token-level expiry.
func NewSessionTokenManager(secret, issuer string, ttl time.Duration) (*SessionTokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("session token secret is required")
	}

	return &SessionTokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Mint signs a token naming the supplied session.
func (m *SessionTokenManager) Mint(sessionID, username string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}

	now := m.now().UTC()
	claims := SessionTokenClaims{
		SessionID: sessionID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   m.issuer,
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Parse validates the token and returns its claims.
func (m *SessionTokenManager) Parse(token string) (*SessionTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSessionToken
	}

	claims := &SessionTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSessionToken
		}
		return nil, ErrInvalidSessionToken
	}

	if parsed == nil || !parsed.Valid || claims.SessionID == "" {
		return nil, ErrInvalidSessionToken
	}

	return claims, nil
}

// WithClock overrides the internal clock, used in tests.
func (m *SessionTokenManager) WithClock(clock func() time.Time) {
	if clock != nil {
		m.now = clock
	}
}
