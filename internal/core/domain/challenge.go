package domain

import "time"

// Challenge is an outstanding one-time reset code for a username.
// Only one challenge may exist per username; issuing a new one replaces
// the old, which stops verifying immediately.
type Challenge struct {
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the challenge is past its validity window
// at the supplied moment. Expiry is evaluated lazily at check time;
// there is no scheduled cleanup.
func (c Challenge) ExpiredAt(at time.Time) bool {
	return at.After(c.ExpiresAt)
}

// Matches compares the supplied code against the stored one.
func (c Challenge) Matches(code string) bool {
	return c.Code != "" && c.Code == code
}
