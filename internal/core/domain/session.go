package domain

import "time"

// Session represents the single locally held authenticated identity.
// A new login silently replaces any prior session.
type Session struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	Branch      string    `json:"branch,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// ExpiredAt reports whether the session is past the supplied TTL at the
// given moment. A non-positive TTL means sessions never expire.
func (s Session) ExpiredAt(at time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return at.After(s.IssuedAt.Add(ttl))
}

// HasPermission reports whether the session carries the named permission.
func (s Session) HasPermission(name string) bool {
	for _, p := range s.Permissions {
		if p == name {
			return true
		}
	}
	return false
}
