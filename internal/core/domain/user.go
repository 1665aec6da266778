package domain

// Role enumerates the account roles recognised by the portal.
type Role string

const (
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleOther   Role = "other"
)

// ParseRole normalises a raw role string into a known Role value.
// Unrecognised values map to RoleOther so catalog rows with legacy
// role spellings still resolve.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleMember:
		return RoleMember
	case RoleManager:
		return RoleManager
	default:
		return RoleOther
	}
}

// UserRecord mirrors one row of the read-only credential catalog.
// Records are immutable at runtime; credential changes happen through
// an Override layered on top, never by editing the record itself.
type UserRecord struct {
	Username     string   `json:"username"`
	Salt         string   `json:"salt"`
	PasswordHash string   `json:"password_hash"`
	Role         Role     `json:"role"`
	Branch       string   `json:"branch,omitempty"`
	Permissions  []string `json:"permissions,omitempty"`
}

// WithCredentials returns a copy of the record with the salt and digest
// replaced. Identity fields (username, role, branch, permissions) are
// never touched.
func (r UserRecord) WithCredentials(salt, passwordHash string) UserRecord {
	out := r
	out.Salt = salt
	out.PasswordHash = passwordHash
	return out
}

// Override is a persisted credential replacement for a single username.
// At most one override exists per username; a successful password reset
// replaces any prior one.
type Override struct {
	Salt         string `json:"salt"`
	PasswordHash string `json:"password_hash"`
}

// Valid reports whether the override carries both credential fields.
// Malformed overrides are ignored rather than treated as errors.
func (o Override) Valid() bool {
	return o.Salt != "" && o.PasswordHash != ""
}
