package port

// PasswordHasher produces salts and deterministic salted digests.
// The same implementation must serve both verification and reset so a
// freshly stored override verifies with the digests it was created from.
type PasswordHasher interface {
	// Salt returns a fresh random salt encoded as lowercase hex.
	Salt() (string, error)
	// Digest returns the one-way hash of salt ++ secret as lowercase hex.
	Digest(salt, secret string) string
}
