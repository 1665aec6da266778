package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// saltBytes is the raw salt size; hex-encoded it yields 16 characters,
	// matching every digest already present in deployed catalogs.
	saltBytes = 8

	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
)

// SHA256Hasher is the catalog-compatible hasher: lowercase hex of
// sha256(salt ++ secret), single round, no stretching. Switching an
// existing catalog away from it invalidates every stored digest, so it
// stays the default.
type SHA256Hasher struct{}

// NewSHA256Hasher constructs the default hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Salt returns 8 random bytes encoded as 16 lowercase hex characters.
func (h *SHA256Hasher) Salt() (string, error) {
	return randomSaltHex()
}

// Digest returns sha256(salt ++ secret) as lowercase hex.
func (h *SHA256Hasher) Digest(salt, secret string) string {
	sum := sha256.Sum256([]byte(salt + secret))
	return hex.EncodeToString(sum[:])
}

// Argon2Hasher is the strengthened variant behind the same contract:
// lowercase hex of argon2id(secret, salt). Only for catalogs whose
// digests were issued with it; not interoperable with SHA256Hasher.
type Argon2Hasher struct{}

// NewArgon2Hasher constructs the argon2id hasher.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{}
}

// Salt returns 8 random bytes encoded as 16 lowercase hex characters.
func (h *Argon2Hasher) Salt() (string, error) {
	return randomSaltHex()
}

// Digest returns argon2id(secret, salt) as lowercase hex.
func (h *Argon2Hasher) Digest(salt, secret string) string {
	key := argon2.IDKey([]byte(secret), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

// DigestsEqual compares two hex digests in constant time.
func DigestsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func randomSaltHex() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
