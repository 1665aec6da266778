package security

import (
	"regexp"
	"testing"
	"time"
)

var hexSalt = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestSHA256Hasher_SaltShape(t *testing.T) {
	hasher := NewSHA256Hasher()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		salt, err := hasher.Salt()
		if err != nil {
			t.Fatalf("Salt returned error: %v", err)
		}
		if !hexSalt.MatchString(salt) {
			t.Fatalf("expected 16 lowercase hex chars, got %q", salt)
		}
		if _, dup := seen[salt]; dup {
			t.Fatalf("salt %q repeated", salt)
		}
		seen[salt] = struct{}{}
	}
}

func TestSHA256Hasher_DigestKnownValue(t *testing.T) {
	hasher := NewSHA256Hasher()

	// sha256("ab12correctpw"), i.e. salt "ab12" concatenated with the secret.
	got := hasher.Digest("ab12", "correctpw")
	want := "cfc16e03bfabf669c8056cc251c4490766a985bc411b4bddab642b99916a617d"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if hasher.Digest("ab12", "correctpw") != got {
		t.Fatalf("digest is not deterministic")
	}
	if hasher.Digest("ab13", "correctpw") == got {
		t.Fatalf("different salt produced the same digest")
	}
}

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	hasher := NewArgon2Hasher()

	salt, err := hasher.Salt()
	if err != nil {
		t.Fatalf("Salt returned error: %v", err)
	}

	digest := hasher.Digest(salt, "secret-phrase")
	if len(digest) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(digest))
	}
	if hasher.Digest(salt, "secret-phrase") != digest {
		t.Fatalf("digest is not deterministic")
	}
	if hasher.Digest(salt, "other-phrase") == digest {
		t.Fatalf("different secret produced the same digest")
	}
}

func TestDigestsEqual(t *testing.T) {
	if !DigestsEqual("abc", "abc") {
		t.Fatalf("expected equal digests to match")
	}
	if DigestsEqual("abc", "abd") {
		t.Fatalf("expected unequal digests to differ")
	}
}

func TestSessionTokenManager_MintAndParse(t *testing.T) {
	manager, err := NewSessionTokenManager("test-secret", "portal", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionTokenManager returned error: %v", err)
	}
	fixed := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	manager.WithClock(func() time.Time { return fixed })

	token, err := manager.Mint("session-1", "alice")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.SessionID != "session-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSessionTokenManager_Expired(t *testing.T) {
	manager, err := NewSessionTokenManager("test-secret", "portal", 10*time.Minute)
	if err != nil {
		t.Fatalf("NewSessionTokenManager returned error: %v", err)
	}
	issued := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	manager.WithClock(func() time.Time { return issued })

	token, err := manager.Mint("session-1", "alice")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	manager.WithClock(func() time.Time { return issued.Add(11 * time.Minute) })
	if _, err := manager.Parse(token); err != ErrExpiredSessionToken {
		t.Fatalf("expected ErrExpiredSessionToken, got %v", err)
	}
}

func TestSessionTokenManager_RejectsGarbage(t *testing.T) {
	manager, err := NewSessionTokenManager("test-secret", "portal", 0)
	if err != nil {
		t.Fatalf("NewSessionTokenManager returned error: %v", err)
	}

	if _, err := manager.Parse("not-a-token"); err != ErrInvalidSessionToken {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}
	if _, err := manager.Parse(""); err != ErrInvalidSessionToken {
		t.Fatalf("expected ErrInvalidSessionToken for empty input, got %v", err)
	}
}
