package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
)

// FileLoader reads the credential catalog from a JSON document on disk.
// The document shape matches the portal's users.json:
//
//	{"users": [{"username": ..., "salt": ..., "password_hash": ..., "role": ..., "branch": ..., "permissions": [...]}]}
type FileLoader struct {
	path string
}

// NewFileLoader constructs a loader for the supplied path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

type catalogDocument struct {
	Users []catalogRow `json:"users"`
}

type catalogRow struct {
	Username     string   `json:"username"`
	Salt         string   `json:"salt"`
	PasswordHash string   `json:"password_hash"`
	Role         string   `json:"role"`
	Branch       string   `json:"branch"`
	Permissions  []string `json:"permissions"`
}

// Load parses the catalog document. Rows without a username are skipped;
// a duplicate username is a document error because catalog usernames are
// unique by invariant.
func (l *FileLoader) Load(_ context.Context) ([]domain.UserRecord, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", l.path, err)
	}

	var doc catalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", l.path, err)
	}

	seen := make(map[string]struct{}, len(doc.Users))
	records := make([]domain.UserRecord, 0, len(doc.Users))
	for _, row := range doc.Users {
		username := strings.TrimSpace(row.Username)
		if username == "" {
			continue
		}
		if _, dup := seen[username]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate username %q", l.path, username)
		}
		seen[username] = struct{}{}

		records = append(records, domain.UserRecord{
			Username:     username,
			Salt:         row.Salt,
			PasswordHash: row.PasswordHash,
			Role:         domain.ParseRole(row.Role),
			Branch:       row.Branch,
			Permissions:  row.Permissions,
		})
	}

	return records, nil
}
