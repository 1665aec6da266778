package port

import "context"

// KV is one key/value pair returned by a prefix scan.
type KV struct {
	Key   string
	Value string
}

// Storage is the persistence port every stateful component writes through.
// Implementations must return repository.ErrNotFound from Get when the key
// is absent. The medium (memory, Redis, anything string-keyed) is an
// external concern.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	ScanPrefix(ctx context.Context, prefix string) ([]KV, error)
}
