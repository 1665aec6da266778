package redis

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestStorage_SetGetDelete(t *testing.T) {
	client, _ := newTestRedis(t)
	storage := NewStorage(client, "portal-test")
	ctx := context.Background()

	if err := storage.Set(ctx, "session", `{"username":"alice"}`); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	value, err := storage.Get(ctx, "session")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if value != `{"username":"alice"}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := storage.Delete(ctx, "session"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := storage.Get(ctx, "session"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStorage_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	storage := NewStorage(client, "portal-test")

	if _, err := storage.Get(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_ScanPrefix(t *testing.T) {
	client, _ := newTestRedis(t)
	storage := NewStorage(client, "portal-test")
	ctx := context.Background()

	pairs := map[string]string{
		"override:alice": `{"salt":"ab"}`,
		"override:bob":   `{"salt":"cd"}`,
		"otp:alice":      `{"code":"123456"}`,
	}
	for k, v := range pairs {
		if err := storage.Set(ctx, k, v); err != nil {
			t.Fatalf("Set %s returned error: %v", k, err)
		}
	}

	found, err := storage.ScanPrefix(ctx, "override:")
	if err != nil {
		t.Fatalf("ScanPrefix returned error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 override keys, got %d", len(found))
	}
	for _, kv := range found {
		want, ok := pairs[kv.Key]
		if !ok {
			t.Fatalf("unexpected key %q in scan results", kv.Key)
		}
		if kv.Value != want {
			t.Fatalf("expected value %q for %s, got %q", want, kv.Key, kv.Value)
		}
	}
}

func TestStorage_PrefixIsolation(t *testing.T) {
	client, server := newTestRedis(t)
	storage := NewStorage(client, "portal-a")
	other := NewStorage(client, "portal-b")
	ctx := context.Background()

	if err := storage.Set(ctx, "session", "a"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := other.Set(ctx, "session", "b"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if got, _ := server.Get("portal-a:session"); got != "a" {
		t.Fatalf("expected raw key portal-a:session=a, got %q", got)
	}

	value, err := storage.Get(ctx, "session")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if value != "a" {
		t.Fatalf("expected a, got %q", value)
	}
}
