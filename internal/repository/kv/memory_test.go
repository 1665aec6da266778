package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

func TestMemoryStorage_SetGetDelete(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	if err := storage.Set(ctx, "otp:alice", `{"code":"123456"}`); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	value, err := storage.Get(ctx, "otp:alice")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if value != `{"code":"123456"}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := storage.Delete(ctx, "otp:alice"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := storage.Get(ctx, "otp:alice"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStorage_ScanPrefixOrdered(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		if err := storage.Set(ctx, "override:"+name, name); err != nil {
			t.Fatalf("Set returned error: %v", err)
		}
	}
	if err := storage.Set(ctx, "session", "x"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	found, err := storage.ScanPrefix(ctx, "override:")
	if err != nil {
		t.Fatalf("ScanPrefix returned error: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(found))
	}
	want := []string{"override:alice", "override:bob", "override:carol"}
	for i, kv := range found {
		if kv.Key != want[i] {
			t.Fatalf("expected key %s at position %d, got %s", want[i], i, kv.Key)
		}
	}
}

func TestMemoryStorage_ConcurrentWrites(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("audit:%03d", n)
			if err := storage.Set(ctx, key, "entry"); err != nil {
				t.Errorf("Set returned error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if storage.Len() != 50 {
		t.Fatalf("expected 50 keys, got %d", storage.Len())
	}
}
