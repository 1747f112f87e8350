package kv

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisStore(client)
}

func TestSetGetRoundTrip(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("expected v1, got %q", got)
	}
}

func TestGetAbsentReturnsNotFound(t *testing.T) {
	_, store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAfterExpiryReturnsNotFound(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestSetRejectsNonPositiveTTL(t *testing.T) {
	_, store := newTestStore(t)

	if err := store.Set(context.Background(), "k1", []byte("v1"), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestSetOverwritesPriorValue(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k1", []byte("old"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "k1", []byte("new"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestDeleteAbsentKeyIsNoError(t *testing.T) {
	_, store := newTestStore(t)

	if err := store.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
}

func TestCompareAndDeleteMatching(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	deleted, err := store.CompareAndDelete(ctx, "k1", []byte("v1"))
	if err != nil {
		t.Fatalf("CompareAndDelete failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected matching value to be deleted")
	}
	if mr.Exists("k1") {
		t.Fatal("expected key to be gone")
	}
}

func TestCompareAndDeleteMismatchKeepsKey(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k1", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	deleted, err := store.CompareAndDelete(ctx, "k1", []byte("v1"))
	if err != nil {
		t.Fatalf("CompareAndDelete failed: %v", err)
	}
	if deleted {
		t.Fatal("expected mismatched value to be kept")
	}
	if !mr.Exists("k1") {
		t.Fatal("expected key to survive mismatch")
	}
}

func TestCompareAndDeleteAbsentKey(t *testing.T) {
	_, store := newTestStore(t)

	deleted, err := store.CompareAndDelete(context.Background(), "missing", []byte("v1"))
	if err != nil {
		t.Fatalf("CompareAndDelete failed: %v", err)
	}
	if deleted {
		t.Fatal("expected absent key to report false")
	}
}

func TestOperationsFailWhenRedisUnavailable(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()
	mr.Close()

	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Set, got %v", err)
	}
	if _, err := store.Get(ctx, "k1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Get, got %v", err)
	}
	if _, err := store.CompareAndDelete(ctx, "k1", []byte("v1")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from CompareAndDelete, got %v", err)
	}
}
