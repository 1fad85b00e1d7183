package memory

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/edukit-cloud/edukit/internal/db"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore(8, time.Minute)
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}

	ok, err := s.Exists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
}

func TestStoreDel(t *testing.T) {
	s := NewStore(8, 0)
	defer s.Close()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, []byte(k)); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	if err := s.Del(ctx, "a"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := s.DelBatch(ctx, []string{"b", "c"}); err != nil {
		t.Fatalf("DelBatch: %v", err)
	}

	for _, k := range []string{"a", "b", "c"} {
		if ok, _ := s.Exists(ctx, k); ok {
			t.Fatalf("key %s still present after delete", k)
		}
	}
}

func TestStoreScan(t *testing.T) {
	s := NewStore(16, 0)
	defer s.Close()
	ctx := context.Background()

	keys := []string{"edukit:summary:1", "edukit:summary:2", "edukit:quiz:1"}
	for _, k := range keys {
		if err := s.Set(ctx, k, []byte("x")); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	got, err := s.Scan(ctx, "edukit:summary:*")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	sort.Strings(got)
	want := []string{"edukit:summary:1", "edukit:summary:2"}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if _, err := s.Scan(ctx, "[bad"); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestStoreEviction(t *testing.T) {
	s := NewStore(2, 0)
	defer s.Close()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, []byte(k)); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	// Capacity 2: the oldest entry is gone.
	if ok, _ := s.Exists(ctx, "a"); ok {
		t.Fatal("expected oldest key to be evicted")
	}
	if ok, _ := s.Exists(ctx, "c"); !ok {
		t.Fatal("expected newest key to survive")
	}
}
