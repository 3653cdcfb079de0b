package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := store.Set(ctx, "key1", payload{Name: "ton", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got payload
	if !store.Get(ctx, "key1", &got) {
		t.Fatal("expected cache hit for key1")
	}
	if got.Name != "ton" || got.Count != 3 {
		t.Errorf("got %+v, want {ton 3}", got)
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()

	var got string
	if store.Get(context.Background(), "missing", &got) {
		t.Error("expected cache miss for unknown key")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "short", "value", -time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got string
	if store.Get(ctx, "short", &got) {
		t.Error("expected expired entry to miss")
	}
	if store.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, have %d entries", store.Len())
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "key", 42, time.Minute)
	store.Delete(ctx, "key")

	var got int
	if store.Get(ctx, "key", &got) {
		t.Error("expected miss after delete")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "key", "first", time.Minute)
	store.Set(ctx, "key", "second", time.Minute)

	var got string
	if !store.Get(ctx, "key", &got) {
		t.Fatal("expected cache hit")
	}
	if got != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}
