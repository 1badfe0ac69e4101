package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestSessionStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore[string]()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if _, evicted, err := store.Put(ctx, "s1", "one"); err != nil || evicted {
		t.Fatalf("unexpected put result: evicted=%v err=%v", evicted, err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one" {
		t.Errorf("expected one, got %q", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, _, err := store.Put(ctx, "", "x"); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}

	if _, _, err := store.Put(ctx, "s1", "uno"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := store.Get(ctx, "s1"); got != "uno" {
		t.Errorf("expected replacement value, got %q", got)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after replace, got %d", count)
	}

	v, ok := store.Delete(ctx, "s1")
	if !ok || v != "uno" {
		t.Errorf("expected delete to return uno, got %q %v", v, ok)
	}
	if _, ok := store.Delete(ctx, "s1"); ok {
		t.Error("expected second delete to miss")
	}
}

func TestSessionStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore[int](WithMaxEntries[int](3))

	for i := 1; i <= 3; i++ {
		if _, _, err := store.Put(ctx, fmt.Sprintf("s%d", i), i); err != nil {
			t.Fatal(err)
		}
	}

	// touch s1 so s2 becomes the oldest
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatal(err)
	}

	evicted, ok, err := store.Put(ctx, "s4", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || evicted != 2 {
		t.Errorf("expected s2 evicted, got %d %v", evicted, ok)
	}
	if _, err := store.Get(ctx, "s2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected s2 gone, got %v", err)
	}
	if count := store.Count(ctx); count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	var order []string
	store.Range(func(id string, _ int) bool {
		order = append(order, id)
		return true
	})
	want := []string{"s4", "s1", "s3"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("expected recency order %v, got %v", want, order)
	}
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore[int](WithMaxEntries[int](50))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("g%d-%d", g, i%80)
				_, _, _ = store.Put(ctx, id, i)
				_, _ = store.Get(ctx, id)
				if i%7 == 0 {
					store.Delete(ctx, id)
				}
			}
		}(g)
	}
	wg.Wait()

	if count := store.Count(ctx); count > 50 {
		t.Errorf("expected at most 50 sessions, got %d", count)
	}
}

func TestSessionStore_OnEvict(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	store := NewSessionStore[int](
		WithMaxEntries[int](2),
		WithOnEvict(func(id string, _ int) { evicted = append(evicted, id) }),
	)

	for _, id := range []string{"s1", "s2"} {
		if _, _, err := store.Put(ctx, id, 0); err != nil {
			t.Fatal(err)
		}
	}
	// replacing a live session is not an eviction
	if _, ok, _ := store.Put(ctx, "s2", 1); ok {
		t.Error("expected replace not to evict")
	}
	// deleting is not an eviction either
	if _, ok := store.Delete(ctx, "s2"); !ok {
		t.Fatal("expected s2 to be deleted")
	}
	if len(evicted) != 0 {
		t.Fatalf("expected no evictions yet, got %v", evicted)
	}

	for _, id := range []string{"s3", "s4", "s5"} {
		if _, _, err := store.Put(ctx, id, 0); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"s1", "s3"}
	if fmt.Sprint(evicted) != fmt.Sprint(want) {
		t.Errorf("expected evictions %v once each, got %v", want, evicted)
	}
	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}
