package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hotel_booking/internal/domain"
)

func takenSet(vals ...string) func(context.Context, string) (bool, error) {
	set := map[string]bool{}
	for _, v := range vals {
		set[v] = true
	}
	return func(_ context.Context, v string) (bool, error) { return set[v], nil }
}

func TestAllocateSuffixes(t *testing.T) {
	ctx := context.Background()

	got, err := Allocate(ctx, "test-hotel", "-", takenSet(), 0)
	if err != nil || got != "test-hotel" {
		t.Fatalf("free base: %q %v", got, err)
	}
	got, err = Allocate(ctx, "test-hotel", "-", takenSet("test-hotel", "test-hotel-1"), 0)
	if err != nil || got != "test-hotel-2" {
		t.Fatalf("slug suffix: %q %v", got, err)
	}
	got, err = Allocate(ctx, "awa", "", takenSet("awa"), 0)
	if err != nil || got != "awa1" {
		t.Fatalf("username suffix: %q %v", got, err)
	}
}

func TestAllocateIsCapped(t *testing.T) {
	calls := 0
	always := func(context.Context, string) (bool, error) { calls++; return true, nil }

	_, err := Allocate(context.Background(), "x", "-", always, 5)
	if !errors.Is(err, domain.ErrAllocationExhausted) {
		t.Fatalf("expected ErrAllocationExhausted, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("checked %d times, want 5", calls)
	}
}

func TestAllocateLookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Allocate(context.Background(), "x", "-", func(context.Context, string) (bool, error) { return false, boom }, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestInsertAllocatedRetriesOnce(t *testing.T) {
	ctx := context.Background()
	dup := &domain.DuplicateKeyError{Field: "slug", Err: fmt.Errorf("unique")}

	allocs, inserts := 0, 0
	err := insertAllocated(ctx, "slug",
		func(context.Context) error { allocs++; return nil },
		func(context.Context) error {
			inserts++
			if inserts == 1 {
				return dup
			}
			return nil
		})
	if err != nil || allocs != 2 || inserts != 2 {
		t.Fatalf("one collision: err=%v allocs=%d inserts=%d", err, allocs, inserts)
	}

	allocs, inserts = 0, 0
	err = insertAllocated(ctx, "slug",
		func(context.Context) error { allocs++; return nil },
		func(context.Context) error { inserts++; return dup })
	var got *domain.DuplicateKeyError
	if !errors.As(err, &got) || inserts != 2 {
		t.Fatalf("two collisions: err=%v inserts=%d", err, inserts)
	}

	// a collision on another field is not the allocator's to retry
	inserts = 0
	err = insertAllocated(ctx, "slug",
		func(context.Context) error { return nil },
		func(context.Context) error { inserts++; return &domain.DuplicateKeyError{Field: "email"} })
	if err == nil || inserts != 1 {
		t.Fatalf("foreign field: err=%v inserts=%d", err, inserts)
	}
}
