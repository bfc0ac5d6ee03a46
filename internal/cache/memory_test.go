package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryPositionStore(t *testing.T) {
	store := NewMemoryPositionStore()
	ctx := context.Background()
	userID := uuid.New()
	bookID := uuid.New()

	pos, err := store.GetPosition(ctx, userID, bookID)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 0 {
		t.Errorf("uncached position = %d, want 0", pos)
	}

	if err := store.SetPosition(ctx, userID, bookID, 4200); err != nil {
		t.Fatal(err)
	}
	pos, err = store.GetPosition(ctx, userID, bookID)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 4200 {
		t.Errorf("position = %d, want 4200", pos)
	}

	// Positions are keyed per user+book.
	otherBook := uuid.New()
	pos, _ = store.GetPosition(ctx, userID, otherBook)
	if pos != 0 {
		t.Errorf("position leaked across books: %d", pos)
	}
}

func TestMemoryPositionStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryPositionStore()
	ctx := context.Background()
	userID := uuid.New()
	bookID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int64) {
			defer wg.Done()
			_ = store.SetPosition(ctx, userID, bookID, n)
		}(int64(i))
		go func() {
			defer wg.Done()
			_, _ = store.GetPosition(ctx, userID, bookID)
		}()
	}
	wg.Wait()

	pos, err := store.GetPosition(ctx, userID, bookID)
	if err != nil {
		t.Fatal(err)
	}
	if pos < 0 || pos > 49 {
		t.Errorf("position = %d, want a value written by some goroutine", pos)
	}
}
