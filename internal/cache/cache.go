package cache

import (
	"context"

	"github.com/google/uuid"
)

// PositionStore holds the transient "where in the book is this reader"
// state. It is UI-convenience data with no durability guarantee; losing it
// only resets the reader view, never streaks or challenge progress.
type PositionStore interface {
	// GetPosition returns the cached position for (userID, bookID), or 0
	// when nothing is cached.
	GetPosition(ctx context.Context, userID, bookID uuid.UUID) (int64, error)
	SetPosition(ctx context.Context, userID, bookID uuid.UUID, position int64) error
}

func positionKey(userID, bookID uuid.UUID) string {
	return "reading_position:" + userID.String() + ":" + bookID.String()
}
