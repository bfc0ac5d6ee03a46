package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryPositionStore keeps positions in process memory. Default when no
// REDIS_URL is configured; positions are lost on restart.
type MemoryPositionStore struct {
	mu        sync.RWMutex
	positions map[string]int64
}

func NewMemoryPositionStore() *MemoryPositionStore {
	return &MemoryPositionStore{
		positions: make(map[string]int64),
	}
}

func (s *MemoryPositionStore) GetPosition(_ context.Context, userID, bookID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions[positionKey(userID, bookID)], nil
}

func (s *MemoryPositionStore) SetPosition(_ context.Context, userID, bookID uuid.UUID, position int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[positionKey(userID, bookID)] = position
	return nil
}
