package memory

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/closer/internal/storage"
)

// Store keeps collection payloads in process memory. Nothing survives a restart.
type Store struct {
	mu    sync.RWMutex
	blobs map[storage.Collection][]byte
}

func New() *Store {
	return &Store{blobs: make(map[storage.Collection][]byte)}
}

func (s *Store) Load(_ context.Context, c storage.Collection) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[c]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), b...), nil
}

func (s *Store) Save(_ context.Context, batch map[storage.Collection][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c, b := range batch {
		s.blobs[c] = append([]byte(nil), b...)
	}

	return nil
}
