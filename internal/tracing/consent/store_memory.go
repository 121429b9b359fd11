package consent

import (
	"context"
	"sync"

	"ember/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	settings map[string]*Settings
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{settings: make(map[string]*Settings)}
}

func (s *InMemoryStore) Get(_ context.Context, userID string) (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.settings[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *settings
	return &clone, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *settings
	s.settings[settings.UserID] = &clone
	return nil
}
