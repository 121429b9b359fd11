package screening

import (
	"context"
	"maps"
	"sync"
	"time"

	"ember/pkg/platform/sentinel"
)

// InMemoryStore keeps screens in a map. Used by unit tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*HealthScreenRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*HealthScreenRecord)}
}

func (s *InMemoryStore) Create(_ context.Context, record *HealthScreenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id string) (*HealthScreenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID string) ([]*HealthScreenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*HealthScreenRecord
	for _, record := range s.records {
		if record.OwnerID == ownerID {
			out = append(out, cloneRecord(record))
		}
	}
	return out, nil
}

func (s *InMemoryStore) LatestBefore(_ context.Context, ownerID string, before time.Time) (*HealthScreenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *HealthScreenRecord
	for _, record := range s.records {
		if record.OwnerID != ownerID || !record.TestDate.Before(before) {
			continue
		}
		if latest == nil || record.TestDate.After(latest.TestDate) {
			latest = record
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(latest), nil
}

func (s *InMemoryStore) Update(_ context.Context, record *HealthScreenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

func cloneRecord(r *HealthScreenRecord) *HealthScreenRecord {
	clone := *r
	clone.Results = maps.Clone(r.Results)
	return &clone
}
