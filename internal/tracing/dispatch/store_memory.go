package dispatch

import (
	"context"
	"slices"
	"sync"
	"time"

	"ember/pkg/platform/sentinel"
)

// InMemoryStore keeps notification rows in maps, guarding the
// (recipient, report) pair with a composite-key set under one mutex so the
// uniqueness guarantee matches the postgres constraint.
type InMemoryStore struct {
	mu     sync.RWMutex
	rows   map[string]*ExposureNotification
	byPair map[string]string // recipientKey+"|"+reportID -> row id
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		rows:   make(map[string]*ExposureNotification),
		byPair: make(map[string]string),
	}
}

func pairKey(recipientKey, reportID string) string {
	return recipientKey + "|" + reportID
}

func (s *InMemoryStore) Create(_ context.Context, n *ExposureNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair := pairKey(n.Recipient.Key(), n.SourceReportID)
	if _, ok := s.byPair[pair]; ok {
		return sentinel.ErrConflict
	}
	s.byPair[pair] = n.ID
	s.rows[n.ID] = cloneNotification(n)
	return nil
}

func (s *InMemoryStore) ListByReport(_ context.Context, reportID string) ([]*ExposureNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ExposureNotification
	for _, n := range s.rows {
		if n.SourceReportID == reportID {
			out = append(out, cloneNotification(n))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListUnreadApp(_ context.Context, recipientKey string) ([]*ExposureNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ExposureNotification
	for _, n := range s.rows {
		if n.Channel == ChannelApp && n.ReadAt == nil && n.Recipient.Key() == recipientKey {
			out = append(out, cloneNotification(n))
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, recipientKey string, ids []string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := 0
	for _, id := range ids {
		n, ok := s.rows[id]
		if !ok || n.Channel != ChannelApp || n.ReadAt != nil || n.Recipient.Key() != recipientKey {
			continue
		}
		stamp := at
		n.ReadAt = &stamp
		marked++
	}
	return marked, nil
}

func (s *InMemoryStore) MarkDelivered(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Delivered = true
	return nil
}

func cloneNotification(n *ExposureNotification) *ExposureNotification {
	clone := *n
	clone.STITypes = slices.Clone(n.STITypes)
	if n.ReadAt != nil {
		stamp := *n.ReadAt
		clone.ReadAt = &stamp
	}
	return &clone
}
