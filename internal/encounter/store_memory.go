package encounter

import (
	"context"
	"sync"
	"time"

	"ember/pkg/platform/sentinel"
)

// InMemoryStore keeps the ledger in maps. Used by unit tests and local runs.
type InMemoryStore struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter
	contacts   map[string]*ManualContact
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		encounters: make(map[string]*Encounter),
		contacts:   make(map[string]*ManualContact),
	}
}

func (s *InMemoryStore) CreateEncounter(_ context.Context, e *Encounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.encounters[e.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *e
	s.encounters[e.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetEncounter(_ context.Context, id string) (*Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.encounters[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *InMemoryStore) DeleteEncounter(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.encounters[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.encounters, id)
	return nil
}

func (s *InMemoryStore) ListSince(_ context.Context, reporterID string, since time.Time) ([]*Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Encounter
	for _, e := range s.encounters {
		if e.ReporterID != reporterID {
			continue
		}
		if !since.IsZero() && e.MetAt.Before(since) {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) CreateContact(_ context.Context, c *ManualContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[c.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *c
	s.contacts[c.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetContact(_ context.Context, id string) (*ManualContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *InMemoryStore) ListContacts(_ context.Context, ownerID string) ([]*ManualContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ManualContact
	for _, c := range s.contacts {
		if c.OwnerID == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *InMemoryStore) DeleteContact(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	// Historical encounters survive with only the display name left behind.
	for _, e := range s.encounters {
		if e.Partner.Kind == PartnerManual && e.Partner.ContactID == id {
			e.Partner = AnonymousPartner(c.DisplayName)
		}
	}
	delete(s.contacts, id)
	return nil
}
