package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"sbt/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	seen   map[uuid.UUID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seen: make(map[uuid.UUID]struct{})}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.seen = make(map[uuid.UUID]struct{})
}

// Append ignores an event whose ID was already stored.
func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID != uuid.Nil {
		if _, dup := s.seen[event.ID]; dup {
			return nil
		}
		s.seen[event.ID] = struct{}{}
	}
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor domain.Account) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.Actor == actor }), nil
}

func (s *InMemoryStore) ListByToken(_ context.Context, tokenID domain.CredentialID) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.TokenID != nil && *e.TokenID == tokenID }), nil
}

// All returns every event in append order.
func (s *InMemoryStore) All() []Event {
	return s.filter(func(Event) bool { return true })
}

func (s *InMemoryStore) filter(keep func(Event) bool) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
