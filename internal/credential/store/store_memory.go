package store

import (
	"context"
	"sync"

	"sbt/internal/credential/models"
	"sbt/pkg/domain"
	"sbt/pkg/platform/sentinel"
)

// InMemoryStore keeps credentials in process memory. One lock guards both
// indexes and the ledger so readers never see a half-applied mutation.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[domain.CredentialID]*models.Credential
	byOwner map[domain.Account]domain.CredentialID
	issued  map[domain.CredentialID]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[domain.CredentialID]*models.Credential),
		byOwner: make(map[domain.Account]domain.CredentialID),
		issued:  make(map[domain.CredentialID]struct{}),
	}
}

func (s *InMemoryStore) Insert(ctx context.Context, credential *models.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byOwner[credential.Owner]; ok {
		return sentinel.ErrOwnerTaken
	}
	if _, ok := s.issued[credential.ID]; ok {
		return sentinel.ErrIDTaken
	}

	stored := *credential
	s.byID[stored.ID] = &stored
	s.byOwner[stored.Owner] = stored.ID
	s.issued[stored.ID] = struct{}{}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyCredential := *c
	return &copyCredential, nil
}

func (s *InMemoryStore) FindByOwner(_ context.Context, owner domain.Account) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byOwner[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyCredential := *s.byID[id]
	return &copyCredential, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byOwner, c.Owner)
	return c, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
