package store

import (
	"context"
	"sync"
	"time"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// InMemoryStore keeps the registry in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.CredentialID]models.RevocationRecord
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.CredentialID]models.RevocationRecord)}
}

func (s *InMemoryStore) Contains(_ context.Context, id domain.CredentialID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.CredentialID) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec.Revoked, ok, nil
}

func (s *InMemoryStore) Insert(_ context.Context, id domain.CredentialID, issuedAt time.Time) error {
	if id.IsNil() {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.records[id] = models.RevocationRecord{CredentialID: id, IssuedAt: issuedAt}
	return nil
}

func (s *InMemoryStore) SetRevoked(_ context.Context, id domain.CredentialID, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if rec.Revoked {
		return ErrAlreadyRevoked
	}
	rec.Revoked = true
	rec.RevokedAt = &revokedAt
	s.records[id] = rec
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.CredentialID) (*models.RevocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

func (s *InMemoryStore) MaxID(_ context.Context) (domain.CredentialID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var top domain.CredentialID
	for id := range s.records {
		top = max(top, id)
	}
	return top, nil
}
