package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// registryContractSuite runs the same behavioral checks against every backend.
// Backends embed it and set newStore.
type registryContractSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	nextID   atomic.Uint64
}

func (s *registryContractSuite) SetupTest() {
	s.store = s.newStore()
}

// freshID avoids collisions when a backend keeps state across tests.
func (s *registryContractSuite) freshID() domain.CredentialID {
	return domain.CredentialID(uint64(time.Now().UnixNano()%1_000_000_000) + s.nextID.Add(1)*1_000_000_000)
}

func (s *registryContractSuite) TestNeverIssuedIsAbsent() {
	ctx := context.Background()
	id := s.freshID()

	found, err := s.store.Contains(ctx, id)
	s.Require().NoError(err)
	s.False(found)

	revoked, found, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.False(found)
	s.False(revoked)

	_, err = s.store.Find(ctx, id)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *registryContractSuite) TestInsertCreatesActiveRecord() {
	ctx := context.Background()
	id := s.freshID()
	issuedAt := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	s.Require().NoError(s.store.Insert(ctx, id, issuedAt))

	revoked, found, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.True(found)
	s.False(revoked)

	rec, err := s.store.Find(ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StateActive, rec.State())
	s.True(issuedAt.Equal(rec.IssuedAt))
	s.Nil(rec.RevokedAt)
}

func (s *registryContractSuite) TestSecondInsertFails() {
	ctx := context.Background()
	id := s.freshID()
	s.Require().NoError(s.store.Insert(ctx, id, time.Now()))
	s.Require().NoError(s.store.SetRevoked(ctx, id, time.Now()))

	err := s.store.Insert(ctx, id, time.Now())
	s.ErrorIs(err, sentinel.ErrAlreadyExists)

	// The failed insert must not reset the flag.
	revoked, _, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *registryContractSuite) TestSetRevokedIsOneWay() {
	ctx := context.Background()
	id := s.freshID()
	s.Require().NoError(s.store.Insert(ctx, id, time.Now()))

	revokedAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.SetRevoked(ctx, id, revokedAt))

	err := s.store.SetRevoked(ctx, id, time.Now())
	s.ErrorIs(err, ErrAlreadyRevoked)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	rec, err := s.store.Find(ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StateRevoked, rec.State())
	s.Require().NotNil(rec.RevokedAt)
	s.True(revokedAt.Equal(*rec.RevokedAt))
}

func (s *registryContractSuite) TestSetRevokedOnMissingRecord() {
	err := s.store.SetRevoked(context.Background(), s.freshID(), time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *registryContractSuite) TestConcurrentRevokeFlipsOnce() {
	ctx := context.Background()
	id := s.freshID()
	s.Require().NoError(s.store.Insert(ctx, id, time.Now()))

	var wg sync.WaitGroup
	var wins, already atomic.Int32
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.SetRevoked(ctx, id, time.Now())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrAlreadyRevoked):
				already.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(15), already.Load())
}

func (s *registryContractSuite) TestMaxIDTracksHighestInsert() {
	ctx := context.Background()
	low, high := s.freshID(), s.freshID()
	s.Require().NoError(s.store.Insert(ctx, high, time.Now()))
	s.Require().NoError(s.store.Insert(ctx, low, time.Now()))
	s.Require().NoError(s.store.SetRevoked(ctx, high, time.Now()))

	top, err := s.store.MaxID(ctx)
	s.Require().NoError(err)
	s.Equal(high, top)
}
