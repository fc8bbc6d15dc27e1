package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

const (
	service domain.Address = "SERVICE"
	holder  domain.Address = "HOLDER"
	other   domain.Address = "OTHER"
)

type InMemoryLedgerSuite struct {
	suite.Suite
	ctx    context.Context
	ledger *InMemoryLedger
}

func TestInMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLedgerSuite))
}

func (s *InMemoryLedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledger = NewInMemory(service, 1001)
}

func (s *InMemoryLedgerSuite) credentialConfig() AssetConfig {
	return AssetConfig{
		Name:     "BSc Computer Science",
		UnitName: "DEGREE",
		URL:      "ipfs://bafy",
		Total:    1,
		Manager:  service,
		Reserve:  holder,
		Freeze:   service,
		Clawback: service,
	}
}

func (s *InMemoryLedgerSuite) create() domain.CredentialID {
	id, err := s.ledger.CreateUniqueAsset(s.ctx, s.credentialConfig())
	s.Require().NoError(err)
	return id
}

func (s *InMemoryLedgerSuite) TestCreateAssignsSequentialIDs() {
	s.Equal(domain.CredentialID(1001), s.create())
	s.Equal(domain.CredentialID(1002), s.create())

	params, err := s.ledger.AssetInfo(s.ctx, 1001)
	s.Require().NoError(err)
	s.Equal(service, params.Creator)
	s.Equal(holder, params.Reserve)
	s.Equal(uint64(1), params.Total)

	holdings, err := s.ledger.AccountHoldings(s.ctx, service)
	s.Require().NoError(err)
	s.Equal([]Holding{{AssetID: 1001, Amount: 1}, {AssetID: 1002, Amount: 1}}, holdings)
}

func (s *InMemoryLedgerSuite) TestCreateEnforcesLimits() {
	cases := map[string]func(*AssetConfig){
		"name": func(c *AssetConfig) { c.Name = strings.Repeat("n", MaxAssetNameBytes+1) },
		"unit": func(c *AssetConfig) { c.UnitName = strings.Repeat("u", MaxUnitNameBytes+1) },
		"url":  func(c *AssetConfig) { c.URL = strings.Repeat("x", MaxAssetURLBytes+1) },
		"zero": func(c *AssetConfig) { c.Total = 0 },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			cfg := s.credentialConfig()
			mutate(&cfg)
			_, err := s.ledger.CreateUniqueAsset(s.ctx, cfg)
			s.ErrorIs(err, sentinel.ErrRejected)
		})
	}
	// Rejections do not consume ids.
	s.Equal(domain.CredentialID(1001), s.create())
}

func (s *InMemoryLedgerSuite) TestTransferRequiresOptIn() {
	id := s.create()

	err := s.ledger.Transfer(s.ctx, id, service, holder, 1)
	s.ErrorIs(err, sentinel.ErrRejected)

	s.Require().NoError(s.ledger.OptIn(s.ctx, id, holder))
	s.Require().NoError(s.ledger.Transfer(s.ctx, id, service, holder, 1))

	holdings, err := s.ledger.AccountHoldings(s.ctx, holder)
	s.Require().NoError(err)
	s.Equal([]Holding{{AssetID: id, Amount: 1}}, holdings)
}

func (s *InMemoryLedgerSuite) TestTransferInsufficientBalance() {
	id := s.create()
	s.Require().NoError(s.ledger.OptIn(s.ctx, id, holder))
	s.Require().NoError(s.ledger.Transfer(s.ctx, id, service, holder, 1))

	s.ErrorIs(s.ledger.Transfer(s.ctx, id, service, holder, 1), sentinel.ErrRejected)
}

func (s *InMemoryLedgerSuite) TestFreezeThenClawback() {
	id := s.create()
	s.Require().NoError(s.ledger.OptIn(s.ctx, id, holder))
	s.Require().NoError(s.ledger.Transfer(s.ctx, id, service, holder, 1))

	s.Require().NoError(s.ledger.Freeze(s.ctx, id, holder, true))
	holdings, err := s.ledger.AccountHoldings(s.ctx, holder)
	s.Require().NoError(err)
	s.True(holdings[0].Frozen)

	// Claw-back moves the frozen unit back to the service.
	s.Require().NoError(s.ledger.Transfer(s.ctx, id, holder, service, 1))

	holdings, err = s.ledger.AccountHoldings(s.ctx, holder)
	s.Require().NoError(err)
	s.Equal(uint64(0), holdings[0].Amount)
}

func (s *InMemoryLedgerSuite) TestFrozenServiceHoldingCannotSend() {
	id := s.create()
	s.Require().NoError(s.ledger.OptIn(s.ctx, id, holder))
	s.Require().NoError(s.ledger.Freeze(s.ctx, id, service, true))

	s.ErrorIs(s.ledger.Transfer(s.ctx, id, service, holder, 1), sentinel.ErrRejected)
}

func (s *InMemoryLedgerSuite) TestAuthoritiesAreChecked() {
	cfg := s.credentialConfig()
	cfg.Freeze = other
	cfg.Clawback = other
	id, err := s.ledger.CreateUniqueAsset(s.ctx, cfg)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.OptIn(s.ctx, id, holder))
	s.Require().NoError(s.ledger.Transfer(s.ctx, id, service, holder, 1))

	s.ErrorIs(s.ledger.Freeze(s.ctx, id, holder, true), sentinel.ErrRejected)
	s.ErrorIs(s.ledger.Transfer(s.ctx, id, holder, service, 1), sentinel.ErrRejected)
}

func (s *InMemoryLedgerSuite) TestUnknownAsset() {
	s.ErrorIs(s.ledger.Transfer(s.ctx, 42, service, holder, 1), sentinel.ErrRejected)
	s.ErrorIs(s.ledger.Freeze(s.ctx, 42, holder, true), sentinel.ErrRejected)
	s.ErrorIs(s.ledger.OptIn(s.ctx, 42, holder), sentinel.ErrRejected)
	_, err := s.ledger.AssetInfo(s.ctx, 42)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryLedgerSuite) TestFailNextIsOneShot() {
	id := s.create()
	s.Require().NoError(s.ledger.OptIn(s.ctx, id, holder))
	s.Require().NoError(s.ledger.Transfer(s.ctx, id, service, holder, 1))

	boom := errors.New("node unreachable")
	s.ledger.FailNext(OpClawback, boom)

	s.ErrorIs(s.ledger.Transfer(s.ctx, id, holder, service, 1), boom)
	s.NoError(s.ledger.Transfer(s.ctx, id, holder, service, 1))
}

func (s *InMemoryLedgerSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.ledger.CreateUniqueAsset(ctx, s.credentialConfig())
	s.ErrorIs(err, context.Canceled)
}

type fixedIDSource struct {
	top domain.CredentialID
	err error
}

func (f fixedIDSource) MaxID(context.Context) (domain.CredentialID, error) { return f.top, f.err }

func (s *InMemoryLedgerSuite) TestResumeInMemory() {
	s.Run("continues past the highest registered id", func() {
		l, err := ResumeInMemory(s.ctx, service, 1001, fixedIDSource{top: 1004})
		s.Require().NoError(err)
		id, err := l.CreateUniqueAsset(s.ctx, s.credentialConfig())
		s.Require().NoError(err)
		s.Equal(domain.CredentialID(1005), id)
	})

	s.Run("keeps the configured start for an empty registry", func() {
		l, err := ResumeInMemory(s.ctx, service, 1001, fixedIDSource{})
		s.Require().NoError(err)
		id, err := l.CreateUniqueAsset(s.ctx, s.credentialConfig())
		s.Require().NoError(err)
		s.Equal(domain.CredentialID(1001), id)
	})

	s.Run("keeps the configured start when it is already past the registry", func() {
		l, err := ResumeInMemory(s.ctx, service, 5000, fixedIDSource{top: 1004})
		s.Require().NoError(err)
		id, err := l.CreateUniqueAsset(s.ctx, s.credentialConfig())
		s.Require().NoError(err)
		s.Equal(domain.CredentialID(5000), id)
	})

	s.Run("registry read failure", func() {
		_, err := ResumeInMemory(s.ctx, service, 1001, fixedIDSource{err: errors.New("connection refused")})
		s.Error(err)
	})
}
