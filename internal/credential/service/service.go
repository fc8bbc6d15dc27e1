// Package service implements the credential lifecycle (issue, transfer,
// revoke) and the read-only verification queries around it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"credverify/internal/credential/guard"
	"credverify/internal/credential/ledger"
	"credverify/internal/credential/metrics"
	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	"credverify/pkg/platform/audit"
	platformsync "credverify/pkg/platform/sync"
	"credverify/pkg/platform/tracer"
)

// Registry is the revocation registry dependency.
type Registry interface {
	Contains(ctx context.Context, id domain.CredentialID) (bool, error)
	Get(ctx context.Context, id domain.CredentialID) (revoked bool, found bool, err error)
	Insert(ctx context.Context, id domain.CredentialID, issuedAt time.Time) error
	SetRevoked(ctx context.Context, id domain.CredentialID, revokedAt time.Time) error
	Find(ctx context.Context, id domain.CredentialID) (*models.RevocationRecord, error)
}

// Ledger submits sub-transactions on behalf of the service account.
type Ledger interface {
	CreateUniqueAsset(ctx context.Context, cfg ledger.AssetConfig) (domain.CredentialID, error)
	Transfer(ctx context.Context, id domain.CredentialID, from, to domain.Address, amount uint64) error
	Freeze(ctx context.Context, id domain.CredentialID, account domain.Address, frozen bool) error
}

// HoldingsReader answers ledger-side verification queries.
type HoldingsReader interface {
	AssetInfo(ctx context.Context, id domain.CredentialID) (*ledger.AssetParams, error)
	AccountHoldings(ctx context.Context, account domain.Address) ([]ledger.Holding, error)
}

// AuditPublisher emits audit events for lifecycle actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

// Service owns every mutation of the registry. Mutating calls check the guard
// first and hold a per-credential lock for their whole check-then-act sequence.
type Service struct {
	guard    *guard.Guard
	registry Registry
	ledger   Ledger
	reader   HoldingsReader
	account  domain.Address

	locks   *platformsync.ShardedMutex
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// New wires the lifecycle. account is the service's own ledger identity: it
// holds newly created credentials and is their manager, freeze and clawback
// authority.
func New(g *guard.Guard, registry Registry, l Ledger, account domain.Address, opts ...Option) (*Service, error) {
	switch {
	case g == nil:
		return nil, errors.New("guard is required")
	case registry == nil:
		return nil, errors.New("registry is required")
	case l == nil:
		return nil, errors.New("ledger is required")
	case account.IsNil():
		return nil, errors.New("service account is required")
	}

	svc := &Service{
		guard:    g,
		registry: registry,
		ledger:   l,
		account:  account,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.locks == nil {
		svc.locks = platformsync.NewShardedMutex(0)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.metrics == nil {
		svc.metrics = metrics.New(nil)
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc, nil
}

func WithAuditor(auditor AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithHoldingsReader enables VerifyHolder and ledger details in Credential.
func WithHoldingsReader(r HoldingsReader) Option {
	return func(s *Service) {
		s.reader = r
	}
}

// WithLockShards sets the number of per-credential lock shards.
func WithLockShards(n int) Option {
	return func(s *Service) {
		s.locks = platformsync.NewShardedMutex(n)
	}
}
