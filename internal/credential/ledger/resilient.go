package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"credverify/pkg/domain"
	"credverify/pkg/platform/circuit"
	"credverify/pkg/platform/sentinel"
)

// Resilient fails fast while the wrapped ledger is known to be unhealthy.
// Rejections are answers from a healthy ledger and do not count as failures.
// Calls are never retried.
type Resilient struct {
	next    Ledger
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewResilient(next Ledger, breaker *circuit.Breaker, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resilient{next: next, breaker: breaker, logger: logger}
}

func (r *Resilient) CreateUniqueAsset(ctx context.Context, cfg AssetConfig) (domain.CredentialID, error) {
	var id domain.CredentialID
	err := r.call(ctx, "create", func() error {
		var err error
		id, err = r.next.CreateUniqueAsset(ctx, cfg)
		return err
	})
	return id, err
}

func (r *Resilient) Transfer(ctx context.Context, id domain.CredentialID, from, to domain.Address, amount uint64) error {
	return r.call(ctx, "transfer", func() error {
		return r.next.Transfer(ctx, id, from, to, amount)
	})
}

func (r *Resilient) Freeze(ctx context.Context, id domain.CredentialID, account domain.Address, frozen bool) error {
	return r.call(ctx, "freeze", func() error {
		return r.next.Freeze(ctx, id, account, frozen)
	})
}

func (r *Resilient) call(ctx context.Context, op string, fn func() error) error {
	if !r.breaker.Allow() {
		return fmt.Errorf("ledger %s: circuit %s: %w", op, r.breaker.State(), sentinel.ErrUnavailable)
	}
	err := fn()
	if err == nil || errors.Is(err, sentinel.ErrRejected) {
		if r.breaker.RecordSuccess() {
			r.logger.InfoContext(ctx, "ledger circuit closed", "breaker", r.breaker.Name())
		}
		return err
	}
	if r.breaker.RecordFailure() {
		r.logger.WarnContext(ctx, "ledger circuit opened",
			"breaker", r.breaker.Name(),
			"op", op,
			"error", err,
		)
	}
	return err
}

var _ Ledger = (*Resilient)(nil)
