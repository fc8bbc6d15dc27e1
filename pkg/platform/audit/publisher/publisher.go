package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
)

// Publisher appends audit events to a Store, either inline or through a
// buffered background writer.
type Publisher struct {
	store  audit.Store
	events chan queued
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// queued carries the emitting context's values without its cancellation, so an
// event accepted into the buffer is still written after the request finishes.
type queued struct {
	ctx   context.Context
	event audit.Event
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events for a background writer.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan queued, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for q := range p.events {
		if err := p.store.Append(q.ctx, q.event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", q.event.Action,
				"credential_id", q.event.CredentialID,
			)
		}
	}
}

// Close drains pending events. Emit must not be called afterwards.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if !p.async {
		return p.store.Append(ctx, event)
	}
	select {
	case p.events <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped",
				"action", event.Action,
				"credential_id", event.CredentialID,
			)
		}
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}
