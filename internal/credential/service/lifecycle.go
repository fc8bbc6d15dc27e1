package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"credverify/internal/credential/ledger"
	"credverify/internal/credential/metrics"
	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/middleware/requesttime"
	"credverify/pkg/platform/sentinel"
	"credverify/pkg/platform/tracer"
	"credverify/pkg/requestcontext"
)

// IssueCredential creates a unique asset for req.Holder and records it as
// ACTIVE. The asset's authorities all point at the service account; the
// holder is recorded only as the reserve.
func (s *Service) IssueCredential(ctx context.Context, caller domain.Address, req models.IssueRequest) (cred *models.Credential, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue,
		tracer.String(tracer.AttrCaller, caller.String()),
		tracer.String(tracer.AttrHolder, req.Holder.String()),
	)
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation(metrics.OpIssue, outcome(err), start)
	}()

	if err = s.authorize(ctx, caller, metrics.OpIssue, 0); err != nil {
		return nil, err
	}
	if err = validateIssue(req); err != nil {
		return nil, err
	}

	id, lerr := s.ledger.CreateUniqueAsset(ctx, ledger.AssetConfig{
		Name:          req.Name,
		UnitName:      req.UnitName,
		URL:           req.URL,
		Total:         1,
		Decimals:      0,
		DefaultFrozen: false,
		Manager:       s.account,
		Reserve:       req.Holder,
		Freeze:        s.account,
		Clawback:      s.account,
	})
	if lerr != nil {
		s.logger.WarnContext(ctx, "credential asset creation rejected",
			"holder", req.Holder,
			"error", lerr,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, externalEffectFailed(lerr, "asset creation")
	}
	span.AddEvent(tracer.EventLedgerSubmitted, tracer.Uint64(tracer.AttrCredentialID, uint64(id)))

	issuedAt := requesttime.Now(ctx)
	err = s.withCredentialLock(id, func() error {
		return s.registry.Insert(ctx, id, issuedAt)
	})
	if err != nil {
		// The asset exists on the ledger but is not tracked; it stays in
		// service custody and can never be transferred through this service.
		s.metrics.IncrementOrphanedAsset()
		s.logger.ErrorContext(ctx, "registry insert failed after asset creation",
			"credential_id", id,
			"holder", req.Holder,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger returned an id that is already registered")
		}
		return nil, registryError(err, id, "insert")
	}
	span.AddEvent(tracer.EventRegistryWritten)

	s.emitAudit(ctx, audit.Event{
		Action:       string(audit.EventCredentialIssued),
		CredentialID: id,
		Actor:        caller,
		Holder:       req.Holder,
		Decision:     audit.DecisionGranted,
	})

	return &models.Credential{
		ID:            id,
		Issuer:        s.guard.Admin(),
		Creator:       s.account,
		Reserve:       req.Holder,
		Manager:       s.account,
		Freeze:        s.account,
		Clawback:      s.account,
		Name:          req.Name,
		UnitName:      req.UnitName,
		URL:           req.URL,
		Total:         1,
		Decimals:      0,
		DefaultFrozen: false,
		IssuedAt:      issuedAt,
	}, nil
}

// TransferToHolder sends the single unit from service custody to holder. The
// holder must already have opted in on the ledger. The registry is not touched.
func (s *Service) TransferToHolder(ctx context.Context, caller domain.Address, id domain.CredentialID, holder domain.Address) (err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanTransfer,
		tracer.String(tracer.AttrCaller, caller.String()),
		tracer.Uint64(tracer.AttrCredentialID, uint64(id)),
		tracer.String(tracer.AttrHolder, holder.String()),
	)
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation(metrics.OpTransfer, outcome(err), start)
	}()

	if err = s.authorize(ctx, caller, metrics.OpTransfer, id); err != nil {
		return err
	}
	if holder.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "holder is required")
	}

	err = s.withCredentialLock(id, func() error {
		if err := s.requireActive(ctx, id); err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, id, s.account, holder, 1); err != nil {
			s.logger.WarnContext(ctx, "credential transfer rejected",
				"credential_id", id,
				"holder", holder,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return externalEffectFailed(err, "transfer")
		}
		return nil
	})
	if err != nil {
		return err
	}
	span.AddEvent(tracer.EventLedgerSubmitted)

	s.emitAudit(ctx, audit.Event{
		Action:       string(audit.EventCredentialTransferred),
		CredentialID: id,
		Actor:        caller,
		Holder:       holder,
		Decision:     audit.DecisionGranted,
	})
	return nil
}

// RevokeCredential freezes the holder's holding, claws the unit back into
// service custody and only then flips the registry record. A failed claw-back
// is compensated by unfreezing, and the record stays unrevoked.
func (s *Service) RevokeCredential(ctx context.Context, caller domain.Address, id domain.CredentialID, holder domain.Address) (err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.String(tracer.AttrCaller, caller.String()),
		tracer.Uint64(tracer.AttrCredentialID, uint64(id)),
		tracer.String(tracer.AttrHolder, holder.String()),
	)
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation(metrics.OpRevoke, outcome(err), start)
	}()

	if err = s.authorize(ctx, caller, metrics.OpRevoke, id); err != nil {
		return err
	}
	if holder.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "holder is required")
	}

	err = s.withCredentialLock(id, func() error {
		if err := s.requireActive(ctx, id); err != nil {
			return err
		}

		if err := s.ledger.Freeze(ctx, id, holder, true); err != nil {
			s.logger.WarnContext(ctx, "credential freeze rejected",
				"credential_id", id,
				"holder", holder,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return externalEffectFailed(err, "freeze")
		}
		span.AddEvent(tracer.EventLedgerSubmitted, tracer.String(tracer.AttrStep, "freeze"))

		if err := s.ledger.Transfer(ctx, id, holder, s.account, 1); err != nil {
			s.compensateFreeze(ctx, id, holder, err)
			return externalEffectFailed(err, "clawback")
		}
		span.AddEvent(tracer.EventLedgerSubmitted, tracer.String(tracer.AttrStep, "clawback"))

		if err := s.registry.SetRevoked(ctx, id, requesttime.Now(ctx)); err != nil {
			// Both ledger effects landed; the unit is back in service custody
			// but the record still reads unrevoked.
			s.logger.ErrorContext(ctx, "registry update failed after clawback",
				"credential_id", id,
				"holder", holder,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return registryError(err, id, "revoke")
		}
		return nil
	})
	if err != nil {
		return err
	}
	span.AddEvent(tracer.EventRegistryWritten)

	s.emitAudit(ctx, audit.Event{
		Action:       string(audit.EventCredentialRevoked),
		CredentialID: id,
		Actor:        caller,
		Holder:       holder,
		Decision:     audit.DecisionGranted,
	})
	return nil
}

// compensateFreeze lifts the freeze applied by a revocation whose claw-back
// failed, so the holder is not left with a frozen but unrevoked credential.
func (s *Service) compensateFreeze(ctx context.Context, id domain.CredentialID, holder domain.Address, cause error) {
	s.logger.WarnContext(ctx, "credential clawback rejected, lifting freeze",
		"credential_id", id,
		"holder", holder,
		"error", cause,
		"request_id", requestcontext.RequestID(ctx),
	)
	if err := s.ledger.Freeze(context.WithoutCancel(ctx), id, holder, false); err != nil {
		s.logger.ErrorContext(ctx, "failed to lift freeze after rejected clawback",
			"credential_id", id,
			"holder", holder,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// Authorize runs the admin guard for op ahead of the operation itself, so a
// transport can refuse a non-admin before parsing its request. The mutating
// methods check again.
func (s *Service) Authorize(ctx context.Context, caller domain.Address, op string, id domain.CredentialID) error {
	return s.authorize(ctx, caller, op, id)
}

// authorize runs the guard and records denied attempts.
func (s *Service) authorize(ctx context.Context, caller domain.Address, op string, id domain.CredentialID) error {
	err := s.guard.AssertAdmin(caller)
	if err == nil {
		return nil
	}
	s.logger.WarnContext(ctx, "credential operation denied",
		"operation", op,
		"caller", caller,
		"credential_id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.Event{
		Action:       string(audit.EventAccessDenied),
		CredentialID: id,
		Actor:        caller,
		Decision:     audit.DecisionDenied,
		Reason:       op + ": caller is not the issuer admin",
	})
	return err
}

// requireActive must run under the credential lock.
func (s *Service) requireActive(ctx context.Context, id domain.CredentialID) error {
	revoked, found, err := s.registry.Get(ctx, id)
	if err != nil {
		return registryError(err, id, "lookup")
	}
	if !found {
		return unknownCredential(id)
	}
	if revoked {
		return alreadyRevoked(id)
	}
	return nil
}

func (s *Service) withCredentialLock(id domain.CredentialID, fn func() error) error {
	key := id.String()
	waitStart := time.Now()
	s.locks.Lock(key)
	s.metrics.ObserveLockWait(time.Since(waitStart))
	defer s.locks.Unlock(key)
	return fn()
}

func validateIssue(req models.IssueRequest) error {
	switch {
	case req.Holder.IsNil():
		return dErrors.New(dErrors.CodeValidation, "holder is required")
	case strings.TrimSpace(req.Name) == "":
		return dErrors.New(dErrors.CodeValidation, "name is required")
	case strings.TrimSpace(req.UnitName) == "":
		return dErrors.New(dErrors.CodeValidation, "unit_name is required")
	case strings.TrimSpace(req.URL) == "":
		return dErrors.New(dErrors.CodeValidation, "url is required")
	}
	return nil
}

// emitAudit never fails the operation; the outcome is already committed.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if event.Timestamp.IsZero() {
		event.Timestamp = requesttime.Now(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"credential_id", event.CredentialID,
			"error", err,
		)
	}
}
