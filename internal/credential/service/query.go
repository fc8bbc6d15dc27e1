package service

import (
	"context"
	"errors"
	"time"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/sentinel"
	"credverify/pkg/platform/tracer"
)

// IssuerInfo returns the admin identity. No guard applies to reads.
func (s *Service) IssuerInfo(_ context.Context) domain.Address {
	return s.guard.Admin()
}

// ServiceAccount returns the ledger identity that creates and controls credentials.
func (s *Service) ServiceAccount() domain.Address {
	return s.account
}

// RevocationStatus reports whether id was issued here and whether it is
// revoked. Unknown ids are not an error.
func (s *Service) RevocationStatus(ctx context.Context, id domain.CredentialID) (*models.RevocationStatus, error) {
	revoked, found, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, registryError(err, id, "lookup")
	}
	status := &models.RevocationStatus{CredentialID: id, Found: found, Revoked: revoked, State: models.StateUnissued}
	if found {
		status.State = models.StateActive
		if revoked {
			status.State = models.StateRevoked
		}
	}
	return status, nil
}

func (s *Service) Contains(ctx context.Context, id domain.CredentialID) (bool, error) {
	found, err := s.registry.Contains(ctx, id)
	if err != nil {
		return false, registryError(err, id, "lookup")
	}
	return found, nil
}

// Credential joins the registry record with the asset's ledger parameters.
func (s *Service) Credential(ctx context.Context, id domain.CredentialID) (*models.CredentialDetails, error) {
	rec, err := s.registry.Find(ctx, id)
	if err != nil {
		return nil, registryError(err, id, "lookup")
	}

	details := &models.CredentialDetails{
		Credential: models.Credential{
			ID:       id,
			Issuer:   s.guard.Admin(),
			IssuedAt: rec.IssuedAt,
		},
		State:     rec.State(),
		Revoked:   rec.Revoked,
		RevokedAt: rec.RevokedAt,
	}
	if s.reader == nil {
		return details, nil
	}

	params, err := s.reader.AssetInfo(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Tracked here but unknown to the ledger; report what we have.
			s.logger.WarnContext(ctx, "registered credential missing from ledger", "credential_id", id)
			return details, nil
		}
		return nil, externalEffectFailed(err, "asset lookup")
	}
	details.Creator = params.Creator
	details.Reserve = params.Reserve
	details.Manager = params.Manager
	details.Freeze = params.Freeze
	details.Clawback = params.Clawback
	details.Name = params.Name
	details.UnitName = params.UnitName
	details.URL = params.URL
	details.Total = params.Total
	details.Decimals = params.Decimals
	details.DefaultFrozen = params.DefaultFrozen
	return details, nil
}

// VerifyHolder lists the service-created credentials currently held by holder,
// each marked Valid only when it is tracked and not revoked.
func (s *Service) VerifyHolder(ctx context.Context, holder domain.Address) (held []models.HeldCredential, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify, tracer.String(tracer.AttrHolder, holder.String()))
	defer func() { span.End(err) }()

	if holder.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "holder is required")
	}
	if s.reader == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "holder verification is not configured")
	}

	queryStart := time.Now()
	holdings, err := s.reader.AccountHoldings(ctx, holder)
	if err != nil {
		return nil, externalEffectFailed(err, "holdings lookup")
	}
	span.SetAttributes(tracer.Duration("ledger.holdings_ms", time.Since(queryStart)))

	held = []models.HeldCredential{}
	for _, h := range holdings {
		if h.Amount == 0 {
			continue
		}
		params, err := s.reader.AssetInfo(ctx, h.AssetID)
		if err != nil {
			return nil, externalEffectFailed(err, "asset lookup")
		}
		if params.Creator != s.account {
			continue
		}
		revoked, found, err := s.registry.Get(ctx, h.AssetID)
		if err != nil {
			return nil, registryError(err, h.AssetID, "lookup")
		}
		held = append(held, models.HeldCredential{
			CredentialID: h.AssetID,
			Name:         params.Name,
			UnitName:     params.UnitName,
			URL:          params.URL,
			Amount:       h.Amount,
			Frozen:       h.Frozen,
			Revoked:      revoked,
			Tracked:      found,
			Valid:        found && !revoked,
		})
	}
	return held, nil
}
