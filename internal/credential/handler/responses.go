package handler

import (
	"time"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
)

// CredentialResponse describes a credential and, when known, its registry state.
type CredentialResponse struct {
	ID            domain.CredentialID `json:"id"`
	Issuer        domain.Address      `json:"issuer"`
	Creator       domain.Address      `json:"creator,omitempty"`
	Reserve       domain.Address      `json:"reserve,omitempty"`
	Manager       domain.Address      `json:"manager,omitempty"`
	Freeze        domain.Address      `json:"freeze,omitempty"`
	Clawback      domain.Address      `json:"clawback,omitempty"`
	Name          string              `json:"name,omitempty"`
	UnitName      string              `json:"unit_name,omitempty"`
	URL           string              `json:"url,omitempty"`
	Total         uint64              `json:"total"`
	Decimals      uint32              `json:"decimals"`
	DefaultFrozen bool                `json:"default_frozen"`
	State         models.State        `json:"state"`
	IssuedAt      time.Time           `json:"issued_at"`
	RevokedAt     *time.Time          `json:"revoked_at,omitempty"`
}

// ActionResponse acknowledges a transfer or revocation.
type ActionResponse struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	Holder       domain.Address      `json:"holder"`
	State        models.State        `json:"state"`
}

// StatusResponse answers is_revoked and contains together.
type StatusResponse struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	Found        bool                `json:"found"`
	Revoked      bool                `json:"revoked"`
	State        models.State        `json:"state"`
}

type IssuerResponse struct {
	Admin   domain.Address `json:"admin"`
	Service domain.Address `json:"service"`
}

type HeldCredentialResponse struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	Name         string              `json:"name"`
	UnitName     string              `json:"unit_name"`
	URL          string              `json:"url"`
	Amount       uint64              `json:"amount"`
	Frozen       bool                `json:"frozen"`
	Revoked      bool                `json:"revoked"`
	Valid        bool                `json:"valid"`
}

// HolderCredentialsResponse lists what a holder presents for verification.
type HolderCredentialsResponse struct {
	Holder      domain.Address           `json:"holder"`
	Credentials []HeldCredentialResponse `json:"credentials"`
}

func toIssuedResponse(c *models.Credential) *CredentialResponse {
	return &CredentialResponse{
		ID:            c.ID,
		Issuer:        c.Issuer,
		Creator:       c.Creator,
		Reserve:       c.Reserve,
		Manager:       c.Manager,
		Freeze:        c.Freeze,
		Clawback:      c.Clawback,
		Name:          c.Name,
		UnitName:      c.UnitName,
		URL:           c.URL,
		Total:         c.Total,
		Decimals:      c.Decimals,
		DefaultFrozen: c.DefaultFrozen,
		State:         models.StateActive,
		IssuedAt:      c.IssuedAt,
	}
}

func toDetailsResponse(d *models.CredentialDetails) *CredentialResponse {
	resp := toIssuedResponse(&d.Credential)
	resp.State = d.State
	resp.RevokedAt = d.RevokedAt
	return resp
}

func toStatusResponse(s *models.RevocationStatus) *StatusResponse {
	return &StatusResponse{
		CredentialID: s.CredentialID,
		Found:        s.Found,
		Revoked:      s.Revoked,
		State:        s.State,
	}
}

func toHolderResponse(holder domain.Address, held []models.HeldCredential) *HolderCredentialsResponse {
	out := make([]HeldCredentialResponse, 0, len(held))
	for _, h := range held {
		out = append(out, HeldCredentialResponse{
			CredentialID: h.CredentialID,
			Name:         h.Name,
			UnitName:     h.UnitName,
			URL:          h.URL,
			Amount:       h.Amount,
			Frozen:       h.Frozen,
			Revoked:      h.Revoked,
			Valid:        h.Valid,
		})
	}
	return &HolderCredentialsResponse{Holder: holder, Credentials: out}
}
