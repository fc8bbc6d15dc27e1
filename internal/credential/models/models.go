package models

import (
	"time"

	"credverify/pkg/domain"
)

// State is the lifecycle position of a credential id as seen by the registry.
type State string

const (
	StateUnissued State = "UNISSUED"
	StateActive   State = "ACTIVE"
	StateRevoked  State = "REVOKED"
)

// Asset limits enforced by the ledger for credential metadata.
const (
	MaxNameLength     = 32
	MaxUnitNameLength = 8
	MaxURLLength      = 96
)

// IssueRequest carries the opaque metadata for a new credential.
type IssueRequest struct {
	Holder   domain.Address
	Name     string
	UnitName string
	URL      string
}

// Credential describes a freshly issued unique asset.
type Credential struct {
	ID            domain.CredentialID
	Issuer        domain.Address
	Creator       domain.Address
	Reserve       domain.Address
	Manager       domain.Address
	Freeze        domain.Address
	Clawback      domain.Address
	Name          string
	UnitName      string
	URL           string
	Total         uint64
	Decimals      uint32
	DefaultFrozen bool
	IssuedAt      time.Time
}

// RevocationRecord is the registry entry for an issued credential. Revoked
// only ever moves from false to true.
type RevocationRecord struct {
	CredentialID domain.CredentialID
	Revoked      bool
	IssuedAt     time.Time
	RevokedAt    *time.Time
}

// State derives the lifecycle state; a nil record is UNISSUED.
func (r *RevocationRecord) State() State {
	switch {
	case r == nil:
		return StateUnissued
	case r.Revoked:
		return StateRevoked
	default:
		return StateActive
	}
}

// RevocationStatus answers is_revoked and contains in one shot.
type RevocationStatus struct {
	CredentialID domain.CredentialID
	Found        bool
	Revoked      bool
	State        State
}

// HeldCredential is one service-issued asset found in a holder's account.
type HeldCredential struct {
	CredentialID domain.CredentialID
	Name         string
	UnitName     string
	URL          string
	Amount       uint64
	Frozen       bool
	Revoked      bool
	Tracked      bool
	Valid        bool
}

// CredentialDetails joins ledger parameters with the registry record.
type CredentialDetails struct {
	Credential
	State     State
	Revoked   bool
	RevokedAt *time.Time
}
