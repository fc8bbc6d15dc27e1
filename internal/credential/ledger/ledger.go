// Package ledger is the port to the external asset ledger that backs every
// credential. The service submits sub-transactions through Ledger and reads
// holdings through Reader.
package ledger

import (
	"context"

	"credverify/pkg/domain"
)

// AssetConfig describes a unique asset to create. The ledger assigns the id.
type AssetConfig struct {
	Name          string
	UnitName      string
	URL           string
	Total         uint64
	Decimals      uint32
	DefaultFrozen bool
	Manager       domain.Address
	Reserve       domain.Address
	Freeze        domain.Address
	Clawback      domain.Address
}

// AssetParams is an asset as recorded on the ledger.
type AssetParams struct {
	AssetConfig
	ID      domain.CredentialID
	Creator domain.Address
}

// Holding is one account's position in one asset.
type Holding struct {
	AssetID domain.CredentialID
	Amount  uint64
	Frozen  bool
}

// Ledger submits sub-transactions signed by the service account. Every call
// either takes full effect or returns an error and changes nothing.
type Ledger interface {
	CreateUniqueAsset(ctx context.Context, cfg AssetConfig) (domain.CredentialID, error)
	// Transfer moves amount units. When from is not the service account the
	// move is a claw-back under the asset's clawback authority.
	Transfer(ctx context.Context, id domain.CredentialID, from, to domain.Address, amount uint64) error
	// Freeze sets the frozen flag on account's holding of id.
	Freeze(ctx context.Context, id domain.CredentialID, account domain.Address, frozen bool) error
}

// Reader exposes ledger state for verification queries.
type Reader interface {
	AssetInfo(ctx context.Context, id domain.CredentialID) (*AssetParams, error)
	AccountHoldings(ctx context.Context, account domain.Address) ([]Holding, error)
}
