// Package store is the credential registry: a permanent map from credential id
// to a revocation flag. Entries are created once and flipped to revoked at most
// once; nothing is ever deleted.
package store

import (
	"context"
	"fmt"
	"time"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// ErrAlreadyRevoked is returned by SetRevoked for a record that is already true.
var ErrAlreadyRevoked = fmt.Errorf("credential already revoked: %w", sentinel.ErrInvalidState)

// Store is implemented by InMemoryStore, PostgresStore and RedisStore.
type Store interface {
	// Contains reports whether id has a record.
	Contains(ctx context.Context, id domain.CredentialID) (bool, error)
	// Get returns the flag and whether the record exists; absent is not an error.
	Get(ctx context.Context, id domain.CredentialID) (revoked bool, found bool, err error)
	// Insert creates an unrevoked record. A second insert fails with sentinel.ErrAlreadyExists.
	Insert(ctx context.Context, id domain.CredentialID, issuedAt time.Time) error
	// SetRevoked flips false to true. Missing records yield sentinel.ErrNotFound.
	SetRevoked(ctx context.Context, id domain.CredentialID, revokedAt time.Time) error
	// Find returns the full record or sentinel.ErrNotFound.
	Find(ctx context.Context, id domain.CredentialID) (*models.RevocationRecord, error)
	// MaxID returns the highest registered id, or 0 for an empty registry.
	MaxID(ctx context.Context) (domain.CredentialID, error)
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*RedisStore)(nil)
)
