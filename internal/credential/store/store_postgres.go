package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// PostgresStore persists the registry in credential_revocations.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// toKey maps an id onto BIGINT. Ids past MaxInt64 cannot be stored.
func toKey(id domain.CredentialID) (int64, bool) {
	if id.IsNil() || uint64(id) > math.MaxInt64 {
		return 0, false
	}
	return int64(id), true
}

func (s *PostgresStore) Contains(ctx context.Context, id domain.CredentialID) (bool, error) {
	_, found, err := s.Get(ctx, id)
	return found, err
}

func (s *PostgresStore) Get(ctx context.Context, id domain.CredentialID) (bool, bool, error) {
	key, ok := toKey(id)
	if !ok {
		return false, false, nil
	}
	var revoked bool
	err := s.db.QueryRowContext(ctx,
		`SELECT revoked FROM credential_revocations WHERE credential_id = $1`, key,
	).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("get revocation record: %w", err)
	}
	return revoked, true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, id domain.CredentialID, issuedAt time.Time) error {
	key, ok := toKey(id)
	if !ok {
		return fmt.Errorf("credential id %s out of range: %w", id, sentinel.ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO credential_revocations (credential_id, revoked, issued_at)
		VALUES ($1, FALSE, $2)
		ON CONFLICT (credential_id) DO NOTHING
	`, key, issuedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert revocation record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert revocation record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) SetRevoked(ctx context.Context, id domain.CredentialID, revokedAt time.Time) error {
	key, ok := toKey(id)
	if !ok {
		return sentinel.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE credential_revocations
		SET revoked = TRUE, revoked_at = $2
		WHERE credential_id = $1 AND revoked = FALSE
	`, key, revokedAt.UTC())
	if err != nil {
		return fmt.Errorf("set revoked: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set revoked: %w", err)
	}
	if n == 1 {
		return nil
	}
	// Nothing updated: either missing or already flipped.
	found, err := s.Contains(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return sentinel.ErrNotFound
	}
	return ErrAlreadyRevoked
}

func (s *PostgresStore) Find(ctx context.Context, id domain.CredentialID) (*models.RevocationRecord, error) {
	key, ok := toKey(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	rec := models.RevocationRecord{CredentialID: id}
	var revokedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT revoked, issued_at, revoked_at
		FROM credential_revocations
		WHERE credential_id = $1
	`, key).Scan(&rec.Revoked, &rec.IssuedAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find revocation record: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		rec.RevokedAt = &t
	}
	return &rec, nil
}

func (s *PostgresStore) MaxID(ctx context.Context) (domain.CredentialID, error) {
	var top int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(credential_id), 0) FROM credential_revocations`,
	).Scan(&top)
	if err != nil {
		return 0, fmt.Errorf("max credential id: %w", err)
	}
	return domain.CredentialID(top), nil
}
