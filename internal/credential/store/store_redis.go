package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// KeyPrefix namespaces registry hashes: credential:rev:<id>.
const KeyPrefix = "credential:rev:"

// IndexKey is a sorted set of every registered id, scored by the id.
const IndexKey = "credential:ids"

const (
	fieldRevoked   = "revoked"
	fieldIssuedAt  = "issued_at"
	fieldRevokedAt = "revoked_at"
)

// insertScript creates the hash only when the key is absent and indexes the id.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'revoked', '0', 'issued_at', ARGV[1])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[2])
return 1
`)

// revokeScript flips revoked to 1 exactly once.
// Returns -1 when missing, 0 when already revoked, 1 on success.
var revokeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('HGET', KEYS[1], 'revoked') == '1' then
	return 0
end
redis.call('HSET', KEYS[1], 'revoked', '1', 'revoked_at', ARGV[1])
return 1
`)

// RedisStore keeps one hash per credential. Keys never expire.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func key(id domain.CredentialID) string {
	return KeyPrefix + id.String()
}

func (s *RedisStore) Contains(ctx context.Context, id domain.CredentialID) (bool, error) {
	n, err := s.client.Exists(ctx, key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) Get(ctx context.Context, id domain.CredentialID) (bool, bool, error) {
	v, err := s.client.HGet(ctx, key(id), fieldRevoked).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("redis get revocation: %w", err)
	}
	return v == "1", true, nil
}

func (s *RedisStore) Insert(ctx context.Context, id domain.CredentialID, issuedAt time.Time) error {
	if id.IsNil() {
		return sentinel.ErrInvalidInput
	}
	created, err := insertScript.Run(ctx, s.client, []string{key(id), IndexKey}, issuedAt.UTC().UnixNano(), id.String()).Int()
	if err != nil {
		return fmt.Errorf("redis insert revocation: %w", err)
	}
	if created == 0 {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *RedisStore) SetRevoked(ctx context.Context, id domain.CredentialID, revokedAt time.Time) error {
	res, err := revokeScript.Run(ctx, s.client, []string{key(id)}, revokedAt.UTC().UnixNano()).Int()
	if err != nil {
		return fmt.Errorf("redis set revoked: %w", err)
	}
	switch res {
	case -1:
		return sentinel.ErrNotFound
	case 0:
		return ErrAlreadyRevoked
	default:
		return nil
	}
}

func (s *RedisStore) Find(ctx context.Context, id domain.CredentialID) (*models.RevocationRecord, error) {
	fields, err := s.client.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis find revocation: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	rec := &models.RevocationRecord{CredentialID: id, Revoked: fields[fieldRevoked] == "1"}
	if rec.IssuedAt, err = parseNanos(fields[fieldIssuedAt]); err != nil {
		return nil, fmt.Errorf("parse issued_at: %w", err)
	}
	if raw, ok := fields[fieldRevokedAt]; ok {
		t, err := parseNanos(raw)
		if err != nil {
			return nil, fmt.Errorf("parse revoked_at: %w", err)
		}
		rec.RevokedAt = &t
	}
	return rec, nil
}

func (s *RedisStore) MaxID(ctx context.Context) (domain.CredentialID, error) {
	top, err := s.client.ZRevRange(ctx, IndexKey, 0, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("redis max credential id: %w", err)
	}
	if len(top) == 0 {
		return 0, nil
	}
	return domain.ParseCredentialID(top[0])
}

func parseNanos(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}
