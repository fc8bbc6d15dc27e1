//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"credverify/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	registryContractSuite
	client *redis.Client
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	opts, err := redis.ParseURL(rc.URL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	s := new(RedisStoreSuite)
	s.client = redis.NewClient(opts)
	t.Cleanup(func() { _ = s.client.Close() })
	s.newStore = func() Store { return NewRedis(s.client) }
	suite.Run(t, s)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.client.FlushDB(context.Background()).Err())
	s.registryContractSuite.SetupTest()
}

func (s *RedisStoreSuite) TestKeysNeverExpire() {
	ctx := context.Background()
	id := s.freshID()
	s.Require().NoError(s.store.Insert(ctx, id, time.Now()))

	ttl, err := s.client.TTL(ctx, KeyPrefix+id.String()).Result()
	s.Require().NoError(err)
	s.Equal(time.Duration(-1), ttl)
}
