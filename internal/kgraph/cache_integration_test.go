//go:build integration

package kgraph

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	platformredis "sectracker/internal/platform/redis"
	id "sectracker/pkg/domain"
	"sectracker/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *RedisEntityCache
}

func TestRedisCacheSuite(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	s := &RedisCacheSuite{redis: rc}
	s.cache = NewRedisEntityCache(&platformredis.Client{Client: rc.Client}, time.Minute, slog.Default())
	suite.Run(t, s)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestSetThenGetRoundTrips() {
	ctx := context.Background()
	entity := &Entity{
		ID:        "Q380",
		Label:     "Meta Platforms, Inc.",
		Owners:    []id.EntityID{"Q11032"},
		Exchanges: []id.EntityID{"Q13677"},
		Ticker:    "META",
	}
	s.cache.Set(ctx, entity)

	got, ok := s.cache.Get(ctx, "Q380")
	s.Require().True(ok)
	s.Equal(entity.Label, got.Label)
	s.Equal(entity.Owners, got.Owners)
	s.Equal(entity.Ticker, got.Ticker)
	s.True(got.PubliclyTraded())
}

func (s *RedisCacheSuite) TestMissReturnsFalse() {
	_, ok := s.cache.Get(context.Background(), "Q999999")
	s.False(ok)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	shortLived := NewRedisEntityCache(s.cache.client, time.Second, slog.Default())
	shortLived.Set(ctx, &Entity{ID: "Q95", Label: "Google LLC"})

	_, ok := shortLived.Get(ctx, "Q95")
	s.Require().True(ok)

	time.Sleep(1500 * time.Millisecond)
	_, ok = shortLived.Get(ctx, "Q95")
	s.False(ok, "entry must expire with its TTL")
}

func (s *RedisCacheSuite) TestCorruptPayloadIsAMiss() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, entityKey("Q42"), "not-json", time.Minute).Err())

	_, ok := s.cache.Get(ctx, "Q42")
	s.False(ok)
}
