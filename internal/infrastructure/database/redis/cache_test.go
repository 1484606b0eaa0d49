package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.client = NewClientWithRedis(db, logging.NewNopLogger())
	// Zero default TTL keeps Set expectations deterministic; jitter only
	// applies to non-zero TTLs.
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(),
		WithPrefix("test:"), WithDefaultTTL(0))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	data, _ := json.Marshal(payload{Name: "alpha", Count: 3})
	s.mock.ExpectGet("test:k").SetVal(string(data))

	var got payload
	err := s.cache.Get(context.Background(), "k", &got)
	s.Require().NoError(err)
	s.Equal("alpha", got.Name)
	s.Equal(3, got.Count)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:k").RedisNil()

	var got payload
	err := s.cache.Get(context.Background(), "k", &got)
	s.ErrorIs(err, ErrCacheMiss)
}

func (s *CacheTestSuite) TestSet() {
	data, _ := json.Marshal(payload{Name: "beta", Count: 1})
	s.mock.ExpectSet("test:k", data, 0).SetVal("OK")

	err := s.cache.Set(context.Background(), "k", payload{Name: "beta", Count: 1}, 0)
	s.NoError(err)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)

	err := s.cache.Delete(context.Background(), "a", "b")
	s.NoError(err)
}

func (s *CacheTestSuite) TestDelete_NoKeysIsNoop() {
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k").SetVal(1)

	ok, err := s.cache.Exists(context.Background(), "k")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *CacheTestSuite) TestGetOrSet_MissRunsLoader() {
	s.mock.ExpectGet("test:k").RedisNil()
	data, _ := json.Marshal(payload{Name: "loaded", Count: 7})
	s.mock.ExpectSet("test:k", data, 0).SetVal("OK")

	var got payload
	calls := 0
	err := s.cache.GetOrSet(context.Background(), "k", &got, 0, func(ctx context.Context) (interface{}, error) {
		calls++
		return payload{Name: "loaded", Count: 7}, nil
	})
	s.Require().NoError(err)
	s.Equal(1, calls)
	s.Equal("loaded", got.Name)
}

func (s *CacheTestSuite) TestGetOrSet_HitSkipsLoader() {
	data, _ := json.Marshal(payload{Name: "cached", Count: 2})
	s.mock.ExpectGet("test:k").SetVal(string(data))

	var got payload
	err := s.cache.GetOrSet(context.Background(), "k", &got, 0, func(ctx context.Context) (interface{}, error) {
		s.Fail("loader must not run on cache hit")
		return nil, nil
	})
	s.Require().NoError(err)
	s.Equal("cached", got.Name)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:k").RedisNil()

	var got payload
	err := s.cache.GetOrSet(context.Background(), "k", &got, 0, func(ctx context.Context) (interface{}, error) {
		return nil, assert.AnError
	})
	s.ErrorIs(err, assert.AnError)
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:recommend:*", 100).SetVal([]string{"test:recommend:1", "test:recommend:2"}, 0)
	s.mock.ExpectDel("test:recommend:1", "test:recommend:2").SetVal(2)

	n, err := s.cache.DeleteByPrefix(context.Background(), "recommend:")
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}
