package space

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/prometheus"
	"github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

// In-memory fakes

type memEntryRepo struct {
	mu      sync.Mutex
	entries []designspace.Entry
}

func (r *memEntryRepo) List(ctx context.Context) ([]designspace.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]designspace.Entry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *memEntryRepo) Get(ctx context.Context, id int64) (*designspace.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, errors.New(errors.ErrCodeEntryNotFound, "entry not found")
}

func (r *memEntryRepo) Replace(ctx context.Context, entries []designspace.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]designspace.Entry(nil), entries...)
	return nil
}

func (r *memEntryRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

type memPointRepo struct {
	mu     sync.Mutex
	points map[common.ID]designspace.AttractionPoint
}

func newMemPointRepo() *memPointRepo {
	return &memPointRepo{points: make(map[common.ID]designspace.AttractionPoint)}
}

func (r *memPointRepo) Save(ctx context.Context, p *designspace.AttractionPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points[p.ID] = *p
	return nil
}

func (r *memPointRepo) Get(ctx context.Context, id common.ID) (*designspace.AttractionPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.points[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePointNotFound, "point not found")
	}
	return &p, nil
}

func (r *memPointRepo) FindByKey(ctx context.Context, key string) (*designspace.AttractionPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.points {
		if p.Key() == key {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memPointRepo) List(ctx context.Context) ([]designspace.AttractionPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]designspace.AttractionPoint, 0, len(r.points))
	for _, p := range r.points {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPointRepo) Delete(ctx context.Context, id common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.points[id]; !ok {
		return errors.New(errors.ErrCodePointNotFound, "point not found")
	}
	delete(r.points, id)
	return nil
}

type memCache struct {
	mu         sync.Mutex
	data       map[string][]byte
	setCalls   int
	purgeCalls int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.setCalls++
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *memCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			n++
		}
	}
	c.purgeCalls++
	return n, nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }

// Helpers

func testMetrics(t *testing.T) *prometheus.AppMetrics {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(
		prometheus.CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	return prometheus.NewAppMetrics(collector)
}

func newTestService(t *testing.T, entries []designspace.Entry) (*Service, *memEntryRepo, *memPointRepo, *memCache) {
	t.Helper()
	repo := &memEntryRepo{entries: entries}
	points := newMemPointRepo()
	cache := newMemCache()
	svc := NewService(Deps{
		Entries: repo,
		Points:  points,
		Cache:   cache,
		Metrics: testMetrics(t),
		Logger:  logging.NewNopLogger(),
		Policy:  designspace.DefaultPolicy(),
	})
	return svc, repo, points, cache
}

func catalog() []designspace.Entry {
	return []designspace.Entry{
		{ID: 1, Name: "alpha", Visible: true, X: 10, Y: 0.9, Z: -1},
		{ID: 2, Name: "beta", Visible: true, X: 20, Y: 0.5, Z: 0.3},
		{ID: 3, Name: "gamma", Visible: true, X: 30, Y: 0.1, Z: 0.7},
	}
}

// Tests

func TestService_NotReadyBeforeReload(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()

	assert.False(t, svc.Ready())

	_, err := svc.Recommend(ctx, RecommendInput{Coord: designspace.Coordinate{X: 0.5}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeProjectionNotReady))

	_, err = svc.Denormalize(ctx, designspace.NormalizedPoint{X: 0.5})
	assert.True(t, errors.IsCode(err, errors.ErrCodeProjectionNotReady))

	_, err = svc.Contour(ctx, ContourInput{Rank: 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeProjectionNotReady))
}

func TestService_ReloadPublishesVersionedProjection(t *testing.T) {
	svc, _, _, cache := newTestService(t, catalog())
	ctx := context.Background()

	p1, err := svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p1.Version)
	assert.True(t, svc.Ready())
	assert.Len(t, p1.Entries, 3)

	p2, err := svc.Reload(ctx, designspace.ProfileB)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), p2.Version)
	assert.Equal(t, designspace.ProfileB, p2.Profile)
	assert.Same(t, p2, svc.Projection())
	assert.Equal(t, 2, cache.purgeCalls)
}

func TestService_RecommendCachesByVersionAndQuery(t *testing.T) {
	svc, _, _, cache := newTestService(t, catalog())
	ctx := context.Background()
	_, err := svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)

	in := RecommendInput{Coord: designspace.Coordinate{X: 0, Y: designspace.Float(1)}}
	first, err := svc.Recommend(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, first.Groups)
	assert.Equal(t, 1, cache.setCalls)

	second, err := svc.Recommend(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.setCalls)
	assert.Equal(t, first.Groups, second.Groups)

	// A republish changes the version component of the key.
	_, err = svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)
	third, err := svc.Recommend(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.setCalls)
	assert.Equal(t, uint64(2), third.ProjectionVersion)
}

func TestService_RecommendRawQueryIsNormalized(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()
	_, err := svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)

	// Raw x=20 is the middle order statistic of [10,20,30].
	res, err := svc.Recommend(ctx, RecommendInput{
		Coord: designspace.Coordinate{X: 20, Y: designspace.Float(0.5)},
		Raw:   true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Query.X, 1e-12)

	// Entry 2 sits exactly at the query and leads the ranking.
	require.NotEmpty(t, res.Groups)
	assert.Equal(t, int64(2), res.Groups[0].Entries[0].ID)
	assert.Equal(t, 0.0, res.Groups[0].Distance)
}

func TestService_RecommendClampsMaxRank(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()
	_, err := svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)

	res, err := svc.Recommend(ctx, RecommendInput{
		Coord:   designspace.Coordinate{X: 0, Y: designspace.Float(0)},
		MaxRank: -3,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Groups), designspace.DefaultMaxRank)
}

func TestService_Denormalize(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()
	_, err := svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)

	c, err := svc.Denormalize(ctx, designspace.NormalizedPoint{X: 0.5, Y: designspace.Float(0.5)})
	require.NoError(t, err)
	assert.InDelta(t, 20, c.X, 1e-9)
	require.NotNil(t, c.Y)
	assert.InDelta(t, 0.5, *c.Y, 1e-9)
}

func TestService_Contour(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()
	_, err := svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)

	path, err := svc.Contour(ctx, ContourInput{
		Coord: designspace.Coordinate{X: 0.5, Y: designspace.Float(0.5)},
		Rank:  1,
	})
	require.NoError(t, err)
	require.Len(t, path, designspace.DefaultContourSegments+1)
	assert.Equal(t, path[0], path[len(path)-1])

	empty, err := svc.Contour(ctx, ContourInput{
		Coord: designspace.Coordinate{X: 0.5, Y: designspace.Float(0.5)},
		Rank:  99,
	})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestService_CreatePoint_DeduplicatesByKey(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()

	p, err := svc.CreatePoint(ctx, PointInput{
		Coord: designspace.Coordinate{X: 0.5, Y: designspace.Float(0.25)},
		Score: 80,
	})
	require.NoError(t, err)
	assert.True(t, p.ID.IsValid())

	// Same coordinate after 5-decimal rounding collides.
	_, err = svc.CreatePoint(ctx, PointInput{
		Coord: designspace.Coordinate{X: 0.500001, Y: designspace.Float(0.25)},
		Score: 10,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePointDuplicate))
}

func TestService_CreatePoint_ValidatesScore(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())

	_, err := svc.CreatePoint(context.Background(), PointInput{
		Coord: designspace.Coordinate{X: 0.5},
		Score: 101,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeScoreOutOfRange))
}

func TestService_UpdatePoint(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()

	a, err := svc.CreatePoint(ctx, PointInput{Coord: designspace.Coordinate{X: 0.1}, Score: 10})
	require.NoError(t, err)
	b, err := svc.CreatePoint(ctx, PointInput{Coord: designspace.Coordinate{X: 0.2}, Score: 20})
	require.NoError(t, err)

	// In-place rescore keeps the coordinate.
	updated, err := svc.UpdatePoint(ctx, a.ID, PointInput{Coord: a.Coord, Score: 55, Note: "revised"})
	require.NoError(t, err)
	assert.Equal(t, 55, updated.Score)
	assert.Equal(t, "revised", updated.Note)

	// Moving onto b's coordinate is rejected.
	_, err = svc.UpdatePoint(ctx, a.ID, PointInput{Coord: b.Coord, Score: 55})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePointDuplicate))
}

func TestService_DeletePoint(t *testing.T) {
	svc, _, _, _ := newTestService(t, catalog())
	ctx := context.Background()

	p, err := svc.CreatePoint(ctx, PointInput{Coord: designspace.Coordinate{X: 0.1}, Score: 10})
	require.NoError(t, err)
	require.NoError(t, svc.DeletePoint(ctx, p.ID))

	err = svc.DeletePoint(ctx, p.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodePointNotFound))
}

func TestService_ReplaceEntriesRepublishes(t *testing.T) {
	svc, repo, _, _ := newTestService(t, catalog())
	ctx := context.Background()

	// Before any projection, a catalog swap publishes nothing.
	require.NoError(t, svc.ReplaceEntries(ctx, catalog()))
	assert.False(t, svc.Ready())

	_, err := svc.Reload(ctx, designspace.ProfileA)
	require.NoError(t, err)

	require.NoError(t, svc.ReplaceEntries(ctx, []designspace.Entry{
		{ID: 9, Name: "delta", Visible: true, X: 1, Y: 1, Z: 1},
	}))
	p := svc.Projection()
	require.NotNil(t, p)
	assert.Equal(t, uint64(2), p.Version)
	assert.Len(t, p.Entries, 1)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestService_ListEntriesCachesSnapshot(t *testing.T) {
	svc, _, _, cache := newTestService(t, catalog())
	ctx := context.Background()

	entries, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 1, cache.setCalls)

	// Second read is served from the snapshot.
	_, err = svc.ListEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.setCalls)

	// Catalog replacement invalidates the snapshot.
	require.NoError(t, svc.ReplaceEntries(ctx, []designspace.Entry{
		{ID: 9, Name: "delta", Visible: true, X: 1, Y: 1, Z: 1},
	}))
	entries, err = svc.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 2, cache.setCalls)
}
