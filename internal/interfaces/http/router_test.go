package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrantlab/quadrant/internal/application/space"
	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/prometheus"
	"github.com/quadrantlab/quadrant/internal/interfaces/http/handlers"
	"github.com/quadrantlab/quadrant/internal/interfaces/http/middleware"
	"github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

type stubEntryRepo struct {
	entries []designspace.Entry
}

func (r *stubEntryRepo) List(ctx context.Context) ([]designspace.Entry, error) {
	out := make([]designspace.Entry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *stubEntryRepo) Get(ctx context.Context, id int64) (*designspace.Entry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, errors.New(errors.ErrCodeEntryNotFound, "catalog entry not found")
}

func (r *stubEntryRepo) Replace(ctx context.Context, entries []designspace.Entry) error {
	r.entries = append([]designspace.Entry(nil), entries...)
	return nil
}

func (r *stubEntryRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.entries)), nil
}

type stubPointRepo struct {
	points map[common.ID]*designspace.AttractionPoint
}

func newStubPointRepo() *stubPointRepo {
	return &stubPointRepo{points: map[common.ID]*designspace.AttractionPoint{}}
}

func (r *stubPointRepo) Save(ctx context.Context, p *designspace.AttractionPoint) error {
	clone := *p
	r.points[p.ID] = &clone
	return nil
}

func (r *stubPointRepo) Get(ctx context.Context, id common.ID) (*designspace.AttractionPoint, error) {
	p, ok := r.points[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePointNotFound, "attraction point not found")
	}
	clone := *p
	return &clone, nil
}

func (r *stubPointRepo) FindByKey(ctx context.Context, key string) (*designspace.AttractionPoint, error) {
	for _, p := range r.points {
		if p.Key() == key {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubPointRepo) List(ctx context.Context) ([]designspace.AttractionPoint, error) {
	out := make([]designspace.AttractionPoint, 0, len(r.points))
	for _, p := range r.points {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPointRepo) Delete(ctx context.Context, id common.ID) error {
	if _, ok := r.points[id]; !ok {
		return errors.New(errors.ErrCodePointNotFound, "attraction point not found")
	}
	delete(r.points, id)
	return nil
}

// stubCache always runs the loader; results pass through a JSON round trip
// the way the real cache deserializes into dest.
type stubCache struct{}

func (stubCache) Get(ctx context.Context, key string, dest interface{}) error {
	return fmt.Errorf("miss")
}
func (stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (stubCache) Delete(ctx context.Context, keys ...string) error      { return nil }
func (stubCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
func (stubCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
func (stubCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) { return 0, nil }
func (stubCache) Ping(ctx context.Context) error                                   { return nil }

func testRouter(t *testing.T) (chi.Router, *space.Service) {
	t.Helper()

	collector, err := prometheus.NewMetricsCollector(
		prometheus.CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)
	logger := logging.NewNopLogger()

	entries := &stubEntryRepo{entries: []designspace.Entry{
		{ID: 1, Name: "alpha", Visible: true, X: 10, Y: 0.9, Z: -1},
		{ID: 2, Name: "beta", Visible: true, X: 20, Y: 0.5, Z: 0.3},
		{ID: 3, Name: "gamma", Visible: true, X: 30, Y: 0.1, Z: 0.7},
	}}

	svc := space.NewService(space.Deps{
		Entries: entries,
		Points:  newStubPointRepo(),
		Cache:   stubCache{},
		Metrics: metrics,
		Logger:  logger,
		Policy:  designspace.DefaultPolicy(),
	})

	router := NewRouter(RouterConfig{
		Logger:    logger,
		Metrics:   metrics,
		Collector: collector,
		Health: handlers.NewHealthHandler(svc.Ready, map[string]handlers.CheckFunc{
			"stub": func(ctx context.Context) error { return nil },
		}, metrics, logger),
		Entries: handlers.NewEntryHandler(svc, logger),
		Points:  handlers.NewPointHandler(svc, logger),
		Space:   handlers.NewSpaceHandler(svc, logger),
		Logging: middleware.DefaultLoggingConfig(),
		CORS:    middleware.DefaultCORSConfig(),
	})
	return router, svc
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *common.ErrorDetail `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthEndpoints(t *testing.T) {
	router, svc := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Not ready before the first reload.
	rec = doJSON(t, router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := svc.Reload(context.Background(), designspace.ProfileA)
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_")
}

func TestEntries_ListAndGet(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/entries/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var entries []designspace.Entry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 3)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/entries/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/entries/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env = decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(errors.ErrCodeEntryNotFound), env.Error.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/entries/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntries_ReplaceRepublishes(t *testing.T) {
	router, svc := testRouter(t)

	_, err := svc.Reload(context.Background(), designspace.ProfileA)
	require.NoError(t, err)

	body := map[string]interface{}{
		"entries": []designspace.Entry{
			{ID: 7, Name: "delta", Visible: true, X: 5, Y: 0.2, Z: 0.4},
		},
	}
	rec := doJSON(t, router, http.MethodPut, "/api/v1/entries/", body)
	require.Equal(t, http.StatusOK, rec.Code)

	p := svc.Projection()
	require.NotNil(t, p)
	assert.Equal(t, uint64(2), p.Version)
	assert.Len(t, p.Entries, 1)
}

func TestSpace_RecommendBeforeReload(t *testing.T) {
	router, _ := testRouter(t)

	body := space.RecommendInput{Coord: designspace.Coordinate{X: 0.5, Y: designspace.Float(0.5)}}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/space/recommend", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(errors.ErrCodeProjectionNotReady), env.Error.Code)
}

func TestSpace_ReloadRecommendContourDenormalize(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/space/reload", map[string]string{"profile": "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var summary struct {
		Version uint64 `json:"version"`
		Profile string `json:"profile"`
		Entries int    `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, uint64(1), summary.Version)
	assert.Equal(t, "A", summary.Profile)
	assert.Equal(t, 3, summary.Entries)

	// Raw query at entry 2's exact coordinate ranks it first at distance 0.
	recommendBody := space.RecommendInput{
		Coord: designspace.Coordinate{X: 20, Y: designspace.Float(0.5)},
		Raw:   true,
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/space/recommend", recommendBody)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)

	var result space.RecommendResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, uint64(1), result.ProjectionVersion)
	require.NotEmpty(t, result.Groups)
	assert.Equal(t, 1, result.Groups[0].Rank)
	require.NotEmpty(t, result.Groups[0].Entries)
	assert.Equal(t, int64(2), result.Groups[0].Entries[0].ID)

	contourBody := space.ContourInput{
		Coord: designspace.Coordinate{X: 20, Y: designspace.Float(0.5)},
		Raw:   true,
		Rank:  1,
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/space/contour", contourBody)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)

	var contour struct {
		Rank int                 `json:"rank"`
		Path []designspace.Point `json:"path"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &contour))
	assert.Equal(t, 1, contour.Rank)
	assert.Len(t, contour.Path, 37)

	denormBody := map[string]interface{}{
		"point": designspace.NormalizedPoint{X: 0.5, Y: designspace.Float(0.5)},
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/space/denormalize", denormBody)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)

	var coord designspace.Coordinate
	require.NoError(t, json.Unmarshal(env.Data, &coord))
	assert.InDelta(t, 20, coord.X, 1e-9)
}

func TestSpace_ReloadRejectsUnknownProfile(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/space/reload", map[string]string{"profile": "C"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(errors.ErrCodeAxisProfileInvalid), env.Error.Code)
}

func TestPoints_CRUDAndDuplicate(t *testing.T) {
	router, _ := testRouter(t)

	create := space.PointInput{
		Coord: designspace.Coordinate{X: 0.5, Y: designspace.Float(0.25)},
		Score: 80,
		Note:  "sweet spot",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/points/", create)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)

	var created designspace.AttractionPoint
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, created.ID.IsValid())

	// Same canonical coordinate is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/points/", create)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env = decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(errors.ErrCodePointDuplicate), env.Error.Code)

	update := space.PointInput{
		Coord: designspace.Coordinate{X: 0.75, Y: designspace.Float(0.25)},
		Score: 90,
	}
	rec = doJSON(t, router, http.MethodPut, "/api/v1/points/"+string(created.ID), update)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/points/"+string(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	var fetched designspace.AttractionPoint
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, 90, fetched.Score)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/points/"+string(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/points/"+string(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPoints_ValidationAndBadID(t *testing.T) {
	router, _ := testRouter(t)

	bad := space.PointInput{
		Coord: designspace.Coordinate{X: 0.5},
		Score: 101,
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/points/", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(errors.ErrCodeScoreOutOfRange), env.Error.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/points/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(errors.ErrCodeNotFound), env.Error.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/entries/", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
}
