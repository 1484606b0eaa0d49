// Package space orchestrates the design-space engine for the outer surfaces:
// it owns the published projection, layers caching and metrics over the pure
// core, and enforces coordinate-level deduplication of attraction points.
package space

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	"github.com/quadrantlab/quadrant/internal/infrastructure/database/redis"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/prometheus"
	"github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

const (
	recommendCachePrefix = "recommend:"
	entriesCacheKey      = "entries:list"
)

// Deps carries the service's constructor dependencies.
type Deps struct {
	Entries designspace.EntryRepository
	Points  designspace.PointRepository
	Cache   redis.Cache
	Metrics *prometheus.AppMetrics
	Logger  logging.Logger

	Policy         designspace.Policy
	DefaultMaxRank int
	CacheTTL       time.Duration
}

// Service is the application facade over the design-space engine.
//
// The published projection is replace-on-write: readers load the atomic
// pointer and compute against an immutable snapshot, writers derive a fresh
// projection under reloadMu and publish it with a version bump.  Readers are
// never blocked by a rebuild.
type Service struct {
	entries designspace.EntryRepository
	points  designspace.PointRepository
	cache   redis.Cache
	metrics *prometheus.AppMetrics
	logger  logging.Logger

	policy         designspace.Policy
	defaultMaxRank int
	cacheTTL       time.Duration

	normalizer *designspace.Normalizer
	ranker     *designspace.Ranker
	contour    *designspace.ContourGenerator
	denorm     *designspace.Denormalizer

	projection atomic.Pointer[designspace.Projection]
	version    atomic.Uint64
	reloadMu   sync.Mutex
}

// NewService constructs the service.  No projection is published until the
// first Reload succeeds.
func NewService(d Deps) *Service {
	maxRank := d.DefaultMaxRank
	if maxRank < 1 {
		maxRank = designspace.DefaultMaxRank
	}
	ttl := d.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		entries:        d.Entries,
		points:         d.Points,
		cache:          d.Cache,
		metrics:        d.Metrics,
		logger:         d.Logger.Named("space"),
		policy:         d.Policy,
		defaultMaxRank: maxRank,
		cacheTTL:       ttl,
		normalizer:     designspace.NewNormalizer(d.Policy),
		ranker:         designspace.NewRanker(d.Policy),
		contour:        designspace.NewContourGenerator(d.Policy),
		denorm:         designspace.NewDenormalizer(),
	}
}

// Projection returns the currently published projection, or nil when none has
// been derived yet.
func (s *Service) Projection() *designspace.Projection {
	return s.projection.Load()
}

// Ready reports whether a projection has been published.
func (s *Service) Ready() bool {
	return s.projection.Load() != nil
}

// Reload fetches the catalog, derives a new projection under the given
// profile and publishes it.  The recommendation cache is invalidated because
// cached results embed the superseded version.
func (s *Service) Reload(ctx context.Context, profile designspace.AxisProfile) (*designspace.Projection, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	entries, err := s.entries.List(ctx)
	if err != nil {
		prometheus.RecordProjectionRebuild(s.metrics, profile.String(), 0, 0, time.Since(start), err)
		return nil, err
	}

	version := s.version.Add(1)
	p, err := designspace.DeriveProjection(version, entries, profile, s.policy)
	prometheus.RecordProjectionRebuild(s.metrics, profile.String(), len(entries), version, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.projection.Store(p)

	if _, err := s.cache.DeleteByPrefix(ctx, recommendCachePrefix); err != nil {
		// Stale entries are version-keyed and expire on TTL; a failed purge
		// is not fatal.
		s.logger.Warn("failed to invalidate recommendation cache", logging.Err(err))
	}

	s.logger.Info("projection published",
		logging.Uint64("version", p.Version),
		logging.String("profile", profile.String()),
		logging.Int("entries", len(p.Entries)),
	)
	return p, nil
}

// RecommendInput is a recommendation query.  Coord is interpreted as already
// normalized unless Raw is set, in which case it is projected into rank space
// against the live rank map.
type RecommendInput struct {
	Coord   designspace.Coordinate `json:"coord"`
	Raw     bool                   `json:"raw"`
	MaxRank int                    `json:"max_rank"`
}

// RecommendResult is a tie-grouped neighbor ranking.
type RecommendResult struct {
	ProjectionVersion uint64                      `json:"projection_version"`
	Profile           designspace.AxisProfile     `json:"profile"`
	Query             designspace.NormalizedPoint `json:"query"`
	Groups            []designspace.RankGroup     `json:"groups"`
}

// Recommend computes the tie-grouped neighbor ranking for a query point.
// Results are cached keyed by projection version and canonical query key, so
// a republished projection naturally misses.
func (s *Service) Recommend(ctx context.Context, in RecommendInput) (*RecommendResult, error) {
	p := s.projection.Load()
	if p == nil {
		return nil, designspace.ErrNotReady()
	}

	start := time.Now()
	maxRank := in.MaxRank
	if maxRank < 1 {
		maxRank = s.defaultMaxRank
	}

	query := s.queryPoint(in, p)
	cacheKey := fmt.Sprintf("%sv%d:%s:%d:%t:%s",
		recommendCachePrefix, p.Version, p.Profile, maxRank, in.Raw, designspace.KeyOf(in.Coord))

	var groups []designspace.RankGroup
	loaded := false
	err := s.cache.GetOrSet(ctx, cacheKey, &groups, s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return s.ranker.Recommend(query, p.Entries, p.Profile, maxRank), nil
	})
	prometheus.RecordCacheAccess(s.metrics, "recommend", !loaded)
	prometheus.RecordRecommend(s.metrics, p.Profile.String(), len(groups), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRecommendFailed, "recommendation failed")
	}

	return &RecommendResult{
		ProjectionVersion: p.Version,
		Profile:           p.Profile,
		Query:             query,
		Groups:            groups,
	}, nil
}

// queryPoint resolves the input coordinate into rank space.
func (s *Service) queryPoint(in RecommendInput, p *designspace.Projection) designspace.NormalizedPoint {
	if in.Raw {
		return s.normalizer.NormalizeQuery(in.Coord, p.RankMap, p.Profile)
	}
	return designspace.NormalizedPoint{X: in.Coord.X, Y: in.Coord.Y, Z: in.Coord.Z}
}

// Denormalize maps a rank-space point back into approximate raw coordinates
// against the published rank map.
func (s *Service) Denormalize(ctx context.Context, point designspace.NormalizedPoint) (designspace.Coordinate, error) {
	p := s.projection.Load()
	if p == nil {
		return designspace.Coordinate{}, designspace.ErrNotReady()
	}
	return s.denorm.Denormalize(point, p.RankMap, p.Profile), nil
}

// ContourInput selects the rank group to ring.
type ContourInput struct {
	Coord   designspace.Coordinate `json:"coord"`
	Raw     bool                   `json:"raw"`
	MaxRank int                    `json:"max_rank"`
	Rank    int                    `json:"rank"`
}

// Contour computes the mean-radius ring of one rank group around the query
// point.  A rank with no group yields an empty path, mirroring the engine's
// empty-input behavior.
func (s *Service) Contour(ctx context.Context, in ContourInput) ([]designspace.Point, error) {
	p := s.projection.Load()
	if p == nil {
		return nil, designspace.ErrNotReady()
	}

	maxRank := in.MaxRank
	if maxRank < 1 {
		maxRank = s.defaultMaxRank
	}
	query := s.queryPoint(RecommendInput{Coord: in.Coord, Raw: in.Raw}, p)
	groups := s.ranker.Recommend(query, p.Entries, p.Profile, maxRank)

	for _, g := range groups {
		if g.Rank == in.Rank {
			return s.contour.Contour(g.Entries, p.Profile, query), nil
		}
	}
	return []designspace.Point{}, nil
}

// PointInput carries the writable fields of an attraction point.
type PointInput struct {
	Coord              designspace.Coordinate `json:"coord"`
	Score              int                    `json:"score"`
	Note               string                 `json:"note"`
	AssociatedEntryIDs []int64                `json:"associated_entry_ids,omitempty"`
}

// CreatePoint persists a new attraction point.  Two points may never share a
// canonical coordinate key; the existing point wins and the create fails.
func (s *Service) CreatePoint(ctx context.Context, in PointInput) (*designspace.AttractionPoint, error) {
	now := time.Now().UTC()
	p := &designspace.AttractionPoint{
		ID:                 common.NewID(),
		Coord:              in.Coord,
		Score:              in.Score,
		Note:               in.Note,
		AssociatedEntryIDs: in.AssociatedEntryIDs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.Validate(); err != nil {
		prometheus.RecordError(s.metrics, "points", "validation")
		return nil, err
	}

	existing, err := s.points.FindByKey(ctx, p.Key())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.PointDuplicateTotal.WithLabelValues().Inc()
		return nil, errors.New(errors.ErrCodePointDuplicate,
			"a point already exists at this coordinate").WithDetail(p.Key())
	}

	if err := s.points.Save(ctx, p); err != nil {
		s.metrics.PointWritesTotal.WithLabelValues("create", "failure").Inc()
		return nil, err
	}
	s.metrics.PointWritesTotal.WithLabelValues("create", "success").Inc()
	s.logger.Info("attraction point created",
		logging.String("id", string(p.ID)),
		logging.String("key", p.Key()),
	)
	return p, nil
}

// UpdatePoint rewrites an existing point's fields.  Moving a point onto
// another point's coordinate is rejected the same way a duplicate create is.
func (s *Service) UpdatePoint(ctx context.Context, id common.ID, in PointInput) (*designspace.AttractionPoint, error) {
	p, err := s.points.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *p
	updated.Coord = in.Coord
	updated.Score = in.Score
	updated.Note = in.Note
	updated.AssociatedEntryIDs = in.AssociatedEntryIDs
	updated.UpdatedAt = time.Now().UTC()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if updated.Key() != p.Key() {
		existing, err := s.points.FindByKey(ctx, updated.Key())
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, errors.New(errors.ErrCodePointDuplicate,
				"a point already exists at this coordinate").WithDetail(updated.Key())
		}
	}

	if err := s.points.Save(ctx, &updated); err != nil {
		s.metrics.PointWritesTotal.WithLabelValues("update", "failure").Inc()
		return nil, err
	}
	s.metrics.PointWritesTotal.WithLabelValues("update", "success").Inc()
	return &updated, nil
}

// GetPoint returns a point by ID.
func (s *Service) GetPoint(ctx context.Context, id common.ID) (*designspace.AttractionPoint, error) {
	return s.points.Get(ctx, id)
}

// ListPoints returns all points.
func (s *Service) ListPoints(ctx context.Context) ([]designspace.AttractionPoint, error) {
	return s.points.List(ctx)
}

// DeletePoint removes a point by ID.
func (s *Service) DeletePoint(ctx context.Context, id common.ID) error {
	if err := s.points.Delete(ctx, id); err != nil {
		s.metrics.PointWritesTotal.WithLabelValues("delete", "failure").Inc()
		return err
	}
	s.metrics.PointWritesTotal.WithLabelValues("delete", "success").Inc()
	return nil
}

// ListEntries returns the full catalog, served from cache when possible.
// The snapshot is purged on catalog replacement and bounded by the TTL.
func (s *Service) ListEntries(ctx context.Context) ([]designspace.Entry, error) {
	var entries []designspace.Entry
	loaded := false
	err := s.cache.GetOrSet(ctx, entriesCacheKey, &entries, s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return s.entries.List(ctx)
	})
	prometheus.RecordCacheAccess(s.metrics, "entries", !loaded)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntry returns a single catalog entry.
func (s *Service) GetEntry(ctx context.Context, id int64) (*designspace.Entry, error) {
	return s.entries.Get(ctx, id)
}

// ReplaceEntries swaps the whole catalog.  When a projection is already
// published it is re-derived under the same profile so readers never see the
// old projection paired with the new catalog.
func (s *Service) ReplaceEntries(ctx context.Context, entries []designspace.Entry) error {
	if err := s.entries.Replace(ctx, entries); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, entriesCacheKey); err != nil {
		s.logger.Warn("failed to invalidate entries cache", logging.Err(err))
	}
	if p := s.projection.Load(); p != nil {
		if _, err := s.Reload(ctx, p.Profile); err != nil {
			return err
		}
	}
	return nil
}
