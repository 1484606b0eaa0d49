package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	appErrors "github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

// PointRepository is the PostgreSQL implementation of
// designspace.PointRepository.  The coord_key column carries the canonical
// coordinate key and is unique, so coordinate-level deduplication is enforced
// by the database as well as by the service layer.
type PointRepository struct {
	pool   *pgxpool.Pool
	logger Logger
}

// NewPointRepository constructs a ready-to-use PointRepository.
func NewPointRepository(pool *pgxpool.Pool, logger Logger) *PointRepository {
	return &PointRepository{pool: pool, logger: logger}
}

// Save upserts an attraction point keyed by ID.  A conflicting coord_key on a
// different row surfaces as ErrCodePointDuplicate.
func (r *PointRepository) Save(ctx context.Context, p *designspace.AttractionPoint) error {
	r.logger.Debug("PointRepository.Save", "point_id", p.ID, "key", p.Key())

	_, err := r.pool.Exec(ctx, `
		INSERT INTO attraction_points (
			id, x, y, z, coord_key, score, note, associated_entry_ids,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			x = EXCLUDED.x,
			y = EXCLUDED.y,
			z = EXCLUDED.z,
			coord_key = EXCLUDED.coord_key,
			score = EXCLUDED.score,
			note = EXCLUDED.note,
			associated_entry_ids = EXCLUDED.associated_entry_ids,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Coord.X, p.Coord.Y, p.Coord.Z, p.Key(), p.Score, p.Note,
		p.AssociatedEntryIDs, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return appErrors.New(appErrors.ErrCodePointDuplicate,
				"a point already exists at this coordinate").WithDetail(p.Key())
		}
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to save point")
	}
	return nil
}

// Get returns a point by ID.
func (r *PointRepository) Get(ctx context.Context, id common.ID) (*designspace.AttractionPoint, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, x, y, z, score, note, associated_entry_ids, created_at, updated_at
		FROM attraction_points
		WHERE id = $1`, id)

	p, err := scanPoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodePointNotFound, "point not found").
				WithDetail(string(id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to get point")
	}
	return p, nil
}

// FindByKey looks a point up by its canonical coordinate key.
// Returns nil (no error) when no point exists at that coordinate.
func (r *PointRepository) FindByKey(ctx context.Context, key string) (*designspace.AttractionPoint, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, x, y, z, score, note, associated_entry_ids, created_at, updated_at
		FROM attraction_points
		WHERE coord_key = $1`, key)

	p, err := scanPoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to find point by key")
	}
	return p, nil
}

// List returns all points ordered by creation time.
func (r *PointRepository) List(ctx context.Context) ([]designspace.AttractionPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, x, y, z, score, note, associated_entry_ids, created_at, updated_at
		FROM attraction_points
		ORDER BY created_at, id`)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list points")
	}
	defer rows.Close()

	points := make([]designspace.AttractionPoint, 0, 16)
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan point")
		}
		points = append(points, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to read points")
	}
	return points, nil
}

// Delete removes a point by ID.
func (r *PointRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM attraction_points WHERE id = $1`, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete point")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodePointNotFound, "point not found").
			WithDetail(string(id))
	}
	return nil
}

func scanPoint(row pgx.Row) (*designspace.AttractionPoint, error) {
	var p designspace.AttractionPoint
	err := row.Scan(
		&p.ID, &p.Coord.X, &p.Coord.Y, &p.Coord.Z, &p.Score, &p.Note,
		&p.AssociatedEntryIDs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
