// Package repositories provides PostgreSQL-backed implementations of the
// designspace repository interfaces.
package repositories

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	appErrors "github.com/quadrantlab/quadrant/pkg/errors"
)

// EntryRepository is the PostgreSQL implementation of
// designspace.EntryRepository.  Every method accepts a context.Context for
// cancellation and uses parameterised queries exclusively.
type EntryRepository struct {
	pool   *pgxpool.Pool
	logger Logger
}

// NewEntryRepository constructs a ready-to-use EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool, logger Logger) *EntryRepository {
	return &EntryRepository{pool: pool, logger: logger}
}

// List returns the full catalog in stable ID order.
func (r *EntryRepository) List(ctx context.Context) ([]designspace.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, visible, x, y, z
		FROM entries
		ORDER BY id`)
	if err != nil {
		r.logger.Error("EntryRepository.List: query", "error", err)
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list entries")
	}
	defer rows.Close()

	entries := make([]designspace.Entry, 0, 64)
	for rows.Next() {
		var e designspace.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Visible, &e.X, &e.Y, &e.Z); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to read entries")
	}
	return entries, nil
}

// Get returns a single entry by its catalog identifier.
func (r *EntryRepository) Get(ctx context.Context, id int64) (*designspace.Entry, error) {
	var e designspace.Entry
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, visible, x, y, z
		FROM entries
		WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Visible, &e.X, &e.Y, &e.Z)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeEntryNotFound, "entry not found").
				WithDetail(strconv.FormatInt(id, 10))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to get entry")
	}
	return &e, nil
}

// Replace swaps the entire catalog for a freshly loaded entry set inside a
// single transaction.  The feed is loaded wholesale; partial updates are not
// part of the model.
func (r *EntryRepository) Replace(ctx context.Context, entries []designspace.Entry) error {
	r.logger.Debug("EntryRepository.Replace", "count", len(entries))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM entries`); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to clear entries")
	}

	for i := range entries {
		e := &entries[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO entries (id, name, visible, x, y, z)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.Name, e.Visible, e.X, e.Y, e.Z)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert entry")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to commit entry replacement")
	}
	return nil
}

// Count returns the catalog size.
func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count entries")
	}
	return n, nil
}
