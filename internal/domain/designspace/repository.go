package designspace

import (
	"context"

	"github.com/quadrantlab/quadrant/pkg/types/common"
)

// EntryRepository abstracts persistence of the catalog entry feed.
// Implementations live in the infrastructure layer.
type EntryRepository interface {
	// List returns the full catalog in stable ID order.
	List(ctx context.Context) ([]Entry, error)

	// Get returns a single entry by its catalog identifier.
	Get(ctx context.Context, id int64) (*Entry, error)

	// Replace swaps the entire catalog for a freshly loaded entry set.
	// The feed is loaded wholesale (e.g. a dropped catalog file); partial
	// updates are not part of the model.
	Replace(ctx context.Context, entries []Entry) error

	// Count returns the catalog size.
	Count(ctx context.Context) (int64, error)
}

// PointRepository abstracts persistence of operator-placed attraction points.
type PointRepository interface {
	Save(ctx context.Context, p *AttractionPoint) error
	Get(ctx context.Context, id common.ID) (*AttractionPoint, error)

	// FindByKey looks a point up by its canonical coordinate key.
	// Returns nil (no error) when no point exists at that coordinate.
	FindByKey(ctx context.Context, key string) (*AttractionPoint, error)

	List(ctx context.Context) ([]AttractionPoint, error)
	Delete(ctx context.Context, id common.ID) error
}
