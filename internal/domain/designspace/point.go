package designspace

import (
	"time"

	"github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

// Score bounds for attraction points.
const (
	MinScore = 0
	MaxScore = 100
)

// AttractionPoint is an operator-placed raw coordinate with a score and a
// free-text note, optionally linked to catalog entries.  The engine treats it
// purely as a coordinate plus canonical key; persistence lives in the
// infrastructure layer.
type AttractionPoint struct {
	ID                 common.ID  `json:"id"`
	Coord              Coordinate `json:"coord"`
	Score              int        `json:"score"`
	Note               string     `json:"note"`
	AssociatedEntryIDs []int64    `json:"associated_entry_ids,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Key returns the point's canonical coordinate key, the identity used for
// equality and deduplication across save/load round-trips.
func (p *AttractionPoint) Key() string {
	return KeyOf(p.Coord)
}

// Validate checks the point's invariants.
func (p *AttractionPoint) Validate() error {
	if p.Score < MinScore || p.Score > MaxScore {
		return errors.Newf(errors.ErrCodeScoreOutOfRange,
			"score %d is out of range [%d, %d]", p.Score, MinScore, MaxScore)
	}
	return nil
}
