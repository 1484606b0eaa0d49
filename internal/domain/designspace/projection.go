package designspace

import (
	"time"

	"github.com/quadrantlab/quadrant/pkg/errors"
)

// Projection is the versioned, replace-on-write snapshot of a normalized
// entry set: the RankMap plus every entry's derived coordinate under one axis
// profile.  A Projection is derived in full by DeriveProjection and must be
// published atomically by the owner; it is never mutated afterwards, which
// makes it safe for unlimited concurrent readers.  Any change to the source
// entries or the active profile requires deriving a fresh Projection with a
// higher version.
type Projection struct {
	Version   uint64        `json:"version"`
	Profile   AxisProfile   `json:"profile"`
	Entries   []PlacedEntry `json:"entries"`
	RankMap   *RankMap      `json:"rank_map"`
	DerivedAt time.Time     `json:"derived_at"`
}

// DeriveProjection normalizes the entry set under the profile and wraps the
// result into an immutable Projection with the given version.
func DeriveProjection(version uint64, entries []Entry, profile AxisProfile, policy Policy) (*Projection, error) {
	if !profile.IsValid() {
		return nil, errors.New(errors.ErrCodeAxisProfileInvalid, "unsupported axis profile: "+profile.String())
	}

	placed, rankMap := NewNormalizer(policy).Normalize(entries, profile)
	return &Projection{
		Version:   version,
		Profile:   profile,
		Entries:   placed,
		RankMap:   rankMap,
		DerivedAt: time.Now().UTC(),
	}, nil
}

// ErrNotReady is the canonical "no projection published yet" failure.
// Denormalize and recommend operations must surface it instead of silently
// computing against an absent or stale map.
func ErrNotReady() *errors.AppError {
	return errors.New(errors.ErrCodeProjectionNotReady,
		errors.DefaultMessageForCode(errors.ErrCodeProjectionNotReady))
}
