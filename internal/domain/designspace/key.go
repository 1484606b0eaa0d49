package designspace

import (
	"strconv"
	"strings"

	"github.com/quadrantlab/quadrant/pkg/errors"
)

// Canonical coordinate keys give every raw coordinate a stable string
// identity: each axis formatted to exactly KeyDecimals decimal places, absent
// axes rendered as KeyAbsentToken, fields joined in x|y|z order.  The
// surrounding application uses these keys for equality and deduplication of
// persisted points across save/load round-trips, so the format must never
// drift.
const (
	// KeyDecimals is the fixed formatting precision of each coordinate field.
	KeyDecimals = 5

	// KeyAbsentToken renders an absent coordinate component.
	KeyAbsentToken = "-"

	// keySeparator joins the three coordinate fields.
	keySeparator = "|"
)

// KeyOf returns the canonical string key for a raw coordinate.
func KeyOf(c Coordinate) string {
	parts := [3]string{
		formatKeyField(&c.X),
		formatKeyField(c.Y),
		formatKeyField(c.Z),
	}
	return strings.Join(parts[:], keySeparator)
}

func formatKeyField(v *float64) string {
	if v == nil {
		return KeyAbsentToken
	}
	return strconv.FormatFloat(*v, 'f', KeyDecimals, 64)
}

// ParseKey parses a canonical coordinate key back into a Coordinate.
// The x field is mandatory; y and z may carry the absent token.
func ParseKey(key string) (Coordinate, error) {
	parts := strings.Split(key, keySeparator)
	if len(parts) != 3 {
		return Coordinate{}, errors.New(errors.ErrCodeCoordinateKeyInvalid,
			"coordinate key must have three fields").WithDetail(key)
	}
	if parts[0] == KeyAbsentToken {
		return Coordinate{}, errors.New(errors.ErrCodeCoordinateKeyInvalid,
			"coordinate key x field cannot be absent").WithDetail(key)
	}

	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coordinate{}, errors.New(errors.ErrCodeCoordinateKeyInvalid,
			"coordinate key x field is not a number").WithDetail(key)
	}
	c := Coordinate{X: x}

	if parts[1] != KeyAbsentToken {
		y, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Coordinate{}, errors.New(errors.ErrCodeCoordinateKeyInvalid,
				"coordinate key y field is not a number").WithDetail(key)
		}
		c.Y = Float(y)
	}
	if parts[2] != KeyAbsentToken {
		z, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return Coordinate{}, errors.New(errors.ErrCodeCoordinateKeyInvalid,
				"coordinate key z field is not a number").WithDetail(key)
		}
		c.Z = Float(z)
	}
	return c, nil
}
