package geom

import (
	"fmt"
	"math"
)

// ValidateCoordinate validates a single coordinate.
// A coordinate holds 2 or 3 finite values [lon, lat] or [lon, lat, z].
func ValidateCoordinate(i int, coord []float64) error {
	if len(coord) < 2 || len(coord) > 3 {
		return &ErrInvalidCoordinate{Index: i, Coord: coord}
	}
	for _, v := range coord {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ErrInvalidCoordinate{Index: i, Coord: coord}
		}
	}
	return nil
}

// ValidateGeometry checks the coordinate shape of a feature geometry.
//
// Degenerate lines and polygons are allowed; they simply never intersect.
func ValidateGeometry(geometry *Geometry) error {
	if geometry == nil {
		return &ErrInvalidGeometry{Reason: "geometry is nil"}
	}

	for i, coord := range geometry.Coordinates {
		if err := ValidateCoordinate(i, coord); err != nil {
			return &ErrInvalidGeometry{
				Type:   geometry.Type,
				Reason: err.Error(),
			}
		}
	}

	return nil
}

// DistinctVertices counts the distinct [lon, lat] positions in coords.
func DistinctVertices(coords [][]float64) int {
	seen := make(map[[2]float64]struct{}, len(coords))
	for _, c := range coords {
		seen[[2]float64{c[0], c[1]}] = struct{}{}
	}
	return len(seen)
}

// NewRing validates corners and returns them as a closed ring.
//
// At least three distinct corners are required.
func NewRing(corners [][]float64) (Ring, error) {
	for i, c := range corners {
		if err := ValidateCoordinate(i, c); err != nil {
			return nil, &ErrInvalidGeometry{Type: GeometryTypePolygon, Reason: err.Error()}
		}
	}

	if n := DistinctVertices(corners); n < 3 {
		return nil, &ErrInvalidGeometry{
			Type:   GeometryTypePolygon,
			Reason: fmt.Sprintf("need at least 3 distinct corners, got %d", n),
		}
	}

	ring := make(Ring, 0, len(corners)+1)
	for _, c := range corners {
		ring = append(ring, []float64{c[0], c[1]})
	}
	return Ring(CloseRing(ring)), nil
}
