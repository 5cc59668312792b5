package geom

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// Bounds represents an axis-aligned bounding box.
//
// Coordinates follow the [lon, lat] (x, y) convention used throughout the
// module. Projected surfaces use the same fields for easting and northing.
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// rectEpsilon is the minimum side length handed to the R-tree, which rejects
// zero-length rectangles. Point features and axis-parallel lines rely on it.
const rectEpsilon = 1e-9

// Contains returns true if the point (lon, lat) is within the bounds.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MaxLon: b.MaxLon + margin,
		MinLat: b.MinLat - margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinLon: math.Min(b.MinLon, other.MinLon),
		MaxLon: math.Max(b.MaxLon, other.MaxLon),
		MinLat: math.Min(b.MinLat, other.MinLat),
		MaxLat: math.Max(b.MaxLat, other.MaxLat),
	}
}

// IsZero reports whether b is the zero value.
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// Width returns the east-west extent.
func (b Bounds) Width() float64 { return b.MaxLon - b.MinLon }

// Height returns the north-south extent.
func (b Bounds) Height() float64 { return b.MaxLat - b.MinLat }

// Rect converts the bounds to an R-tree rectangle.
func (b Bounds) Rect() rtreego.Rect {
	point := rtreego.Point{b.MinLon, b.MinLat}

	lonLength := b.Width()
	latLength := b.Height()
	if lonLength < rectEpsilon {
		lonLength = rectEpsilon
	}
	if latLength < rectEpsilon {
		latLength = rectEpsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// UnionAll folds a list of bounds. ok is false when the list is empty.
func UnionAll(all []Bounds) (b Bounds, ok bool) {
	if len(all) == 0 {
		return Bounds{}, false
	}
	b = all[0]
	for _, o := range all[1:] {
		b = b.Union(o)
	}
	return b, true
}
