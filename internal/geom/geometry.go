package geom

// GeometryType represents the type of geometry.
type GeometryType int

const (
	// GeometryTypePoint represents a single point location (or a multipoint).
	GeometryTypePoint GeometryType = iota

	// GeometryTypeLineString represents a line composed of connected points.
	GeometryTypeLineString

	// GeometryTypePolygon represents a closed polygon area.
	GeometryTypePolygon
)

// String returns the string representation of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeLineString:
		return "LineString"
	case GeometryTypePolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// ParseGeometryType maps a case-sensitive GeoJSON-style name to a GeometryType.
func ParseGeometryType(s string) (GeometryType, bool) {
	switch s {
	case "Point", "point", "MultiPoint":
		return GeometryTypePoint, true
	case "LineString", "linestring", "line":
		return GeometryTypeLineString, true
	case "Polygon", "polygon":
		return GeometryTypePolygon, true
	}
	return 0, false
}

// Geometry is the spatial representation of a feature.
//
// Coordinates are [lon, lat] pairs. A polygon holds a single closed ring.
type Geometry struct {
	Type        GeometryType
	Coordinates [][]float64
}

// Ring is a closed sequence of [lon, lat] vertices; the last equals the first.
type Ring [][]float64

// Bounds calculates the bounding box of the geometry.
func (g Geometry) Bounds() Bounds {
	return coordBounds(g.Coordinates)
}

// Bounds calculates the bounding box of the ring.
func (r Ring) Bounds() Bounds {
	return coordBounds(r)
}

func coordBounds(coords [][]float64) Bounds {
	if len(coords) == 0 {
		return Bounds{}
	}

	first := coords[0]
	bounds := Bounds{
		MinLon: first[0],
		MaxLon: first[0],
		MinLat: first[1],
		MaxLat: first[1],
	}

	for _, coord := range coords[1:] {
		lon, lat := coord[0], coord[1]
		if lon < bounds.MinLon {
			bounds.MinLon = lon
		}
		if lon > bounds.MaxLon {
			bounds.MaxLon = lon
		}
		if lat < bounds.MinLat {
			bounds.MinLat = lat
		}
		if lat > bounds.MaxLat {
			bounds.MaxLat = lat
		}
	}

	return bounds
}

// RectangleRing returns the closed ring of b in upper-left, upper-right,
// lower-right, lower-left order.
func RectangleRing(b Bounds) Ring {
	return Ring{
		{b.MinLon, b.MaxLat},
		{b.MaxLon, b.MaxLat},
		{b.MaxLon, b.MinLat},
		{b.MinLon, b.MinLat},
		{b.MinLon, b.MaxLat},
	}
}

// Intersects reports whether g shares at least one point with the polygon
// bounded by ring. Boundaries count as shared, matching an intersect
// predicate with zero search distance.
func (g Geometry) Intersects(ring Ring) bool {
	if len(g.Coordinates) == 0 || len(ring) < 4 {
		return false
	}
	if !g.Bounds().Intersects(ring.Bounds()) {
		return false
	}

	for _, c := range g.Coordinates {
		if ring.Contains(c[0], c[1]) {
			return true
		}
	}

	if g.Type == GeometryTypePoint {
		return false
	}

	edges := g.Coordinates
	if g.Type == GeometryTypePolygon {
		edges = CloseRing(edges)
		// The ring may lie entirely inside the feature polygon.
		if Ring(edges).Contains(ring[0][0], ring[0][1]) {
			return true
		}
	}

	for i := 0; i+1 < len(edges); i++ {
		for j := 0; j+1 < len(ring); j++ {
			if segmentsIntersect(edges[i], edges[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

// Contains reports whether the point lies inside the ring or on its boundary.
//
// Interior test uses ray casting.
func (r Ring) Contains(lon, lat float64) bool {
	if len(r) < 3 {
		return false
	}

	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]

		if onSegment(r[j], r[i], []float64{lon, lat}) {
			return true
		}

		if ((yi > lat) != (yj > lat)) &&
			(lon < (xj-xi)*(lat-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}
	return inside
}

// CloseRing returns coords with the first vertex appended when the sequence
// is not already closed. The input is not modified.
func CloseRing(coords [][]float64) [][]float64 {
	if len(coords) == 0 {
		return coords
	}
	first, last := coords[0], coords[len(coords)-1]
	if first[0] == last[0] && first[1] == last[1] && len(coords) > 1 {
		return coords
	}
	out := make([][]float64, 0, len(coords)+1)
	out = append(out, coords...)
	out = append(out, []float64{first[0], first[1]})
	return out
}

func cross(o, a, b []float64) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// onSegment reports whether p lies on the closed segment ab.
func onSegment(a, b, p []float64) bool {
	if cross(a, b, p) != 0 {
		return false
	}
	return p[0] >= min(a[0], b[0]) && p[0] <= max(a[0], b[0]) &&
		p[1] >= min(a[1], b[1]) && p[1] <= max(a[1], b[1])
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// segmentsIntersect reports whether closed segments p1p2 and q1q2 touch.
func segmentsIntersect(p1, p2, q1, q2 []float64) bool {
	d1 := sign(cross(q1, q2, p1))
	d2 := sign(cross(q1, q2, p2))
	d3 := sign(cross(p1, p2, q1))
	d4 := sign(cross(p1, p2, q2))

	if d1 != d2 && d3 != d4 {
		return true
	}

	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}
