package geom

import (
	"time"

	"github.com/dhconnelly/rtreego"
)

// Region is a named set of polygons used as a spatial selection criterion.
//
// Rings are indexed in an R-tree on construction, so intersect queries
// against large vectorized zones only test candidate rings.
type Region struct {
	Name       string
	Kind       string
	TideHeight float64
	Generation string
	CreatedAt  time.Time
	Rings      []Ring

	bounds Bounds
	rtree  *rtreego.Rtree
}

// indexedRing wraps a ring for R-tree storage.
type indexedRing struct {
	ring   Ring
	bounds Bounds
}

// Bounds implements rtreego.Spatial.
func (r *indexedRing) Bounds() rtreego.Rect {
	return r.bounds.Rect()
}

// NewRegion builds a region and its spatial index.
func NewRegion(name, kind string, rings []Ring) *Region {
	r := &Region{
		Name:      name,
		Kind:      kind,
		Rings:     rings,
		CreatedAt: time.Now().UTC(),
	}
	r.buildIndex()
	return r
}

func (r *Region) buildIndex() {
	// Create R-tree (2D, min=25 children, max=50 children)
	r.rtree = rtreego.NewTree(2, 25, 50)

	all := make([]Bounds, 0, len(r.Rings))
	for _, ring := range r.Rings {
		if len(ring) == 0 {
			continue
		}
		b := ring.Bounds()
		all = append(all, b)
		r.rtree.Insert(&indexedRing{ring: ring, bounds: b})
	}
	r.bounds, _ = UnionAll(all)
}

// Bounds returns the extent of all rings.
func (r *Region) Bounds() Bounds {
	return r.bounds
}

// IsEmpty reports whether the region holds no polygons.
func (r *Region) IsEmpty() bool {
	return r.rtree == nil || r.rtree.Size() == 0
}

// Intersects reports whether g intersects any polygon of the region.
func (r *Region) Intersects(g Geometry) bool {
	if r.IsEmpty() || len(g.Coordinates) == 0 {
		return false
	}

	// The R-tree treats touching rectangles as disjoint; widen the query so
	// features on a ring boundary still reach the exact test.
	candidates := r.rtree.SearchIntersect(g.Bounds().Expand(rectEpsilon).Rect())
	for _, c := range candidates {
		if g.Intersects(c.(*indexedRing).ring) {
			return true
		}
	}
	return false
}
