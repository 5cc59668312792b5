// Package store holds feature collections, their selection state and the
// named regions used as spatial selection criteria.
package store

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/beetlebugorg/intertidal/internal/geom"
)

// Field describes an attribute column of a collection.
type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // string, int, float, bool; informational
}

// Feature is one row of a collection.
type Feature struct {
	ID         int64
	Geometry   geom.Geometry
	Attributes map[string]interface{}
}

// Attribute returns a specific attribute value by name.
func (f *Feature) Attribute(name string) (interface{}, bool) {
	val, ok := f.Attributes[name]
	return val, ok
}

// Collection is a named, immutable set of features with a spatial index.
type Collection struct {
	Name     string
	fields   []Field
	features []Feature
	byID     map[int64]int
	rtree    *rtreego.Rtree
	bounds   geom.Bounds
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	pos    int
	bounds geom.Bounds
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return f.bounds.Rect()
}

// NewCollection validates features and builds the collection's index.
//
// When fields is empty the field list is derived from the attribute keys
// present on the features, sorted by name.
func NewCollection(name string, fields []Field, features []Feature) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection has empty name")
	}

	c := &Collection{
		Name:     name,
		features: features,
		byID:     make(map[int64]int, len(features)),
	}

	for i := range features {
		f := &features[i]
		if err := geom.ValidateGeometry(&f.Geometry); err != nil {
			return nil, fmt.Errorf("collection %s feature %d: %w", name, f.ID, err)
		}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("collection %s: duplicate feature id %d", name, f.ID)
		}
		c.byID[f.ID] = i
	}

	if len(fields) == 0 {
		fields = deriveFields(features)
	}
	c.fields = fields

	c.buildSpatialIndex()
	return c, nil
}

func deriveFields(features []Feature) []Field {
	seen := map[string]string{}
	for _, f := range features {
		for k, v := range f.Attributes {
			if _, ok := seen[k]; !ok || seen[k] == "" {
				seen[k] = valueType(v)
			}
		}
	}
	fields := make([]Field, 0, len(seen))
	for name, typ := range seen {
		fields = append(fields, Field{Name: name, Type: typ})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// buildSpatialIndex creates an R-tree over feature bounds and the collection extent.
func (c *Collection) buildSpatialIndex() {
	// Create R-tree (2D, min=25 children, max=50 children)
	c.rtree = rtreego.NewTree(2, 25, 50)

	var all []geom.Bounds
	for i, f := range c.features {
		if len(f.Geometry.Coordinates) == 0 {
			continue
		}
		fb := f.Geometry.Bounds()
		all = append(all, fb)
		c.rtree.Insert(&indexedFeature{pos: i, bounds: fb})
	}
	c.bounds, _ = geom.UnionAll(all)
}

// Fields returns the collection's attribute fields in declared order.
func (c *Collection) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// HasField reports whether name is a field of the collection.
func (c *Collection) HasField(name string) bool {
	for _, f := range c.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Features returns all features.
func (c *Collection) Features() []Feature {
	return c.features
}

// FeatureCount returns the number of features.
func (c *Collection) FeatureCount() int {
	return len(c.features)
}

// Feature returns the feature with the given id.
func (c *Collection) Feature(id int64) (Feature, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Feature{}, false
	}
	return c.features[i], true
}

// Bounds returns the extent of all features.
func (c *Collection) Bounds() geom.Bounds {
	return c.bounds
}

// FeaturesInBounds returns all features whose bounds intersect b.
func (c *Collection) FeaturesInBounds(b geom.Bounds) []Feature {
	if c.rtree == nil {
		return c.featuresInBoundsLinear(b)
	}

	spatials := c.rtree.SearchIntersect(b.Expand(1e-9).Rect())
	result := make([]Feature, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, c.features[s.(*indexedFeature).pos])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// featuresInBoundsLinear performs linear search when no spatial index exists.
func (c *Collection) featuresInBoundsLinear(b geom.Bounds) []Feature {
	var result []Feature
	for _, f := range c.features {
		if len(f.Geometry.Coordinates) > 0 && b.Intersects(f.Geometry.Bounds()) {
			result = append(result, f)
		}
	}
	return result
}

// DistinctValues returns the distinct non-null values of field, sorted ascending.
func (c *Collection) DistinctValues(field string) []interface{} {
	seen := map[string]interface{}{}
	for _, f := range c.features {
		v, ok := f.Attributes[field]
		if !ok || v == nil {
			continue
		}
		key := ValueKey(v)
		if prev, ok := seen[key]; ok && CompareValues(prev, v) <= 0 {
			continue
		}
		seen[key] = v
	}
	values := make([]interface{}, 0, len(seen))
	for _, v := range seen {
		values = append(values, v)
	}
	SortValues(values)
	return values
}
