package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/beetlebugorg/intertidal/internal/geom"
)

var (
	// ErrUnknownCollection is returned for a collection name not in the store.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnknownField is returned for a field not defined on a collection.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownRegion is returned for a region name not in the store.
	ErrUnknownRegion = errors.New("unknown region")
)

// RegionPersister durably records region replacements.
type RegionPersister interface {
	SaveRegions(ctx context.Context, regions ...*geom.Region) error
	DeleteRegion(ctx context.Context, name string) error
}

// Store is an in-memory feature store with per-collection selections.
//
// Region replacement is all-or-nothing: readers see either every region of
// a ReplaceRegions call or none of them.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	order       []string
	selections  map[string]map[int64]struct{}
	regions     map[string]*geom.Region
	persist     RegionPersister
}

// New creates a store over the given collections.
func New(collections ...*Collection) *Store {
	s := &Store{
		collections: make(map[string]*Collection),
		selections:  make(map[string]map[int64]struct{}),
		regions:     make(map[string]*geom.Region),
	}
	for _, c := range collections {
		s.AddCollection(c)
	}
	return s
}

// SetPersister routes region changes through p before they become visible.
func (s *Store) SetPersister(p RegionPersister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = p
}

// AddCollection adds or replaces a collection, clearing its selection.
func (s *Store) AddCollection(c *Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[c.Name]; !ok {
		s.order = append(s.order, c.Name)
	}
	s.collections[c.Name] = c
	delete(s.selections, c.Name)
}

// Collections returns collection names in insertion order.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Collection returns the named collection.
func (s *Store) Collection(name string) (*Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectionLocked(name)
}

func (s *Store) collectionLocked(name string) (*Collection, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return c, nil
}

// Fields lists the field names of a collection.
func (s *Store) Fields(collection string) ([]string, error) {
	c, err := s.Collection(collection)
	if err != nil {
		return nil, err
	}
	fields := c.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, nil
}

// DistinctValues returns the sorted distinct values of field over collection.
func (s *Store) DistinctValues(collection, field string) ([]interface{}, error) {
	c, err := s.Collection(collection)
	if err != nil {
		return nil, err
	}
	if !c.HasField(field) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, collection, field)
	}
	return c.DistinctValues(field), nil
}

// SelectWhere replaces the selection on collection with features whose
// field renders as value. It returns the number of selected features.
func (s *Store) SelectWhere(collection, field, value string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collectionLocked(collection)
	if err != nil {
		return 0, err
	}
	if !c.HasField(field) {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownField, collection, field)
	}

	sel := make(map[int64]struct{})
	for _, f := range c.features {
		v, ok := f.Attributes[field]
		if ok && v != nil && FormatValue(v) == value {
			sel[f.ID] = struct{}{}
		}
	}
	s.selections[collection] = sel
	return len(sel), nil
}

// SelectIntersecting replaces the selection on collection with features
// intersecting the named region.
func (s *Store) SelectIntersecting(collection, region string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collectionLocked(collection)
	if err != nil {
		return 0, err
	}
	r, ok := s.regions[region]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}

	sel := make(map[int64]struct{})
	for _, f := range c.FeaturesInBounds(r.Bounds()) {
		if r.Intersects(f.Geometry) {
			sel[f.ID] = struct{}{}
		}
	}
	s.selections[collection] = sel
	return len(sel), nil
}

// ClearSelection drops the selection on collection. Clearing an empty
// selection is a no-op.
func (s *Store) ClearSelection(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.collectionLocked(collection); err != nil {
		return err
	}
	delete(s.selections, collection)
	return nil
}

// Selected returns the selected feature ids of collection in ascending order.
func (s *Store) Selected(collection string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.collectionLocked(collection); err != nil {
		return nil, err
	}
	sel := s.selections[collection]
	ids := make([]int64, 0, len(sel))
	for id := range sel {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// HasSelection reports whether collection has an active selection.
func (s *Store) HasSelection(collection string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selections[collection]
	return ok
}

// Extent returns the bounds of all features in collection.
func (s *Store) Extent(collection string) (geom.Bounds, error) {
	c, err := s.Collection(collection)
	if err != nil {
		return geom.Bounds{}, err
	}
	return c.Bounds(), nil
}

// SelectedExtent returns the bounds of the selected features of collection.
// ok is false when nothing with geometry is selected.
func (s *Store) SelectedExtent(collection string) (b geom.Bounds, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collectionLocked(collection)
	if err != nil {
		return geom.Bounds{}, false, err
	}
	var all []geom.Bounds
	for id := range s.selections[collection] {
		f, found := c.Feature(id)
		if !found || len(f.Geometry.Coordinates) == 0 {
			continue
		}
		all = append(all, f.Geometry.Bounds())
	}
	b, ok = geom.UnionAll(all)
	return b, ok, nil
}

// Rows returns the features of collection that statistics should cover:
// the selected features when a selection is active, otherwise all of them.
func (s *Store) Rows(collection string) ([]Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collectionLocked(collection)
	if err != nil {
		return nil, err
	}
	sel, active := s.selections[collection]
	if !active {
		return c.features, nil
	}
	rows := make([]Feature, 0, len(sel))
	for _, f := range c.features {
		if _, ok := sel[f.ID]; ok {
			rows = append(rows, f)
		}
	}
	return rows, nil
}

// FieldValues returns field's value on each row of collection, nil where
// a feature lacks the attribute. Rows follow the same rule as Rows.
func (s *Store) FieldValues(collection, field string) ([]interface{}, error) {
	c, err := s.Collection(collection)
	if err != nil {
		return nil, err
	}
	if !c.HasField(field) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, collection, field)
	}
	rows, err := s.Rows(collection)
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(rows))
	for i, f := range rows {
		values[i] = f.Attributes[field]
	}
	return values, nil
}

// ReplaceRegions installs regions, replacing any region of the same name.
//
// The persister, if set, is written first; on failure nothing changes.
func (s *Store) ReplaceRegions(ctx context.Context, regions ...*geom.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveRegions(ctx, regions...); err != nil {
			return fmt.Errorf("persist regions: %w", err)
		}
	}

	next := make(map[string]*geom.Region, len(s.regions)+len(regions))
	for name, r := range s.regions {
		next[name] = r
	}
	for _, r := range regions {
		next[r.Name] = r
	}
	s.regions = next
	return nil
}

// DeleteRegion removes a region. Deleting a missing region is a no-op.
func (s *Store) DeleteRegion(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.DeleteRegion(ctx, name); err != nil {
			return fmt.Errorf("delete region: %w", err)
		}
	}
	delete(s.regions, name)
	return nil
}

// Region returns the named region.
func (s *Store) Region(name string) (*geom.Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[name]
	return r, ok
}

// Regions returns region names, sorted.
func (s *Store) Regions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.regions))
	for name := range s.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
