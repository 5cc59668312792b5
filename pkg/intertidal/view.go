package intertidal

import (
	"sync"

	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/geom"
	"github.com/beetlebugorg/intertidal/internal/logging"
)

// Display is the map view a session zooms.
type Display interface {
	Extent() Bounds
	SetExtent(Bounds)
	Refresh()
}

// ViewState is an in-memory Display that logs extent changes.
type ViewState struct {
	mu        sync.Mutex
	extent    Bounds
	refreshes int
	logger    *zap.Logger
}

// NewViewState returns a view with an empty extent.
func NewViewState(logger *zap.Logger) *ViewState {
	return &ViewState{logger: logging.OrNop(logger)}
}

// Extent implements Display.
func (v *ViewState) Extent() Bounds {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.extent
}

// SetExtent implements Display.
func (v *ViewState) SetExtent(b Bounds) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.extent = b
}

// Refresh implements Display.
func (v *ViewState) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshes++
	v.logger.Debug("view refreshed",
		zap.Float64("min_lon", v.extent.MinLon),
		zap.Float64("min_lat", v.extent.MinLat),
		zap.Float64("max_lon", v.extent.MaxLon),
		zap.Float64("max_lat", v.extent.MaxLat))
}

// Refreshes returns how many times the view was refreshed.
func (v *ViewState) Refreshes() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshes
}

// Display returns the session's display.
func (s *Session) Display() Display { return s.display }

// ZoomToFullExtent sets the view to the union of the current extent and
// the extent of every collection.
func (s *Session) ZoomToFullExtent() (Bounds, error) {
	var all []Bounds
	if cur := s.display.Extent(); !cur.IsZero() {
		all = append(all, cur)
	}
	for _, c := range s.features.Collections() {
		b, err := s.features.Extent(c)
		if err != nil {
			return Bounds{}, opError("zoom to full extent", ErrDataSourceUnavailable, err)
		}
		if !b.IsZero() {
			all = append(all, b)
		}
	}

	full, ok := geom.UnionAll(all)
	if ok {
		s.display.SetExtent(full)
	}
	s.display.Refresh()
	return full, nil
}

// ZoomToSelection sets the view to the bounds of the selected features in
// every collection. With nothing selected the view is left alone and ok is
// false.
func (s *Session) ZoomToSelection() (b Bounds, ok bool, err error) {
	var all []Bounds
	for _, c := range s.features.Collections() {
		sb, found, err := s.features.SelectedExtent(c)
		if err != nil {
			return Bounds{}, false, opError("zoom to selection", ErrDataSourceUnavailable, err)
		}
		if found {
			all = append(all, sb)
		}
	}

	b, ok = geom.UnionAll(all)
	if !ok {
		return Bounds{}, false, nil
	}
	s.display.SetExtent(b)
	s.display.Refresh()
	return b, true, nil
}
