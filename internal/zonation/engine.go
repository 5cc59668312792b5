// Package zonation derives submerged and exposed extents from an elevation
// surface and a tide height.
package zonation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/beetlebugorg/intertidal/internal/geom"
	"github.com/beetlebugorg/intertidal/internal/raster"
)

// Names of the regions a recompute publishes.
const (
	SubmergedName  = "submerged_extent"
	ExposedName    = "exposed_extent"
	IntertidalName = "intertidal_zone"

	// UnionName holds the union of both zones. IntertidalName is left to
	// authored regions.
	UnionName = "intertidal_union"
)

// KindZone tags regions produced by the engine.
const KindZone = "zone"

var (
	// ErrSurfaceUnavailable wraps failures to obtain the elevation surface.
	ErrSurfaceUnavailable = errors.New("elevation surface unavailable")

	// ErrTideOutOfRange is returned for a tide outside the declared range.
	ErrTideOutOfRange = errors.New("tide height outside surface range")
)

// SurfaceSource supplies the elevation surface.
type SurfaceSource interface {
	Surface(ctx context.Context) (*raster.Surface, error)
}

// Publisher receives freshly computed regions.
//
// ReplaceRegions must make all given regions visible together, deleting any
// previous region of the same name.
type Publisher interface {
	ReplaceRegions(ctx context.Context, regions ...*geom.Region) error
}

// Options configures an Engine.
type Options struct {
	// Min and Max bound the valid elevation range. Cells outside it stay
	// unclassified and tides outside it are rejected.
	Min float64
	Max float64

	// Union also publishes UnionName as the union of both zones.
	Union bool

	// Progress is an optional advisory callback.
	Progress func(stage string, done, total int)

	Logger *zap.Logger
}

// DefaultOptions returns the NIDEM elevation range with union mode on.
func DefaultOptions() Options {
	return Options{
		Min:   -2.601,
		Max:   2.772,
		Union: true,
	}
}

// Result describes a completed recompute.
type Result struct {
	TideHeight float64
	Generation string
	Submerged  *geom.Region
	Exposed    *geom.Region
	Intertidal *geom.Region // nil unless Options.Union
	Counts     map[raster.Class]int
}

// Engine classifies a surface into zones and publishes them.
type Engine struct {
	source    SurfaceSource
	publisher Publisher
	opts      Options
	logger    *zap.Logger
}

// NewEngine creates an engine reading from source and writing to publisher.
func NewEngine(source SurfaceSource, publisher Publisher, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source:    source,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}

// Range returns the valid tide range.
func (e *Engine) Range() (lo, hi float64) {
	return e.opts.Min, e.opts.Max
}

const stages = 4

func (e *Engine) progress(stage string, done int) {
	if e.opts.Progress != nil {
		e.opts.Progress(stage, done, stages)
	}
}

// Recompute reclassifies the surface at tide and replaces the published zones.
//
// Nothing is published unless every step succeeds, and both zones are
// handed to the publisher in a single call.
func (e *Engine) Recompute(ctx context.Context, tide float64) (*Result, error) {
	breaks := raster.Breaks{Min: e.opts.Min, Threshold: tide, Max: e.opts.Max}
	if err := breaks.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTideOutOfRange, err)
	}

	if e.source == nil {
		return nil, fmt.Errorf("%w: no surface source", ErrSurfaceUnavailable)
	}

	e.progress("load", 0)
	surface, err := e.source.Surface(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	if surface == nil {
		return nil, ErrSurfaceUnavailable
	}

	e.progress("reclassify", 1)
	grid, err := raster.Reclassify(surface, breaks)
	if err != nil {
		return nil, fmt.Errorf("reclassify: %w", err)
	}
	counts := grid.Counts()
	if n := counts[raster.Unclassified]; n > 0 {
		e.logger.Debug("cells left unclassified",
			zap.Int("count", n),
			zap.Float64("tide", tide))
	}

	e.progress("vectorize", 2)
	byClass := raster.SplitByClass(raster.Vectorize(grid))

	result := &Result{
		TideHeight: tide,
		Generation: uuid.NewString(),
		Counts:     counts,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.Submerged, err = e.buildRegion(gctx, SubmergedName, byClass[raster.Submerged], result)
		return err
	})
	g.Go(func() (err error) {
		result.Exposed, err = e.buildRegion(gctx, ExposedName, byClass[raster.Exposed], result)
		return err
	})
	if e.opts.Union {
		g.Go(func() (err error) {
			all := append(append([]raster.Polygon{}, byClass[raster.Submerged]...), byClass[raster.Exposed]...)
			result.Intertidal, err = e.buildRegion(gctx, UnionName, all, result)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.progress("publish", 3)
	regions := []*geom.Region{result.Submerged, result.Exposed}
	if result.Intertidal != nil {
		regions = append(regions, result.Intertidal)
	}
	if err := e.publisher.ReplaceRegions(ctx, regions...); err != nil {
		return nil, fmt.Errorf("publish zones: %w", err)
	}
	e.progress("done", stages)

	e.logger.Info("zones recomputed",
		zap.Float64("tide", tide),
		zap.String("generation", result.Generation),
		zap.Int("submerged_cells", counts[raster.Submerged]),
		zap.Int("exposed_cells", counts[raster.Exposed]),
		zap.Int("submerged_polygons", len(result.Submerged.Rings)),
		zap.Int("exposed_polygons", len(result.Exposed.Rings)))

	return result, nil
}

func (e *Engine) buildRegion(ctx context.Context, name string, polys []raster.Polygon, res *Result) (*geom.Region, error) {
	rings := make([]geom.Ring, len(polys))
	for i, p := range polys {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rings[i] = p.Ring
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := geom.NewRegion(name, KindZone, rings)
	r.TideHeight = res.TideHeight
	r.Generation = res.Generation
	return r, nil
}
