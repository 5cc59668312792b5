package intertidal

import (
	"context"

	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/geom"
	"github.com/beetlebugorg/intertidal/internal/zonation"
)

// Bounds is an axis-aligned extent in map units.
type Bounds = geom.Bounds

// Region is a named set of polygons used as a selection criterion.
type Region = geom.Region

// SurfaceSource supplies the elevation surface to zonation.
type SurfaceSource = zonation.SurfaceSource

// FeatureStore is the feature-collection store a session selects over.
type FeatureStore interface {
	Collections() []string
	Fields(collection string) ([]string, error)
	DistinctValues(collection, field string) ([]interface{}, error)
	FieldValues(collection, field string) ([]interface{}, error)
	SelectWhere(collection, field, value string) (int, error)
	SelectIntersecting(collection, region string) (int, error)
	ClearSelection(collection string) error
	Selected(collection string) ([]int64, error)
	Extent(collection string) (Bounds, error)
	SelectedExtent(collection string) (Bounds, bool, error)
}

// RegionStore holds named regions. ReplaceRegions must make all given
// regions visible together.
type RegionStore interface {
	ReplaceRegions(ctx context.Context, regions ...*Region) error
	Region(name string) (*Region, bool)
	DeleteRegion(ctx context.Context, name string) error
}

// Intertidal region sources.
const (
	IntertidalFromUnion  = "union"
	IntertidalFromStored = "stored"
)

// Options configures a Session.
type Options struct {
	// Collections lists the selectable collections. The first is selected
	// when the session starts.
	Collections []string

	// DefaultField is the field selected when the session starts.
	DefaultField string

	// ReservedPrefix names collections that ClearSelection leaves alone.
	ReservedPrefix string

	// TideMin and TideMax bound the tide height and the elevation range
	// that is classified.
	TideMin float64
	TideMax float64

	// IntertidalSource is IntertidalFromUnion or IntertidalFromStored.
	IntertidalSource string

	// OutputTable is where frequency statistics are written. Empty skips
	// writing.
	OutputTable string

	// HelpPath is the local help document opened by OpenHelp.
	HelpPath string

	// Display receives extent changes. Defaults to a ViewState.
	Display Display

	// Progress is an optional advisory callback for zonation.
	Progress func(stage string, done, total int)

	// OpenHelp opens a help document. Defaults to the system browser.
	OpenHelp func(path string) error

	Logger *zap.Logger
}

// DefaultOptions returns options matching the NIDEM surface and the
// known_tracks and user_tracks collections.
func DefaultOptions() Options {
	return Options{
		Collections:      []string{"known_tracks", "user_tracks"},
		DefaultField:     "type",
		ReservedPrefix:   "NIDEM",
		TideMin:          -2.601,
		TideMax:          2.772,
		IntertidalSource: IntertidalFromUnion,
		OutputTable:      "output_table.csv",
	}
}

// TidePresets returns the preset tide heights offered for selection.
func TidePresets() []float64 {
	return []float64{-2, -1, 0, 1, 2}
}
