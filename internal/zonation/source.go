package zonation

import (
	"context"
	"fmt"
	"os"

	"github.com/beetlebugorg/intertidal/internal/raster"
)

// FileSource loads an ESRI ASCII grid from disk, optionally through a cache.
type FileSource struct {
	Path  string
	Cache *raster.SurfaceCache
}

// Surface implements SurfaceSource.
func (f *FileSource) Surface(ctx context.Context) (*raster.Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Path == "" {
		return nil, fmt.Errorf("no surface path configured")
	}
	if _, err := os.Stat(f.Path); err != nil {
		return nil, err
	}

	load := func() (*raster.Surface, error) {
		return raster.LoadASCIIGrid(f.Path)
	}
	if f.Cache == nil {
		return load()
	}
	return f.Cache.Get(f.Path, load)
}

// StaticSource serves an in-memory surface. A nil surface is reported as unavailable.
type StaticSource struct {
	S *raster.Surface
}

// Surface implements SurfaceSource.
func (s StaticSource) Surface(context.Context) (*raster.Surface, error) {
	if s.S == nil {
		return nil, fmt.Errorf("no surface loaded")
	}
	return s.S, nil
}
