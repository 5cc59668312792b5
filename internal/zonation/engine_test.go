package zonation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/intertidal/internal/geom"
	"github.com/beetlebugorg/intertidal/internal/raster"
)

// recordingPublisher keeps the regions of each ReplaceRegions call.
type recordingPublisher struct {
	calls [][]*geom.Region
	err   error
}

func (p *recordingPublisher) ReplaceRegions(_ context.Context, regions ...*geom.Region) error {
	if p.err != nil {
		return p.err
	}
	p.calls = append(p.calls, regions)
	return nil
}

// rampSurface is a 4x1 grid: -2, -1, 1, 2 from west to east.
func rampSurface(t *testing.T) *raster.Surface {
	t.Helper()
	s, err := raster.NewSurface(4, 1, 0, 0, 1, []float64{-2, -1, 1, 2})
	require.NoError(t, err)
	return s
}

func TestRecomputePublishesDisjointZones(t *testing.T) {
	pub := &recordingPublisher{}
	e := NewEngine(StaticSource{S: rampSurface(t)}, pub, DefaultOptions())

	res, err := e.Recompute(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, pub.calls, 1)
	names := []string{}
	for _, r := range pub.calls[0] {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{SubmergedName, ExposedName, UnionName}, names)

	assert.Equal(t, geom.Bounds{MinLon: 0, MaxLon: 2, MinLat: 0, MaxLat: 1}, res.Submerged.Bounds())
	assert.Equal(t, geom.Bounds{MinLon: 2, MaxLon: 4, MinLat: 0, MaxLat: 1}, res.Exposed.Bounds())
	assert.Equal(t, geom.Bounds{MinLon: 0, MaxLon: 4, MinLat: 0, MaxLat: 1}, res.Intertidal.Bounds())
	assert.Equal(t, res.Generation, res.Submerged.Generation)
	assert.Equal(t, res.Generation, res.Exposed.Generation)

	// Cell centres land in exactly one zone.
	for col, wantSubmerged := range []bool{true, true, false, false} {
		pt := geom.Geometry{Type: geom.GeometryTypePoint, Coordinates: [][]float64{{float64(col) + 0.5, 0.5}}}
		assert.Equal(t, wantSubmerged, res.Submerged.Intersects(pt), "col %d submerged", col)
		assert.Equal(t, !wantSubmerged, res.Exposed.Intersects(pt), "col %d exposed", col)
	}
}

func TestRecomputeReplacesPreviousRun(t *testing.T) {
	pub := &recordingPublisher{}
	e := NewEngine(StaticSource{S: rampSurface(t)}, pub, DefaultOptions())

	first, err := e.Recompute(context.Background(), -1.5)
	require.NoError(t, err)
	second, err := e.Recompute(context.Background(), 1.5)
	require.NoError(t, err)

	assert.NotEqual(t, first.Generation, second.Generation)
	assert.Equal(t, 1.0, first.Submerged.Bounds().MaxLon)
	assert.Equal(t, 3.0, second.Submerged.Bounds().MaxLon)
	assert.Equal(t, 3.0, second.Exposed.Bounds().MinLon)

	for _, r := range pub.calls[1] {
		assert.Equal(t, second.Generation, r.Generation, r.Name)
		assert.Equal(t, 1.5, r.TideHeight, r.Name)
	}
}

func TestRecomputeRejectsTideOutsideRange(t *testing.T) {
	pub := &recordingPublisher{}
	e := NewEngine(StaticSource{S: rampSurface(t)}, pub, DefaultOptions())

	for _, tide := range []float64{-2.602, 2.7721, 10} {
		_, err := e.Recompute(context.Background(), tide)
		assert.ErrorIs(t, err, ErrTideOutOfRange)
	}
	assert.Empty(t, pub.calls)
}

func TestRecomputeSurfaceUnavailable(t *testing.T) {
	pub := &recordingPublisher{}

	tests := []struct {
		name   string
		source SurfaceSource
	}{
		{"no surface", StaticSource{}},
		{"missing file", &FileSource{Path: filepath.Join(t.TempDir(), "missing.asc")}},
		{"empty path", &FileSource{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.source, pub, DefaultOptions())
			_, err := e.Recompute(context.Background(), 0)
			assert.ErrorIs(t, err, ErrSurfaceUnavailable)
		})
	}
	assert.Empty(t, pub.calls)
}

func TestRecomputeCanceled(t *testing.T) {
	pub := &recordingPublisher{}
	e := NewEngine(StaticSource{S: rampSurface(t)}, pub, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Recompute(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pub.calls)
}

func TestRecomputePublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("disk full")}
	e := NewEngine(StaticSource{S: rampSurface(t)}, pub, DefaultOptions())

	_, err := e.Recompute(context.Background(), 0)
	assert.ErrorContains(t, err, "disk full")
}

func TestRecomputeWithoutUnion(t *testing.T) {
	pub := &recordingPublisher{}
	opts := DefaultOptions()
	opts.Union = false

	var stagesSeen []string
	opts.Progress = func(stage string, done, total int) {
		assert.LessOrEqual(t, done, total)
		stagesSeen = append(stagesSeen, stage)
	}

	res, err := NewEngine(StaticSource{S: rampSurface(t)}, pub, opts).Recompute(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, res.Intertidal)
	assert.Len(t, pub.calls[0], 2)
	assert.Equal(t, []string{"load", "reclassify", "vectorize", "publish", "done"}, stagesSeen)
}

func TestFileSourceUsesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dem.asc")
	grid := "ncols 2\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n-1 1\n"
	require.NoError(t, os.WriteFile(path, []byte(grid), 0o644))

	cache := raster.NewSurfaceCache(0)
	src := &FileSource{Path: path, Cache: cache}

	a, err := src.Surface(context.Background())
	require.NoError(t, err)
	b, err := src.Surface(context.Background())
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, cache.Stats().SurfaceCount)
}
