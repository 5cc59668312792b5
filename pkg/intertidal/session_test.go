package intertidal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/geom"
	"github.com/beetlebugorg/intertidal/internal/raster"
	"github.com/beetlebugorg/intertidal/internal/store"
	"github.com/beetlebugorg/intertidal/internal/zonation"
)

func point(lon, lat float64) geom.Geometry {
	return geom.Geometry{Type: geom.GeometryTypePoint, Coordinates: [][]float64{{lon, lat}}}
}

func segment(lon1, lat1, lon2, lat2 float64) geom.Geometry {
	return geom.Geometry{Type: geom.GeometryTypeLineString, Coordinates: [][]float64{{lon1, lat1}, {lon2, lat2}}}
}

func attrs(kv ...interface{}) map[string]interface{} {
	m := map[string]interface{}{}
	for i := 0; i < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func mustCollection(t *testing.T, name string, fields []store.Field, features ...store.Feature) *store.Collection {
	t.Helper()
	c, err := store.NewCollection(name, fields, features)
	require.NoError(t, err)
	return c
}

// testStore lays tracks over a 4x1 surface of -2, -1, 1, 2 spanning
// lon 0..4, lat 0..1.
func testStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(
		mustCollection(t, "known_tracks", nil,
			store.Feature{ID: 1, Geometry: segment(0.2, 0.5, 0.8, 0.5), Attributes: attrs("type", "footpath", "width", 2)},
			store.Feature{ID: 2, Geometry: segment(3.2, 0.5, 3.8, 0.5), Attributes: attrs("type", "vehicle", "width", 4)},
			store.Feature{ID: 3, Geometry: point(1.5, 0.5), Attributes: attrs("type", "footpath", "width", 2)},
			store.Feature{ID: 4, Geometry: point(10, 10), Attributes: attrs("type", "vehicle", "width", 3.5)},
		),
		mustCollection(t, "user_tracks", nil,
			store.Feature{ID: 1, Geometry: point(2.5, 0.5), Attributes: attrs("type", "boat", "surveyor", "ab")},
			store.Feature{ID: 2, Geometry: point(0.5, 0.5), Attributes: attrs("type", "walk", "surveyor", "cd")},
		),
		mustCollection(t, "NIDEM_surface", nil,
			store.Feature{ID: 1, Geometry: point(-5, -5), Attributes: attrs("grid", "nidem")},
		),
		mustCollection(t, "empty_tracks", []store.Field{{Name: "type", Type: "string"}}),
	)
}

func rampSurface(t *testing.T) *raster.Surface {
	t.Helper()
	s, err := raster.NewSurface(4, 1, 0, 0, 1, []float64{-2, -1, 1, 2})
	require.NoError(t, err)
	return s
}

func newTestSession(t *testing.T, st *store.Store, mutate func(*Options)) *Session {
	t.Helper()
	opts := DefaultOptions()
	opts.OutputTable = filepath.Join(t.TempDir(), "output_table.csv")
	opts.Logger = zap.NewNop()
	if mutate != nil {
		mutate(&opts)
	}
	sess, err := NewSession(st, st, zonation.StaticSource{S: rampSurface(t)}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestNewSessionDefaults(t *testing.T) {
	sess := newTestSession(t, testStore(t), nil)

	snap := sess.Snapshot()
	assert.Equal(t, 0.0, snap.TideHeight)
	assert.Equal(t, "known_tracks", snap.Collection)
	assert.Equal(t, "type", snap.Field)
	assert.Equal(t, StageFieldChosen, snap.Stage)
	assert.Equal(t, []interface{}{"footpath", "vehicle"}, snap.CandidateValues)
	assert.Empty(t, snap.Ready)
	assert.Equal(t, sess.ID().String(), snap.ID)
}

func TestNewSessionRejectsBadOptions(t *testing.T) {
	st := testStore(t)
	src := zonation.StaticSource{S: rampSurface(t)}

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no collections", func(o *Options) { o.Collections = nil }},
		{"missing collection", func(o *Options) { o.Collections = []string{"lost_tracks"} }},
		{"empty range", func(o *Options) { o.TideMin, o.TideMax = 1, 1 }},
		{"bad intertidal source", func(o *Options) { o.IntertidalSource = "guess" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := NewSession(st, st, src, opts)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestNewSessionMissingDefaultField(t *testing.T) {
	sess := newTestSession(t, testStore(t), func(o *Options) { o.DefaultField = "colour" })

	assert.Equal(t, "colour", sess.SelectedField())
	assert.Equal(t, StageCollectionChosen, sess.Stage())
	assert.Empty(t, sess.CandidateValues())
}

func TestSetTideHeight(t *testing.T) {
	sess := newTestSession(t, testStore(t), nil)

	require.NoError(t, sess.SetTideHeight(1.5))
	assert.Equal(t, 1.5, sess.TideHeight())

	tests := []struct {
		name string
		set  func() error
	}{
		{"non-numeric text", func() error { return sess.SetTideHeightText("high") }},
		{"empty text", func() error { return sess.SetTideHeightText("") }},
		{"above range", func() error { return sess.SetTideHeight(2.773) }},
		{"below range", func() error { return sess.SetTideHeightText("-2.602") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.set(), ErrInvalidParameter)
			assert.Equal(t, 1.5, sess.TideHeight(), "prior value kept")
		})
	}

	require.NoError(t, sess.SetTideHeightText(" -2.601 "))
	assert.Equal(t, -2.601, sess.TideHeight())
	require.NoError(t, sess.SetTideHeight(2.772))
}

func TestTidePresetsWithinRange(t *testing.T) {
	sess := newTestSession(t, testStore(t), nil)
	for _, h := range TidePresets() {
		assert.NoError(t, sess.SetTideHeight(h))
	}
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, TidePresets())
}

func TestRecomputeZonesMarksRegionsReady(t *testing.T) {
	st := testStore(t)
	sess := newTestSession(t, st, nil)

	res, err := sess.RecomputeZones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.SubmergedCells)
	assert.Equal(t, 2, res.ExposedCells)
	assert.NotNil(t, res.Intertidal)

	assert.Equal(t, []ExtentRegion{SubmergedExtent, ExposedExtent, IntertidalZoneExtent}, sess.Snapshot().Ready)
	_, ok := st.Region(string(SubmergedExtent))
	assert.True(t, ok)
}

func TestRecomputeZonesSurfaceUnavailable(t *testing.T) {
	st := testStore(t)
	opts := DefaultOptions()
	sess, err := NewSession(st, st, zonation.StaticSource{}, opts)
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.RecomputeZones(context.Background())
	assert.ErrorIs(t, err, ErrDataSourceUnavailable)
	assert.False(t, sess.Ready(SubmergedExtent))
	assert.Empty(t, st.Regions())
}

func TestRecomputeZonesReplacesPreviousZones(t *testing.T) {
	st := testStore(t)
	sess := newTestSession(t, st, nil)
	ctx := context.Background()

	require.NoError(t, sess.SetTideHeight(-1.5))
	first, err := sess.RecomputeZones(ctx)
	require.NoError(t, err)

	require.NoError(t, sess.SetTideHeight(1.5))
	second, err := sess.RecomputeZones(ctx)
	require.NoError(t, err)

	sub, _ := st.Region(string(SubmergedExtent))
	exp, _ := st.Region(string(ExposedExtent))
	assert.Equal(t, second.Generation, sub.Generation)
	assert.Equal(t, second.Generation, exp.Generation)
	assert.NotEqual(t, first.Generation, sub.Generation)
	assert.Equal(t, 3.0, sub.Bounds().MaxLon)
	assert.Equal(t, 3.0, exp.Bounds().MinLon)
}
