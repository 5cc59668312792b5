package intertidal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/beetlebugorg/intertidal/internal/geom"
	"github.com/beetlebugorg/intertidal/internal/store"
)

func TestFrequencyStatistics(t *testing.T) {
	st := store.New(
		mustCollection(t, "known_tracks", nil,
			store.Feature{ID: 1, Geometry: point(0, 0), Attributes: attrs("type", "A")},
			store.Feature{ID: 2, Geometry: point(1, 1), Attributes: attrs("type", "A")},
			store.Feature{ID: 3, Geometry: point(2, 2), Attributes: attrs("type", "B")},
		),
	)
	sess := newTestSession(t, st, nil)

	table, err := sess.ComputeFrequencyStatistics("known_tracks", "type")
	require.NoError(t, err)
	assert.Equal(t, 3, table.Total)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "A", table.Rows[0].Value)
	assert.Equal(t, 2, table.Rows[0].Count)
	assert.InDelta(t, 66.67, table.Rows[0].Percent, 0.005)
	assert.Equal(t, "B", table.Rows[1].Value)
	assert.InDelta(t, 33.33, table.Rows[1].Percent, 0.005)

	data, err := os.ReadFile(sess.opts.OutputTable)
	require.NoError(t, err)
	assert.Equal(t, "value,count,percent\nA,2,66.67\nB,1,33.33\n", string(data))
}

func TestFrequencyStatisticsHonoursSelection(t *testing.T) {
	sess := newTestSession(t, testStore(t), nil)

	_, err := sess.ChooseValue("footpath")
	require.NoError(t, err)

	table, err := sess.ComputeFrequencyStatistics("known_tracks", "width")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Total)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 2, table.Rows[0].Value)
	assert.Equal(t, 100.0, table.Rows[0].Percent)
}

func TestFrequencyStatisticsErrors(t *testing.T) {
	sess := newTestSession(t, testStore(t), nil)
	_, statErr := os.Stat(sess.opts.OutputTable)
	require.ErrorIs(t, statErr, os.ErrNotExist)

	_, err := sess.ComputeFrequencyStatistics("empty_tracks", "type")
	assert.ErrorIs(t, err, ErrEmptyCollection)

	_, err = sess.ComputeFrequencyStatistics("known_tracks", "colour")
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = sess.ComputeFrequencyStatistics("lost_tracks", "type")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, statErr = os.Stat(sess.opts.OutputTable)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "failed runs write nothing")
}

func TestFrequencyStatisticsUnwritableOutput(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	sess := newTestSession(t, testStore(t), func(o *Options) {
		o.OutputTable = filepath.Join(blocker, "output_table.csv")
	})
	_, err := sess.ComputeFrequencyStatistics("known_tracks", "type")
	assert.ErrorIs(t, err, ErrDataSourceUnavailable)
}

func TestDrawStudyArea(t *testing.T) {
	st := testStore(t)
	sess := newTestSession(t, st, nil)
	ctx := context.Background()

	_, err := sess.DrawStudyArea(ctx, [][]float64{{0, 0}, {1, 1}, {0, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
	var geomErr *geom.ErrInvalidGeometry
	assert.ErrorAs(t, err, &geomErr)
	_, ok := st.Region(StudyAreaName)
	assert.False(t, ok)

	corners := RectangleCorners(geom.Bounds{MinLon: 0, MaxLon: 2, MinLat: 0, MaxLat: 1})
	want := [][]float64{{0, 1}, {2, 1}, {2, 0}, {0, 0}}
	if diff := cmp.Diff(want, corners); diff != "" {
		t.Errorf("corners mismatch (-want +got):\n%s", diff)
	}

	r, err := sess.DrawStudyArea(ctx, corners)
	require.NoError(t, err)
	require.Len(t, r.Rings, 1)
	ring := r.Rings[0]
	assert.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])

	// A second drawing replaces the first.
	_, err = sess.DrawStudyArea(ctx, [][]float64{{5, 5}, {6, 5}, {6, 6}})
	require.NoError(t, err)
	got, ok := st.Region(StudyAreaName)
	require.True(t, ok)
	assert.Equal(t, geom.Bounds{MinLon: 5, MaxLon: 6, MinLat: 5, MaxLat: 6}, got.Bounds())
}

func TestZoomToFullExtent(t *testing.T) {
	view := NewViewState(nil)
	view.SetExtent(geom.Bounds{MinLon: -20, MaxLon: -10, MinLat: 0, MaxLat: 1})
	sess := newTestSession(t, testStore(t), func(o *Options) { o.Display = view })

	b, err := sess.ZoomToFullExtent()
	require.NoError(t, err)
	want := geom.Bounds{MinLon: -20, MaxLon: 10, MinLat: -5, MaxLat: 10}
	assert.Equal(t, want, b)
	assert.Equal(t, want, view.Extent())
	assert.Equal(t, 1, view.Refreshes())
}

func TestZoomToSelection(t *testing.T) {
	view := NewViewState(nil)
	initial := geom.Bounds{MinLon: -1, MaxLon: 1, MinLat: -1, MaxLat: 1}
	view.SetExtent(initial)
	sess := newTestSession(t, testStore(t), func(o *Options) { o.Display = view })

	_, ok, err := sess.ZoomToSelection()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, initial, view.Extent())
	assert.Equal(t, 0, view.Refreshes())

	_, err = sess.ChooseValue("footpath")
	require.NoError(t, err)

	b, ok, err := sess.ZoomToSelection()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, geom.Bounds{MinLon: 0.2, MaxLon: 1.5, MinLat: 0.5, MaxLat: 0.5}, b)
	assert.Equal(t, b, view.Extent())
	assert.Equal(t, 1, view.Refreshes())
}

func TestOpenHelp(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		mu     sync.Mutex
		opened []string
	)
	st := testStore(t)
	opts := DefaultOptions()
	opts.HelpPath = "/srv/help/index.html"
	opts.OpenHelp = func(path string) error {
		mu.Lock()
		defer mu.Unlock()
		opened = append(opened, path)
		return nil
	}
	sess, err := NewSession(st, st, nil, opts)
	require.NoError(t, err)
	before := sess.Snapshot()

	task := sess.OpenHelp()
	require.NoError(t, task.Wait())
	require.NoError(t, sess.Close())

	assert.Equal(t, []string{"/srv/help/index.html"}, opened)
	assert.Equal(t, before, sess.Snapshot())
}

func TestOpenHelpFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := testStore(t)
	opts := DefaultOptions()
	opts.OpenHelp = func(string) error { return errors.New("no browser") }

	sess, err := NewSession(st, st, nil, opts)
	require.NoError(t, err)

	err = sess.OpenHelp().Wait()
	assert.ErrorIs(t, err, ErrDataSourceUnavailable, "no help path configured")

	opts.HelpPath = "help.html"
	sess2, err := NewSession(st, st, nil, opts)
	require.NoError(t, err)
	err = sess2.OpenHelp().Wait()
	assert.ErrorIs(t, err, ErrDataSourceUnavailable)
	assert.ErrorContains(t, err, "no browser")

	require.NoError(t, sess.Close())
	require.NoError(t, sess2.Close())
}
