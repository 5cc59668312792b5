package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/intertidal/internal/geom"
	"github.com/beetlebugorg/intertidal/internal/store"
)

func storeWithRegion(t *testing.T, name string, b geom.Bounds) *store.Store {
	t.Helper()
	st := store.New()
	r := geom.NewRegion(name, "stored", []geom.Ring{geom.RectangleRing(b)})
	require.NoError(t, st.ReplaceRegions(context.Background(), r))
	return st
}

func TestSeedRegions(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenRegionDB(filepath.Join(t.TempDir(), "regions.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, seedRegions(ctx, db, storeWithRegion(t, "intertidal_zone", geom.Bounds{MaxLon: 1, MaxLat: 1})))
	r, ok, err := db.LoadRegion(ctx, "intertidal_zone")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, r.Bounds().MaxLon)

	// A region already in the database is kept.
	require.NoError(t, seedRegions(ctx, db, storeWithRegion(t, "intertidal_zone", geom.Bounds{MaxLon: 5, MaxLat: 1})))
	r, _, err = db.LoadRegion(ctx, "intertidal_zone")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Bounds().MaxLon)
}

func TestSeedRegionsLookupFailure(t *testing.T) {
	db, err := store.OpenRegionDB(filepath.Join(t.TempDir(), "regions.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = seedRegions(context.Background(), db, storeWithRegion(t, "intertidal_zone", geom.Bounds{MaxLon: 1, MaxLat: 1}))
	assert.ErrorContains(t, err, "look up region intertidal_zone")
}
