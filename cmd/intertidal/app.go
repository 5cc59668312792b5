package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/raster"
	"github.com/beetlebugorg/intertidal/internal/store"
	"github.com/beetlebugorg/intertidal/internal/zonation"
	"github.com/beetlebugorg/intertidal/pkg/intertidal"
)

// app is one session over the configured workspace.
type app struct {
	store   *store.Store
	db      *store.RegionDB
	view    *intertidal.ViewState
	session *intertidal.Session
}

// openApp loads the workspace, restores stored regions and starts a session.
func openApp(ctx context.Context) (*app, error) {
	m, err := store.ReadManifest(cfg.Workspace.Manifest)
	if err != nil {
		return nil, err
	}

	st, errs := store.Load(ctx, m, store.LoadOptions{
		Parallel:   true,
		SkipErrors: true,
		Progress: func(loaded, total int) {
			logger.Debug("loading collections", zap.Int("loaded", loaded), zap.Int("total", total))
		},
	})
	for _, err := range errs {
		logger.Warn("collection skipped", zap.Error(err))
	}

	db, err := store.OpenRegionDB(cfg.Workspace.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Restore(ctx, st); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("restore regions: %w", err)
	}
	if err := seedRegions(ctx, db, st); err != nil {
		_ = db.Close()
		return nil, err
	}
	st.SetPersister(db)

	view := intertidal.NewViewState(logger)
	source := &zonation.FileSource{
		Path:  cfg.Surface.Path,
		Cache: raster.NewSurfaceCache(cfg.Surface.CacheBytes),
	}

	opts := intertidal.Options{
		Collections:      cfg.Selection.Collections,
		DefaultField:     cfg.Selection.DefaultField,
		ReservedPrefix:   cfg.Selection.ReservedPrefix,
		TideMin:          cfg.Surface.Min,
		TideMax:          cfg.Surface.Max,
		IntertidalSource: cfg.Zonation.IntertidalSource,
		OutputTable:      cfg.Output.Table,
		HelpPath:         cfg.Help.Path,
		Display:          view,
		Logger:           logger,
		Progress: func(stage string, done, total int) {
			logger.Debug("zonation", zap.String("stage", stage), zap.Int("done", done), zap.Int("total", total))
		},
	}
	if openHelp != nil {
		opts.OpenHelp = openHelp
	}

	sess, err := intertidal.NewSession(st, st, source, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{store: st, db: db, view: view, session: sess}, nil
}

// seedRegions stores manifest regions missing from the database.
func seedRegions(ctx context.Context, db *store.RegionDB, st *store.Store) error {
	for _, name := range st.Regions() {
		r, ok := st.Region(name)
		if !ok {
			continue
		}
		_, stored, err := db.LoadRegion(ctx, name)
		if err != nil {
			return fmt.Errorf("look up region %s: %w", name, err)
		}
		if stored {
			continue
		}
		if err := db.SaveRegions(ctx, r); err != nil {
			return fmt.Errorf("store region %s: %w", name, err)
		}
	}
	return nil
}

// openHelp overrides the help opener; tests set it.
var openHelp func(path string) error

// Close ends the session and closes the region database.
func (a *app) Close() error {
	_ = a.session.Close()
	return a.db.Close()
}

// withApp runs fn against a fresh app.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
