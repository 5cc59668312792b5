package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/beetlebugorg/intertidal/internal/geom"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// RegionDB persists regions in SQLite. It implements RegionPersister.
type RegionDB struct {
	db *sql.DB
}

// OpenRegionDB opens (or creates) the region database at path and applies
// pending migrations.
func OpenRegionDB(path string) (*RegionDB, error) {
	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate region db: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open region db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &RegionDB{db: db}, nil
}

// runMigrations applies all up migrations on a dedicated connection.
// Closing the migrator closes the connection it was given.
func runMigrations(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		_ = db.Close()
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Close closes the database.
func (r *RegionDB) Close() error {
	return r.db.Close()
}

// SaveRegions replaces the named regions in a single transaction.
func (r *RegionDB) SaveRegions(ctx context.Context, regions ...*geom.Region) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, reg := range regions {
		if err := deleteRegionTx(ctx, tx, reg.Name); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO regions (name, kind, tide_height, generation, created_at) VALUES (?, ?, ?, ?, ?)`,
			reg.Name, reg.Kind, reg.TideHeight, reg.Generation, reg.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert region %s: %w", reg.Name, err)
		}
		for seq, ring := range reg.Rings {
			data, err := json.Marshal(ring)
			if err != nil {
				return fmt.Errorf("encode region %s ring %d: %w", reg.Name, seq, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO region_polygons (region_name, seq, ring) VALUES (?, ?, ?)`,
				reg.Name, seq, string(data))
			if err != nil {
				return fmt.Errorf("insert region %s ring %d: %w", reg.Name, seq, err)
			}
		}
	}
	return tx.Commit()
}

// DeleteRegion removes a region and its polygons.
func (r *RegionDB) DeleteRegion(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteRegionTx(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteRegionTx(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM region_polygons WHERE region_name = ?`, name); err != nil {
		return fmt.Errorf("delete region %s polygons: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM regions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete region %s: %w", name, err)
	}
	return nil
}

// LoadRegion reads one region. ok is false when it does not exist.
func (r *RegionDB) LoadRegion(ctx context.Context, name string) (reg *geom.Region, ok bool, err error) {
	var (
		kind, generation, created string
		tide                      float64
	)
	err = r.db.QueryRowContext(ctx,
		`SELECT kind, tide_height, generation, created_at FROM regions WHERE name = ?`, name).
		Scan(&kind, &tide, &generation, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load region %s: %w", name, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ring FROM region_polygons WHERE region_name = ? ORDER BY seq`, name)
	if err != nil {
		return nil, false, fmt.Errorf("load region %s polygons: %w", name, err)
	}
	defer rows.Close()

	var rings []geom.Ring
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, false, err
		}
		var ring geom.Ring
		if err := json.Unmarshal([]byte(data), &ring); err != nil {
			return nil, false, fmt.Errorf("decode region %s ring: %w", name, err)
		}
		rings = append(rings, ring)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	reg = geom.NewRegion(name, kind, rings)
	reg.TideHeight = tide
	reg.Generation = generation
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		reg.CreatedAt = t
	}
	return reg, true, nil
}

// ListRegions returns stored region names, sorted.
func (r *RegionDB) ListRegions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM regions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Restore installs every stored region into st without writing back.
func (r *RegionDB) Restore(ctx context.Context, st *Store) error {
	names, err := r.ListRegions(ctx)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, name := range names {
		reg, ok, err := r.LoadRegion(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			st.regions[name] = reg
		}
	}
	return nil
}
