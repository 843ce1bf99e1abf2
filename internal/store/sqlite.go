// Package store materializes converted chart layers into SQLite tables.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/woozymasta/chartconv/internal/geo"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// reTable guards identifiers interpolated into DDL.
var reTable = regexp.MustCompile(`^[a-z0-9_]+$`)

// Store is a SQLite database holding one table per layer.
type Store struct {
	db   *sql.DB
	path string
}

// Row is one materialized feature.
type Row struct {
	ID       int64
	Name     string
	Geometry string
}

// Open opens or creates the database file, creating its directory.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0775); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceLayer recreates the table and inserts one row per feature holding
// its name and geometry JSON. The whole replacement is one transaction, so
// a failure leaves the previous contents in place.
func (s *Store) ReplaceLayer(table string, features []*geojson.Feature) (err error) {
	if !reTable.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, table),
		fmt.Sprintf(`CREATE TABLE "%s" (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, geometry TEXT)`, table),
	} {
		if _, err = tx.Exec(q); err != nil {
			return fmt.Errorf("recreate %s: %w", table, err)
		}
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO "%s" (name, geometry) VALUES (?1, ?2)`, table))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}

		var g []byte
		if g, err = geo.MarshalGeometry(f.Geometry); err != nil {
			return fmt.Errorf("encode geometry: %w", err)
		}
		if _, err = stmt.Exec(geo.FeatureName(f), string(g)); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	log.Debug().
		Str("table", table).
		Int("rows", inserted).
		Str("db", s.path).
		Msg("Layer table replaced")

	return nil
}

// Rows returns the rows of a layer table in id order.
func (s *Store) Rows(table string) ([]Row, error) {
	if !reTable.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	rows, err := s.db.Query(fmt.Sprintf(`SELECT id, name, geometry FROM "%s" ORDER BY id`, table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var r Row
		var name, geometry sql.NullString
		if err := rows.Scan(&r.ID, &name, &geometry); err != nil {
			return nil, err
		}
		r.Name, r.Geometry = name.String, geometry.String
		out = append(out, r)
	}

	return out, rows.Err()
}

// Tables lists the user tables in name order.
func (s *Store) Tables() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}

	return out, rows.Err()
}
