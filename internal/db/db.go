// Package db provides the SQLite index for metis workspaces.
//
// The index lives at .metis/metis.db and holds one row per markdown document,
// the parent/child edges between them, and the workspace configuration. It is
// fully derivable from the files on disk; the sync engine rebuilds it.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/randalmurphal/metis/internal/errors"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// FileName is the index database file name inside .metis/.
const FileName = "metis.db"

// DB wraps the SQLite index connection.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the index database at the given path, creating the parent
// directory and applying schema migrations as needed.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.ErrIo("create directory for", path, err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.ErrDatabase("open", err)
	}

	// The core is single-threaded cooperative; one connection keeps every
	// operation on a consistent snapshot.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
	`); err != nil {
		sqlDB.Close()
		return nil, errors.ErrDatabase("set pragmas", err)
	}

	d := &DB{db: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// OpenInMemory opens a fresh in-memory index, used by tests.
func OpenInMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.ErrDatabase("open", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{db: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// migrate applies all pending schema migrations. Schema files are named
// index_NNN.sql and applied in order.
func (d *DB) migrate() error {
	if _, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT DEFAULT (datetime('now'))
		)
	`); err != nil {
		return errors.ErrDatabase("create migrations table", err)
	}

	applied := make(map[int]bool)
	rows, err := d.db.Query("SELECT version FROM _migrations")
	if err != nil {
		return errors.ErrDatabase("query migrations", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return errors.ErrDatabase("scan migration version", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return errors.ErrDatabase("iterate migrations", err)
	}

	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return errors.ErrDatabase("read schema dir", err)
	}
	var migrations []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "index_") && strings.HasSuffix(e.Name(), ".sql") {
			migrations = append(migrations, e.Name())
		}
	}
	sort.Strings(migrations)

	for _, name := range migrations {
		version := extractVersion(name)
		if applied[version] {
			continue
		}

		content, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			return errors.ErrDatabase("read migration "+name, err)
		}

		tx, err := d.db.Begin()
		if err != nil {
			return errors.ErrDatabase("begin transaction", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return errors.ErrDatabase("apply migration "+name, err)
		}
		if _, err := tx.Exec("INSERT INTO _migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return errors.ErrDatabase("record migration "+name, err)
		}
		if err := tx.Commit(); err != nil {
			return errors.ErrDatabase("commit migration "+name, err)
		}
	}

	return nil
}

// extractVersion extracts the version number from a migration filename,
// e.g. "index_001.sql" returns 1.
func extractVersion(name string) int {
	s := strings.TrimPrefix(name, "index_")
	s = strings.TrimSuffix(s, ".sql")
	var v int
	fmt.Sscanf(s, "%d", &v)
	return v
}
