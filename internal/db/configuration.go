package db

import (
	"database/sql"

	"github.com/randalmurphal/metis/internal/errors"
)

// GetConfig returns the configuration value for key. ok is false when the
// key has never been set.
func (d *DB) GetConfig(key string) (value string, ok bool, err error) {
	row := d.db.QueryRow("SELECT value FROM configuration WHERE key = ?", key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, errors.ErrDatabase("get configuration", err)
	}
	return value, true, nil
}

// AllConfig returns the whole configuration table.
func (d *DB) AllConfig() (map[string]string, error) {
	rows, err := d.db.Query("SELECT key, value FROM configuration")
	if err != nil {
		return nil, errors.ErrDatabase("load configuration", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.ErrDatabase("scan configuration", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabase("iterate configuration", err)
	}
	return out, nil
}

// SetConfig inserts or replaces the configuration value for key.
func (d *DB) SetConfig(key, value string) error {
	if _, err := d.db.Exec(`
		INSERT INTO configuration (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		return errors.ErrDatabase("set configuration", err)
	}
	return nil
}
