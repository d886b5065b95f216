package db

import (
	"database/sql"
	"time"

	"github.com/randalmurphal/metis/internal/errors"
)

// Row is one indexed document. Filepath is the workspace-relative path and
// the primary key; identity across moves follows id + short_code.
type Row struct {
	Filepath        string
	ID              string
	ShortCode       string
	DocumentType    string
	Phase           string
	Title           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Archived        bool
	ExitCriteriaMet bool
	ContentHash     string
	FrontmatterJSON string
	Body            string
}

const rowColumns = `filepath, id, short_code, document_type, phase, title,
	created_at, updated_at, archived, exit_criteria_met, content_hash,
	frontmatter_json, body`

// Upsert inserts or replaces a document row keyed by filepath.
func (d *DB) Upsert(row *Row) error {
	_, err := d.db.Exec(`
		INSERT INTO documents (`+rowColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filepath) DO UPDATE SET
			id = excluded.id,
			short_code = excluded.short_code,
			document_type = excluded.document_type,
			phase = excluded.phase,
			title = excluded.title,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			archived = excluded.archived,
			exit_criteria_met = excluded.exit_criteria_met,
			content_hash = excluded.content_hash,
			frontmatter_json = excluded.frontmatter_json,
			body = excluded.body`,
		row.Filepath, row.ID, row.ShortCode, row.DocumentType, row.Phase,
		row.Title, row.CreatedAt.UTC().Format(time.RFC3339),
		row.UpdatedAt.UTC().Format(time.RFC3339),
		boolToInt(row.Archived), boolToInt(row.ExitCriteriaMet),
		row.ContentHash, row.FrontmatterJSON, row.Body)
	if err != nil {
		return errors.ErrDatabase("upsert document", err)
	}
	return nil
}

// Delete removes the row at filepath. Returns whether a row was removed.
func (d *DB) Delete(filepath string) (bool, error) {
	res, err := d.db.Exec("DELETE FROM documents WHERE filepath = ?", filepath)
	if err != nil {
		return false, errors.ErrDatabase("delete document", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.ErrDatabase("delete document", err)
	}
	return n > 0, nil
}

// UpdateFilepath rewrites a row's filepath in place, preserving identity.
// Used when sync detects a moved file.
func (d *DB) UpdateFilepath(oldPath, newPath string) error {
	if _, err := d.db.Exec(
		"UPDATE documents SET filepath = ? WHERE filepath = ?", newPath, oldPath); err != nil {
		return errors.ErrDatabase("update filepath", err)
	}
	return nil
}

// FindByFilepath returns the row at filepath, or nil.
func (d *DB) FindByFilepath(filepath string) (*Row, error) {
	return d.queryOne("SELECT "+rowColumns+" FROM documents WHERE filepath = ?", filepath)
}

// FindByID returns the row with the given document id, or nil.
func (d *DB) FindByID(id string) (*Row, error) {
	return d.queryOne("SELECT "+rowColumns+" FROM documents WHERE id = ? ORDER BY rowid LIMIT 1", id)
}

// FindByShortCode returns the row with the given short code, or nil.
func (d *DB) FindByShortCode(code string) (*Row, error) {
	return d.queryOne("SELECT "+rowColumns+" FROM documents WHERE short_code = ? ORDER BY rowid LIMIT 1", code)
}

// FindByType returns all rows of a document type in insertion order.
func (d *DB) FindByType(docType string) ([]*Row, error) {
	return d.queryMany("SELECT "+rowColumns+" FROM documents WHERE document_type = ? ORDER BY rowid", docType)
}

// FindByPhase returns all rows in a phase in insertion order.
func (d *DB) FindByPhase(phase string) ([]*Row, error) {
	return d.queryMany("SELECT "+rowColumns+" FROM documents WHERE phase = ? ORDER BY rowid", phase)
}

// FindByTypeAndPhase returns all rows of a type in a phase in insertion order.
func (d *DB) FindByTypeAndPhase(docType, phase string) ([]*Row, error) {
	return d.queryMany(
		"SELECT "+rowColumns+" FROM documents WHERE document_type = ? AND phase = ? ORDER BY rowid",
		docType, phase)
}

// AllDocuments returns every row in insertion order.
func (d *DB) AllDocuments() ([]*Row, error) {
	return d.queryMany("SELECT " + rowColumns + " FROM documents ORDER BY rowid")
}

// Search returns rows ranked by full-text match over title and body.
func (d *DB) Search(query string) ([]*Row, error) {
	return d.queryMany(`
		SELECT d.filepath, d.id, d.short_code, d.document_type, d.phase, d.title,
		       d.created_at, d.updated_at, d.archived, d.exit_criteria_met,
		       d.content_hash, d.frontmatter_json, d.body
		FROM documents_fts f
		JOIN documents d ON d.rowid = f.rowid
		WHERE documents_fts MATCH ?
		ORDER BY f.rank`, query)
}

// CountByTypeAndPhase returns document counts grouped by type and phase,
// feeding the status front-end.
func (d *DB) CountByTypeAndPhase() (map[string]map[string]int, error) {
	rows, err := d.db.Query(`
		SELECT document_type, phase, COUNT(*)
		FROM documents
		GROUP BY document_type, phase`)
	if err != nil {
		return nil, errors.ErrDatabase("count documents", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var docType, phase string
		var n int
		if err := rows.Scan(&docType, &phase, &n); err != nil {
			return nil, errors.ErrDatabase("scan counts", err)
		}
		if counts[docType] == nil {
			counts[docType] = make(map[string]int)
		}
		counts[docType][phase] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabase("iterate counts", err)
	}
	return counts, nil
}

func (d *DB) queryOne(query string, args ...any) (*Row, error) {
	row := d.db.QueryRow(query, args...)
	r, err := scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabase("query document", err)
	}
	return r, nil
}

func (d *DB) queryMany(query string, args ...any) ([]*Row, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.ErrDatabase("query documents", err)
	}
	defer rows.Close()

	var out []*Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, errors.ErrDatabase("scan document", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabase("iterate documents", err)
	}
	return out, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRow.
type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*Row, error) {
	var r Row
	var createdAt, updatedAt string
	var archived, exitMet int
	if err := s.Scan(&r.Filepath, &r.ID, &r.ShortCode, &r.DocumentType,
		&r.Phase, &r.Title, &createdAt, &updatedAt, &archived, &exitMet,
		&r.ContentHash, &r.FrontmatterJSON, &r.Body); err != nil {
		return nil, err
	}
	r.Archived = archived != 0
	r.ExitCriteriaMet = exitMet != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		r.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		r.UpdatedAt = t
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
