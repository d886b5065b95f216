package db

import "github.com/randalmurphal/metis/internal/errors"

// Relationship is one parent/child edge between documents.
type Relationship struct {
	ParentShortCode string
	ChildShortCode  string
	ParentFilepath  string
	ChildFilepath   string
}

// CreateRelationship records a parent/child edge. Idempotent: re-creating an
// existing edge refreshes its filepaths.
func (d *DB) CreateRelationship(rel *Relationship) error {
	_, err := d.db.Exec(`
		INSERT INTO document_relationships
			(parent_short_code, child_short_code, parent_filepath, child_filepath)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(parent_short_code, child_short_code) DO UPDATE SET
			parent_filepath = excluded.parent_filepath,
			child_filepath = excluded.child_filepath`,
		rel.ParentShortCode, rel.ChildShortCode, rel.ParentFilepath, rel.ChildFilepath)
	if err != nil {
		return errors.ErrDatabase("create relationship", err)
	}
	return nil
}

// DeleteRelationshipsFor removes every edge touching the given short code,
// as parent or child.
func (d *DB) DeleteRelationshipsFor(shortCode string) error {
	_, err := d.db.Exec(`
		DELETE FROM document_relationships
		WHERE parent_short_code = ? OR child_short_code = ?`, shortCode, shortCode)
	if err != nil {
		return errors.ErrDatabase("delete relationships", err)
	}
	return nil
}

// ClearRelationships removes every edge. Sync rebuilds the edge table from
// the directory hierarchy, which is authoritative.
func (d *DB) ClearRelationships() error {
	if _, err := d.db.Exec("DELETE FROM document_relationships"); err != nil {
		return errors.ErrDatabase("clear relationships", err)
	}
	return nil
}

// FindChildren returns the rows whose parent edge points at the given
// short code, in insertion order.
func (d *DB) FindChildren(parentShortCode string) ([]*Row, error) {
	return d.queryMany(`
		SELECT d.filepath, d.id, d.short_code, d.document_type, d.phase, d.title,
		       d.created_at, d.updated_at, d.archived, d.exit_criteria_met,
		       d.content_hash, d.frontmatter_json, d.body
		FROM document_relationships r
		JOIN documents d ON d.short_code = r.child_short_code
		WHERE r.parent_short_code = ?
		ORDER BY d.rowid`, parentShortCode)
}

// FindParent returns the row the given child's parent edge points at, or nil.
func (d *DB) FindParent(childShortCode string) (*Row, error) {
	return d.queryOne(`
		SELECT d.filepath, d.id, d.short_code, d.document_type, d.phase, d.title,
		       d.created_at, d.updated_at, d.archived, d.exit_criteria_met,
		       d.content_hash, d.frontmatter_json, d.body
		FROM document_relationships r
		JOIN documents d ON d.short_code = r.parent_short_code
		WHERE r.child_short_code = ?`, childShortCode)
}
