package workspace

import (
	"path"
	"strings"
	"time"

	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
)

// ArchiveResult records an archival: every moved file, old path to new path.
type ArchiveResult struct {
	ShortCode string
	Moved     map[string]string
}

// Archive moves the document named by identifier — and, for strategies and
// initiatives, its whole subtree — under archived/, preserving the relative
// layout, and marks every moved document archived.
func (s *Service) Archive(identifier string) (*ArchiveResult, error) {
	row, err := s.findRow(identifier)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.ErrDocumentNotFound(identifier)
	}
	if row.Filepath == VisionFileName {
		return nil, errors.ErrValidationFailed("the vision document cannot be archived")
	}
	if strings.HasPrefix(row.Filepath, ArchivedDirName+"/") {
		return nil, errors.ErrValidationFailed(identifier + " is already archived")
	}

	members, err := s.subtreeMembers(row)
	if err != nil {
		return nil, err
	}

	result := &ArchiveResult{ShortCode: row.ShortCode, Moved: make(map[string]string)}
	for _, member := range members {
		newPath := path.Join(ArchivedDirName, member)
		if files.Exists(s.absPath(newPath)) {
			return nil, errors.ErrDocumentExists(newPath)
		}
		if err := files.MoveFile(s.absPath(member), s.absPath(newPath)); err != nil {
			return nil, err
		}
		if err := s.markArchived(newPath); err != nil {
			return nil, err
		}
		result.Moved[member] = newPath
	}

	if _, err := s.Sync(); err != nil {
		return nil, err
	}
	return result, nil
}

// subtreeMembers lists the workspace-relative paths belonging to the
// document's subtree: the file itself plus, for container documents, every
// markdown file under its directory.
func (s *Service) subtreeMembers(row *db.Row) ([]string, error) {
	dir := path.Dir(row.Filepath)
	base := path.Base(row.Filepath)
	if base != "strategy.md" && base != "initiative.md" {
		return []string{row.Filepath}, nil
	}

	all, err := files.ListMarkdown(s.metisDir)
	if err != nil {
		return nil, err
	}
	var members []string
	for _, p := range all {
		if p == row.Filepath || strings.HasPrefix(p, dir+"/") {
			members = append(members, p)
		}
	}
	return members, nil
}

// markArchived flips the archived flag in a moved file's frontmatter.
func (s *Service) markArchived(relPath string) error {
	doc, err := document.FromFile(s.absPath(relPath))
	if err != nil {
		return err
	}
	if doc.Archived {
		return nil
	}
	doc.Archived = true
	doc.Touch(time.Now())
	return doc.SaveToFile(s.absPath(relPath))
}
