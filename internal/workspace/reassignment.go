package workspace

import (
	"path"

	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
)

// ReassignmentResult records a completed task move.
type ReassignmentResult struct {
	ShortCode string
	OldPath   string
	NewPath   string
	NewParent string
}

// ReassignToInitiative moves a task under a different initiative. The target
// initiative must be in the decompose or active phase.
func (s *Service) ReassignToInitiative(taskShortCode, newParentShortCode string) (*ReassignmentResult, error) {
	task, err := s.requireRowOfType(taskShortCode, document.TypeTask)
	if err != nil {
		return nil, err
	}
	parent, err := s.requireRowOfType(newParentShortCode, document.TypeInitiative)
	if err != nil {
		return nil, err
	}

	phase := document.Phase(parent.Phase)
	if phase != document.PhaseDecompose && phase != document.PhaseActive {
		return nil, errors.ErrValidationFailed(
			"target initiative must be in the decompose or active phase, is " + parent.Phase)
	}

	newPath := path.Join(path.Dir(parent.Filepath), TasksDirName, path.Base(task.Filepath))
	if err := s.moveTask(task.Filepath, newPath); err != nil {
		return nil, err
	}

	return &ReassignmentResult{
		ShortCode: task.ShortCode,
		OldPath:   task.Filepath,
		NewPath:   newPath,
		NewParent: parent.ShortCode,
	}, nil
}

// ReassignToBacklog moves a task into the backlog under the given category
// (bug, feature, or tech-debt), detaching it from any initiative.
func (s *Service) ReassignToBacklog(taskShortCode, category string) (*ReassignmentResult, error) {
	task, err := s.requireRowOfType(taskShortCode, document.TypeTask)
	if err != nil {
		return nil, err
	}
	dir, ok := BacklogCategoryDir(category)
	if !ok {
		return nil, errors.ErrValidationFailed("unknown backlog category " + category)
	}

	newPath := path.Join(BacklogDirName, dir, path.Base(task.Filepath))
	if err := s.moveTask(task.Filepath, newPath); err != nil {
		return nil, err
	}

	return &ReassignmentResult{
		ShortCode: task.ShortCode,
		OldPath:   task.Filepath,
		NewPath:   newPath,
	}, nil
}

// moveTask relocates the file and reconciles the index.
func (s *Service) moveTask(oldPath, newPath string) error {
	if newPath == oldPath {
		return errors.ErrValidationFailed("task is already at " + newPath)
	}
	if files.Exists(s.absPath(newPath)) {
		return errors.ErrDocumentExists(newPath)
	}
	if err := files.MoveFile(s.absPath(oldPath), s.absPath(newPath)); err != nil {
		return err
	}
	_, err := s.Sync()
	return err
}

// requireRowOfType resolves identifier to an indexed row and checks its type.
func (s *Service) requireRowOfType(identifier string, want document.Type) (*db.Row, error) {
	row, err := s.findRow(identifier)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.ErrDocumentNotFound(identifier)
	}
	if row.DocumentType != string(want) {
		return nil, errors.ErrValidationFailed(
			identifier + " is a " + row.DocumentType + ", expected a " + string(want))
	}
	return row, nil
}
