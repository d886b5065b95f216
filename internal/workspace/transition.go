package workspace

import (
	"time"

	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
)

// TransitionResult records a completed phase change.
type TransitionResult struct {
	DocumentID    string
	DocumentType  document.Type
	PreviousPhase document.Phase
	NewPhase      document.Phase
}

// TransitionPhase moves the document named by identifier (id or short code)
// to the target phase. The per-type state machine is always enforced; force
// bypasses only the exit-criteria gate.
func (s *Service) TransitionPhase(identifier string, target document.Phase, force bool) (*TransitionResult, error) {
	row, err := s.findRow(identifier)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.ErrDocumentNotFound(identifier)
	}

	absPath := s.absPath(row.Filepath)
	doc, err := document.FromFile(absPath)
	if err != nil {
		return nil, err
	}

	current, err := doc.Phase()
	if err != nil {
		return nil, err
	}

	if !doc.Type.CanTransition(current, target) {
		return nil, errors.ErrInvalidTransition(string(doc.Type), string(current), string(target))
	}

	criteria := doc.EvaluateExitCriteria()
	if !force && !criteria.Met {
		return nil, errors.ErrExitCriteriaNotMet(len(criteria.Missing), criteria.Total)
	}

	doc.SetPhase(target)
	doc.ExitCriteriaMet = criteria.Met
	if doc.Type == document.TypeTask && target == document.PhaseCompleted {
		doc.ExitCriteriaMet = true
	}
	doc.Touch(time.Now())

	if err := doc.SaveToFile(absPath); err != nil {
		return nil, err
	}
	if _, err := s.Sync(); err != nil {
		return nil, err
	}

	return &TransitionResult{
		DocumentID:    doc.ID,
		DocumentType:  doc.Type,
		PreviousPhase: current,
		NewPhase:      target,
	}, nil
}
