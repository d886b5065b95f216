package workspace

import (
	"time"

	"github.com/randalmurphal/metis/internal/document"
)

// UpdateBlockedBy replaces the blocked_by list of the document at the
// workspace-relative path and re-syncs the file. Blocked-by references may
// form semantic cycles; that is a modelling concern, not a storage error.
func (s *Service) UpdateBlockedBy(relPath string, blockedBy []string) error {
	doc, err := document.FromFile(s.absPath(relPath))
	if err != nil {
		return err
	}
	doc.BlockedBy = blockedBy
	doc.Touch(time.Now())
	if err := doc.SaveToFile(s.absPath(relPath)); err != nil {
		return err
	}
	_, err = s.engineSyncFile(relPath)
	return err
}

// UpdateExitCriterion checks or unchecks the named criterion in the
// document's Exit Criteria section, refreshing the frontmatter shadow field.
func (s *Service) UpdateExitCriterion(relPath, criterion string, completed bool) error {
	doc, err := document.FromFile(s.absPath(relPath))
	if err != nil {
		return err
	}

	body, err := document.SetExitCriterion(doc.Body, criterion, completed)
	if err != nil {
		return err
	}
	doc.Body = body
	doc.ExitCriteriaMet = doc.EvaluateExitCriteria().Met
	doc.Touch(time.Now())

	if err := doc.SaveToFile(s.absPath(relPath)); err != nil {
		return err
	}
	_, err = s.engineSyncFile(relPath)
	return err
}

// ValidationReport is the outcome of validating one document file.
type ValidationReport struct {
	Type    document.Type
	IsValid bool
	Errors  []string
}

// ValidateDocument parses and validates the document at the
// workspace-relative path, collecting every issue instead of aborting on
// the first.
func (s *Service) ValidateDocument(relPath string) *ValidationReport {
	doc, err := document.FromFile(s.absPath(relPath))
	if err != nil {
		return &ValidationReport{IsValid: false, Errors: []string{err.Error()}}
	}
	issues := doc.ValidationIssues()
	return &ValidationReport{
		Type:    doc.Type,
		IsValid: len(issues) == 0,
		Errors:  issues,
	}
}
