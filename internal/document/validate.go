package document

import (
	"fmt"

	"github.com/randalmurphal/metis/internal/errors"
)

// Validate checks the per-variant rules. It returns the first violation.
func (d *Document) Validate() error {
	issues := d.ValidationIssues()
	if len(issues) == 0 {
		return nil
	}
	return errors.ErrValidationFailed(issues[0])
}

// ValidationIssues collects every per-variant rule violation without
// aborting, for validation reporting front-ends.
func (d *Document) ValidationIssues() []string {
	var issues []string

	if !IsValidType(d.Type) {
		return []string{fmt.Sprintf("unknown document type %q", d.Type)}
	}
	if d.Title == "" {
		issues = append(issues, "title must not be empty")
	}

	phaseCount := 0
	for _, t := range d.Tags {
		if t.IsPhase() {
			phaseCount++
			if !d.Type.IsValidPhase(t.Phase()) {
				issues = append(issues, fmt.Sprintf("phase %q is not valid for %s documents", t.Phase(), d.Type))
			}
		}
	}
	switch phaseCount {
	case 0:
		issues = append(issues, "document has no #phase/ tag")
	case 1:
	default:
		issues = append(issues, "document has multiple #phase/ tags")
	}

	switch d.Type {
	case TypeStrategy:
		if len(d.Stakeholders) == 0 {
			issues = append(issues, "strategy requires at least one stakeholder")
		}
		if len(d.SuccessMetrics) == 0 {
			issues = append(issues, "strategy requires at least one success metric")
		}
		if !IsValidRiskLevel(d.RiskLevel) {
			issues = append(issues, fmt.Sprintf("invalid risk level %q", d.RiskLevel))
		}
	case TypeInitiative:
		if !IsValidComplexity(d.Complexity) {
			issues = append(issues, fmt.Sprintf("invalid complexity %q", d.Complexity))
		}
	case TypeADR:
		if d.DecisionMaker == "" {
			issues = append(issues, "adr requires a decision maker")
		}
		if d.Number == 0 {
			issues = append(issues, "adr number must be greater than zero")
		}
	}

	return issues
}
