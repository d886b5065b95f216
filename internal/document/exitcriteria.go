package document

import (
	"strings"

	"github.com/randalmurphal/metis/internal/errors"
)

// exitCriteriaHeading is the H2 section holding the completion checklist.
const exitCriteriaHeading = "## Exit Criteria"

// ExitCriterion is a single checklist item from the Exit Criteria section.
type ExitCriterion struct {
	Text      string
	Completed bool
}

// ExitCriteriaResult reports the completion status of a document's checklist.
type ExitCriteriaResult struct {
	Met       bool
	Total     int
	Completed int
	Missing   []string
}

// EvaluateExitCriteria parses the Exit Criteria section of a markdown body.
// A document with no section (or an empty one) reports Met, vacuously.
func EvaluateExitCriteria(body string) ExitCriteriaResult {
	criteria := ParseExitCriteria(body)
	result := ExitCriteriaResult{Met: true, Total: len(criteria)}
	for _, c := range criteria {
		if c.Completed {
			result.Completed++
		} else {
			result.Missing = append(result.Missing, c.Text)
		}
	}
	result.Met = len(result.Missing) == 0
	return result
}

// ParseExitCriteria extracts checklist items from the Exit Criteria section.
// The section runs from its heading to the next H2 (or end of document).
func ParseExitCriteria(body string) []ExitCriterion {
	var criteria []ExitCriterion
	inSection := false

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, exitCriteriaHeading) {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(trimmed, "##") {
			break
		}
		if !inSection {
			continue
		}
		if c, ok := parseCheckboxLine(trimmed); ok {
			criteria = append(criteria, c)
		}
	}
	return criteria
}

// parseCheckboxLine parses a GFM checkbox line of the form "- [ ] text" or
// "- [x] text" (case-insensitive x).
func parseCheckboxLine(line string) (ExitCriterion, bool) {
	if text, ok := strings.CutPrefix(line, "- [ ]"); ok {
		return ExitCriterion{Text: strings.TrimSpace(text)}, true
	}
	if text, ok := strings.CutPrefix(line, "- [x]"); ok {
		return ExitCriterion{Text: strings.TrimSpace(text), Completed: true}, true
	}
	if text, ok := strings.CutPrefix(line, "- [X]"); ok {
		return ExitCriterion{Text: strings.TrimSpace(text), Completed: true}, true
	}
	return ExitCriterion{}, false
}

// SetExitCriterion rewrites the checkbox matching criterion (by exact text)
// in the body, returning the updated body. The match is against the
// criterion text after the checkbox marker.
func SetExitCriterion(body, criterion string, completed bool) (string, error) {
	lines := strings.Split(body, "\n")
	inSection := false
	found := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, exitCriteriaHeading) {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(trimmed, "##") {
			break
		}
		if !inSection {
			continue
		}
		c, ok := parseCheckboxLine(trimmed)
		if !ok || c.Text != criterion {
			continue
		}

		marker := "- [ ]"
		if completed {
			marker = "- [x]"
		}
		indent := line[:strings.Index(line, "-")]
		lines[i] = indent + marker + " " + c.Text
		found = true
		break
	}

	if !found {
		return "", errors.ErrInvalidContent("exit criterion not found: " + criterion)
	}
	return strings.Join(lines, "\n"), nil
}
