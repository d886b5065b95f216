package document

import (
	"path"
	"strings"
	"time"

	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
)

// Document is the in-memory representation of a metis markdown document.
// All five variants share the core fields; variant-specific fields are only
// meaningful for the matching Type.
type Document struct {
	Type Type

	// Core frontmatter
	ID              string
	Title           string
	ShortCode       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Archived        bool
	ParentID        string
	BlockedBy       []string
	Tags            []Tag
	ExitCriteriaMet bool

	// Vision / Strategy
	Stakeholders []string

	// Strategy
	RiskLevel      RiskLevel
	SuccessMetrics []string

	// Initiative
	Complexity    Complexity
	TechnicalLead string

	// ADR
	Number        uint32
	DecisionMaker string
	DecisionDate  *time.Time

	// Body is the markdown content after the frontmatter block.
	Body string
}

// FromFile reads and parses a document from a markdown file. The filepath is
// used to infer the document type when the frontmatter omits `level`.
func FromFile(filePath string) (*Document, error) {
	content, err := files.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromContent(content, filePath)
}

// FromContent parses a document from raw file content. filePath may be empty;
// it is only consulted to infer the type when `level` is absent.
func FromContent(content, filePath string) (*Document, error) {
	block, body, err := SplitFrontmatter(content)
	if err != nil {
		return nil, err
	}
	raw, err := parseFrontmatter(block)
	if err != nil {
		return nil, err
	}

	docType, err := resolveType(raw.Level, filePath)
	if err != nil {
		return nil, err
	}

	createdAt, err := parseTimestamp("created_at", raw.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp("updated_at", raw.UpdatedAt)
	if err != nil {
		return nil, err
	}

	tags := make([]Tag, 0, len(raw.Tags))
	for _, t := range raw.Tags {
		tags = append(tags, Tag(t))
	}

	d := &Document{
		Type:            docType,
		ID:              raw.ID,
		Title:           raw.Title,
		ShortCode:       raw.ShortCode,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Archived:        raw.Archived,
		ParentID:        raw.Parent,
		BlockedBy:       raw.BlockedBy,
		Tags:            tags,
		ExitCriteriaMet: raw.ExitCriteriaMet,
		Stakeholders:    raw.Stakeholders,
		SuccessMetrics:  raw.SuccessMetrics,
		TechnicalLead:   raw.TechnicalLead,
		Number:          raw.Number,
		DecisionMaker:   raw.DecisionMaker,
		Body:            body,
	}

	if raw.RiskLevel != "" {
		d.RiskLevel = RiskLevel(strings.ToLower(raw.RiskLevel))
		if !IsValidRiskLevel(d.RiskLevel) {
			return nil, errors.ErrInvalidContent("invalid risk level " + raw.RiskLevel)
		}
	}
	if raw.Complexity != "" {
		d.Complexity = Complexity(strings.ToUpper(raw.Complexity))
		if !IsValidComplexity(d.Complexity) {
			return nil, errors.ErrInvalidContent("invalid complexity " + raw.Complexity)
		}
	}
	if raw.DecisionDate != "" {
		decided, err := parseTimestamp("decision_date", raw.DecisionDate)
		if err != nil {
			return nil, err
		}
		d.DecisionDate = &decided
	}

	return d, nil
}

// resolveType picks the document variant from the frontmatter level, falling
// back to the canonical workspace layout when level is absent.
func resolveType(level, filePath string) (Type, error) {
	if level != "" {
		return ParseType(level)
	}
	if t, ok := inferTypeFromPath(filePath); ok {
		return t, nil
	}
	return "", errors.ErrInvalidContent("cannot determine document type: no level field and unrecognized path " + filePath)
}

// inferTypeFromPath derives the variant from the canonical workspace layout.
func inferTypeFromPath(filePath string) (Type, bool) {
	if filePath == "" {
		return "", false
	}
	normalized := strings.ReplaceAll(filePath, "\\", "/")
	base := path.Base(normalized)
	dir := path.Dir(normalized)

	switch base {
	case "vision.md":
		return TypeVision, true
	case "strategy.md":
		return TypeStrategy, true
	case "initiative.md":
		return TypeInitiative, true
	}
	switch {
	case strings.Contains(normalized, "/adrs/") || path.Base(dir) == "adrs":
		return TypeADR, true
	case path.Base(dir) == "tasks":
		return TypeTask, true
	case strings.Contains(normalized, "/backlog/") || strings.HasPrefix(normalized, "backlog/"):
		return TypeTask, true
	}
	return "", false
}

// Content serializes the document back to markdown file content. For a
// document parsed from disk and left unchanged, the output round-trips
// deterministically.
func (d *Document) Content() (string, error) {
	frontmatter, err := emitFrontmatter(d)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	b.WriteString(frontmatter)
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	if d.Body != "" {
		b.WriteString("\n")
		b.WriteString(d.Body)
	}
	return b.String(), nil
}

// SaveToFile validates the document and writes it to path atomically.
func (d *Document) SaveToFile(filePath string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	content, err := d.Content()
	if err != nil {
		return err
	}
	return files.AtomicWriteFileString(filePath, content, 0644)
}

// Phase derives the current phase from the document's tags. A document with
// zero or more than one #phase/ tag is invalid.
func (d *Document) Phase() (Phase, error) {
	var found []Phase
	for _, t := range d.Tags {
		if t.IsPhase() {
			found = append(found, t.Phase())
		}
	}
	switch len(found) {
	case 0:
		return "", errors.ErrInvalidPhase("document has no #phase/ tag")
	case 1:
		return found[0], nil
	default:
		return "", errors.ErrInvalidPhase("document has multiple #phase/ tags")
	}
}

// SetPhase replaces the document's phase tag with the target phase,
// preserving the position of the existing tag in the tag list. A document
// with no phase tag gets one appended.
func (d *Document) SetPhase(p Phase) {
	for i, t := range d.Tags {
		if t.IsPhase() {
			d.Tags[i] = PhaseTag(p)
			return
		}
	}
	d.Tags = append(d.Tags, PhaseTag(p))
}

// CanTransitionTo returns true iff the transition from the document's
// current phase to target is valid for its type. A document with an invalid
// phase tag cannot transition anywhere.
func (d *Document) CanTransitionTo(target Phase) bool {
	current, err := d.Phase()
	if err != nil {
		return false
	}
	return d.Type.CanTransition(current, target)
}

// EvaluateExitCriteria reports the completion status of the document's
// Exit Criteria checklist.
func (d *Document) EvaluateExitCriteria() ExitCriteriaResult {
	return EvaluateExitCriteria(d.Body)
}

// Touch bumps the updated_at timestamp.
func (d *Document) Touch(now time.Time) {
	d.UpdatedAt = now.UTC()
}
