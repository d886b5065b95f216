package workspace

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
	"github.com/randalmurphal/metis/internal/shortcode"
)

// Backlog categories and their directory names.
var backlogCategories = map[string]string{
	"bug":       "bugs",
	"feature":   "features",
	"tech-debt": "tech-debt",
}

// BacklogCategoryDir resolves a backlog category name to its directory name.
func BacklogCategoryDir(category string) (string, bool) {
	dir, ok := backlogCategories[category]
	return dir, ok
}

// CreateConfig describes the document to create.
type CreateConfig struct {
	Type        document.Type
	Title       string
	Description string

	// ParentID names the parent by document id or short code. Ignored for
	// Vision and ADR, and for backlog tasks.
	ParentID string

	// Tags are free-form labels added between the type tag and phase tag.
	Tags []string

	// Phase overrides the type's initial phase when set.
	Phase document.Phase

	// Strategy
	RiskLevel      document.RiskLevel
	Stakeholders   []string
	SuccessMetrics []string

	// Initiative
	Complexity    document.Complexity
	TechnicalLead string

	// ADR
	DecisionMaker string

	// BacklogCategory places a Task directly in the backlog (bug, feature,
	// or tech-debt) with no parent edge.
	BacklogCategory string
}

// CreateResult identifies the created document.
type CreateResult struct {
	DocumentID string
	ShortCode  string
	FilePath   string
}

// CreateDocument creates a document of the configured type with correct
// parent linkage and on-disk placement, allocates its short code, writes the
// file, and syncs the index.
func (s *Service) CreateDocument(cfg CreateConfig) (*CreateResult, error) {
	if cfg.Title == "" {
		return nil, errors.ErrValidationFailed("title must not be empty")
	}

	levels, err := s.cfg.FlightLevels()
	if err != nil {
		return nil, err
	}
	if !levels.IsTypeAllowed(cfg.Type) {
		return nil, errors.ErrValidationFailed(fmt.Sprintf(
			"%s documents are disabled by the %s flight-level preset",
			cfg.Type, levels.PresetName()))
	}

	id := document.ToSlug(cfg.Title)
	if id == "" {
		return nil, errors.ErrValidationFailed("title must contain at least one alphanumeric character")
	}

	prefix, err := s.cfg.ProjectPrefix()
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return nil, errors.ErrConfiguration("workspace has no project prefix", nil)
	}

	parentRow, err := s.resolveParent(cfg, levels)
	if err != nil {
		return nil, err
	}

	number, err := s.cfg.NextNumber(cfg.Type)
	if err != nil {
		return nil, err
	}
	code := shortcode.Format(prefix, cfg.Type, number)

	relPath, err := s.destinationPath(cfg, id, number, parentRow, levels)
	if err != nil {
		return nil, err
	}
	if files.Exists(s.absPath(relPath)) {
		return nil, errors.ErrDocumentExists(relPath)
	}

	phase := cfg.Type.InitialPhase()
	if cfg.Phase != "" {
		if !cfg.Type.IsValidPhase(cfg.Phase) {
			return nil, errors.ErrValidationFailed(fmt.Sprintf(
				"phase %q is not valid for %s documents", cfg.Phase, cfg.Type))
		}
		phase = cfg.Phase
	}

	doc, err := s.buildDocument(cfg, id, code, number, phase, parentRow)
	if err != nil {
		return nil, err
	}
	if err := doc.SaveToFile(s.absPath(relPath)); err != nil {
		return nil, err
	}

	if _, err := s.Sync(); err != nil {
		return nil, err
	}

	if parentRow != nil {
		rel := &db.Relationship{
			ParentShortCode: parentRow.ShortCode,
			ChildShortCode:  code,
			ParentFilepath:  parentRow.Filepath,
			ChildFilepath:   relPath,
		}
		if err := s.db.CreateRelationship(rel); err != nil {
			return nil, err
		}
	}

	return &CreateResult{DocumentID: id, ShortCode: code, FilePath: relPath}, nil
}

// resolveParent finds the parent row required for the configured type under
// the current flight levels. Returns nil for root documents, backlog tasks,
// and children whose parent level is disabled and absorbed into the vision.
func (s *Service) resolveParent(cfg CreateConfig, levels config.FlightLevelConfig) (*db.Row, error) {
	switch cfg.Type {
	case document.TypeVision, document.TypeADR:
		return nil, nil
	case document.TypeStrategy:
		return s.requireVision()
	case document.TypeInitiative:
		if !levels.StrategiesEnabled {
			return s.requireVision()
		}
		return s.requireParentOfType(cfg.ParentID, document.TypeStrategy)
	case document.TypeTask:
		if cfg.BacklogCategory != "" {
			return nil, nil
		}
		if !levels.InitiativesEnabled {
			return s.requireVision()
		}
		return s.requireParentOfType(cfg.ParentID, document.TypeInitiative)
	default:
		return nil, errors.ErrValidationFailed(fmt.Sprintf("unknown document type %q", cfg.Type))
	}
}

// requireVision returns the indexed vision row; the vision file must exist.
func (s *Service) requireVision() (*db.Row, error) {
	if !files.Exists(s.absPath(VisionFileName)) {
		return nil, errors.ErrDocumentNotFound(VisionFileName)
	}
	row, err := s.db.FindByFilepath(VisionFileName)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.ErrDocumentNotFound(VisionFileName)
	}
	return row, nil
}

// requireParentOfType resolves identifier to an indexed row of the wanted
// parent type.
func (s *Service) requireParentOfType(identifier string, want document.Type) (*db.Row, error) {
	if identifier == "" {
		return nil, errors.ErrValidationFailed(string(want) + " parent is required")
	}
	return s.requireRowOfType(identifier, want)
}

// findRow looks a document up by id, then by short code.
func (s *Service) findRow(identifier string) (*db.Row, error) {
	row, err := s.db.FindByID(identifier)
	if err != nil || row != nil {
		return row, err
	}
	return s.db.FindByShortCode(identifier)
}

// destinationPath computes the canonical workspace-relative path for the new
// document.
func (s *Service) destinationPath(cfg CreateConfig, id string, number uint32, parentRow *db.Row, levels config.FlightLevelConfig) (string, error) {
	switch cfg.Type {
	case document.TypeVision:
		return VisionFileName, nil
	case document.TypeStrategy:
		return path.Join(StrategiesDirName, id, "strategy.md"), nil
	case document.TypeInitiative:
		segment := config.NullSegment
		if levels.StrategiesEnabled && parentRow != nil {
			segment = path.Base(path.Dir(parentRow.Filepath))
		}
		return path.Join(StrategiesDirName, segment, InitiativesDirName, id, "initiative.md"), nil
	case document.TypeTask:
		if cfg.BacklogCategory != "" {
			dir, ok := BacklogCategoryDir(cfg.BacklogCategory)
			if !ok {
				return "", errors.ErrValidationFailed("unknown backlog category " + cfg.BacklogCategory)
			}
			return path.Join(BacklogDirName, dir, id+".md"), nil
		}
		if !levels.InitiativesEnabled {
			return path.Join(StrategiesDirName, config.NullSegment,
				InitiativesDirName, config.NullSegment, TasksDirName, id+".md"), nil
		}
		// The strategy segment is carried by the initiative's directory.
		initiativeDir := path.Dir(parentRow.Filepath)
		return path.Join(initiativeDir, TasksDirName, id+".md"), nil
	case document.TypeADR:
		return path.Join(ADRsDirName, fmt.Sprintf("%03d-%s.md", number, id)), nil
	default:
		return "", errors.ErrValidationFailed(fmt.Sprintf("unknown document type %q", cfg.Type))
	}
}

// buildDocument assembles the typed document with defaults applied.
func (s *Service) buildDocument(cfg CreateConfig, id, code string, number uint32, phase document.Phase, parentRow *db.Row) (*document.Document, error) {
	body, err := document.RenderBody(cfg.Type, cfg.Title, cfg.Description)
	if err != nil {
		return nil, err
	}

	tags := []document.Tag{document.TypeTag(cfg.Type)}
	for _, t := range cfg.Tags {
		tags = append(tags, document.Tag(t))
	}
	tags = append(tags, document.PhaseTag(phase))

	now := time.Now().UTC()
	doc := &document.Document{
		Type:      cfg.Type,
		ID:        id,
		Title:     cfg.Title,
		ShortCode: code,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      tags,
		Body:      body,
	}
	if parentRow != nil {
		doc.ParentID = parentRow.ID
	}

	switch cfg.Type {
	case document.TypeVision:
		doc.Stakeholders = cfg.Stakeholders
	case document.TypeStrategy:
		doc.RiskLevel = cfg.RiskLevel
		if doc.RiskLevel == "" {
			doc.RiskLevel = document.RiskMedium
		}
		doc.Stakeholders = cfg.Stakeholders
		if len(doc.Stakeholders) == 0 {
			doc.Stakeholders = []string{"Team"}
		}
		doc.SuccessMetrics = cfg.SuccessMetrics
		if len(doc.SuccessMetrics) == 0 {
			doc.SuccessMetrics = []string{"To be defined"}
		}
	case document.TypeInitiative:
		doc.Complexity = cfg.Complexity
		if doc.Complexity == "" {
			doc.Complexity = document.ComplexityM
		}
		doc.TechnicalLead = cfg.TechnicalLead
	case document.TypeADR:
		doc.Number = number
		doc.DecisionMaker = cfg.DecisionMaker
		if doc.DecisionMaker == "" {
			doc.DecisionMaker = defaultDecisionMaker()
		}
	}

	return doc, nil
}

// defaultDecisionMaker falls back to the invoking user for ADRs created
// without an explicit decision maker.
func defaultDecisionMaker() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}
