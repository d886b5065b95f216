package sync

import (
	"encoding/json"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/files"
)

// Engine reconciles one workspace directory (the .metis dir) with its index.
type Engine struct {
	workspaceDir string
	db           *db.DB
	cfg          *config.Store
}

// New creates a sync engine for the workspace directory.
func New(workspaceDir string, database *db.DB) *Engine {
	return &Engine{
		workspaceDir: workspaceDir,
		db:           database,
		cfg:          config.NewStore(database),
	}
}

// SyncDirectory runs a full reconciliation pass and returns the complete
// result list. Per-file failures are embedded as Error results; the run
// itself only fails on storage-level errors.
func (e *Engine) SyncDirectory() ([]Result, error) {
	// Other writers advance counters through their own stores between runs;
	// a fresh store keeps this run from trusting a stale cache.
	e.cfg = config.NewStore(e.db)

	var results []Result

	if err := e.syncConfig(); err != nil {
		return nil, err
	}

	observed, classified, err := e.classifyFiles()
	if err != nil {
		return nil, err
	}
	results = append(results, classified...)

	orphans, err := e.resolveOrphans(observed, &results)
	if err != nil {
		return nil, err
	}
	results = append(results, orphans...)

	if err := e.rebuildRelationships(); err != nil {
		return nil, err
	}

	renumbered, err := e.resolveCollisions()
	if err != nil {
		return nil, err
	}
	results = append(results, renumbered...)

	if err := e.recoverCounters(); err != nil {
		return nil, err
	}

	return results, nil
}

// syncConfig reconciles config.toml into the database (phase S1). When the
// TOML is missing but the database holds configuration, the TOML is written
// back out — the migration path for workspaces created before config.toml.
func (e *Engine) syncConfig() error {
	tomlPath := filepath.Join(e.workspaceDir, config.TOMLFileName)

	if !files.Exists(tomlPath) {
		prefix, err := e.cfg.ProjectPrefix()
		if err != nil {
			return err
		}
		if prefix == "" {
			return nil
		}
		levels, err := e.cfg.FlightLevels()
		if err != nil {
			return err
		}
		slog.Warn("config.toml missing, writing from database", "path", tomlPath)
		file := &config.File{
			Project:      config.ProjectSection{Prefix: prefix},
			FlightLevels: levels,
		}
		return file.Save(tomlPath)
	}

	file, err := config.LoadFile(tomlPath)
	if err != nil {
		return err
	}

	dbPrefix, err := e.cfg.ProjectPrefix()
	if err != nil {
		return err
	}
	if dbPrefix != file.Project.Prefix {
		if err := e.cfg.SetProjectPrefix(file.Project.Prefix); err != nil {
			return err
		}
	}

	dbLevels, err := e.cfg.FlightLevels()
	if err != nil {
		return err
	}
	if dbLevels != file.FlightLevels {
		if err := e.cfg.SetFlightLevels(file.FlightLevels); err != nil {
			return err
		}
	}
	return nil
}

// classifyFiles scans the workspace (phase S2) and classifies every markdown
// file against the index (phase S3). Returns the set of observed filepaths
// for the orphan pass.
func (e *Engine) classifyFiles() (map[string]bool, []Result, error) {
	paths, err := files.ListMarkdown(e.workspaceDir)
	if err != nil {
		return nil, nil, err
	}

	observed := make(map[string]bool, len(paths))
	var results []Result
	for _, relPath := range paths {
		observed[relPath] = true
		results = append(results, e.classifyFile(relPath))
	}
	return observed, results, nil
}

// classifyFile reconciles a single file with its index row.
func (e *Engine) classifyFile(relPath string) Result {
	content, err := files.ReadFile(filepath.Join(e.workspaceDir, filepath.FromSlash(relPath)))
	if err != nil {
		return Result{Kind: ResultError, Filepath: relPath, Err: err}
	}
	hash := files.HashString(content)

	existing, err := e.db.FindByFilepath(relPath)
	if err != nil {
		return Result{Kind: ResultError, Filepath: relPath, Err: err}
	}
	if existing != nil && existing.ContentHash == hash {
		return Result{Kind: ResultUpToDate, Filepath: relPath}
	}

	row, err := e.buildRow(relPath, content, hash)
	if err != nil {
		return Result{Kind: ResultError, Filepath: relPath, Err: err}
	}
	if err := e.db.Upsert(row); err != nil {
		return Result{Kind: ResultError, Filepath: relPath, Err: err}
	}

	if existing == nil {
		return Result{Kind: ResultImported, Filepath: relPath}
	}
	return Result{Kind: ResultUpdated, Filepath: relPath}
}

// SyncFile reconciles one workspace-relative path, for callers that touched
// a single document. A missing file reports NotFound and drops any stale row.
func (e *Engine) SyncFile(relPath string) (Result, error) {
	if !files.Exists(filepath.Join(e.workspaceDir, filepath.FromSlash(relPath))) {
		if _, err := e.db.Delete(relPath); err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultNotFound, Filepath: relPath}, nil
	}
	return e.classifyFile(relPath), nil
}

// buildRow parses a document and projects it onto an index row.
func (e *Engine) buildRow(relPath, content, hash string) (*db.Row, error) {
	doc, err := document.FromContent(content, relPath)
	if err != nil {
		return nil, err
	}
	phase, err := doc.Phase()
	if err != nil {
		return nil, err
	}

	fmJSON, err := frontmatterJSON(doc)
	if err != nil {
		return nil, err
	}

	return &db.Row{
		Filepath:        relPath,
		ID:              doc.ID,
		ShortCode:       doc.ShortCode,
		DocumentType:    string(doc.Type),
		Phase:           string(phase),
		Title:           doc.Title,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
		Archived:        doc.Archived,
		ExitCriteriaMet: doc.EvaluateExitCriteria().Met,
		ContentHash:     hash,
		FrontmatterJSON: fmJSON,
		Body:            doc.Body,
	}, nil
}

// frontmatterJSON serializes the parsed frontmatter for row reconstruction.
func frontmatterJSON(doc *document.Document) (string, error) {
	fields := map[string]any{
		"id":                doc.ID,
		"level":             string(doc.Type),
		"title":             doc.Title,
		"short_code":        doc.ShortCode,
		"created_at":        doc.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":        doc.UpdatedAt.UTC().Format(time.RFC3339),
		"archived":          doc.Archived,
		"parent":            doc.ParentID,
		"blocked_by":        doc.BlockedBy,
		"tags":              doc.Tags,
		"exit_criteria_met": doc.ExitCriteriaMet,
	}
	switch doc.Type {
	case document.TypeVision:
		fields["stakeholders"] = doc.Stakeholders
	case document.TypeStrategy:
		fields["risk_level"] = string(doc.RiskLevel)
		fields["stakeholders"] = doc.Stakeholders
		fields["success_metrics"] = doc.SuccessMetrics
	case document.TypeInitiative:
		fields["complexity"] = string(doc.Complexity)
		fields["technical_lead"] = doc.TechnicalLead
	case document.TypeADR:
		fields["number"] = doc.Number
		fields["decision_maker"] = doc.DecisionMaker
		if doc.DecisionDate != nil {
			fields["decision_date"] = doc.DecisionDate.UTC().Format(time.RFC3339)
		}
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// resolveOrphans deletes rows whose files vanished (phase S4). A row whose
// id and short_code reappeared at a new filepath is a move: the new row is
// already indexed, so the stale one is dropped and the Imported result is
// rewritten as Moved.
func (e *Engine) resolveOrphans(observed map[string]bool, results *[]Result) ([]Result, error) {
	rows, err := e.db.AllDocuments()
	if err != nil {
		return nil, err
	}

	// Identity of every document observed on disk this run.
	identity := make(map[string]string) // id + "\x00" + short_code -> filepath
	for _, row := range rows {
		if observed[row.Filepath] {
			identity[row.ID+"\x00"+row.ShortCode] = row.Filepath
		}
	}

	var orphanResults []Result
	for _, row := range rows {
		if observed[row.Filepath] {
			continue
		}
		if _, err := e.db.Delete(row.Filepath); err != nil {
			return nil, err
		}

		newPath, moved := identity[row.ID+"\x00"+row.ShortCode]
		if !moved {
			orphanResults = append(orphanResults, Result{Kind: ResultDeleted, Filepath: row.Filepath})
			continue
		}

		// Rewrite the new path's Imported result as a Moved.
		for i := range *results {
			r := &(*results)[i]
			if r.Kind == ResultImported && r.Filepath == newPath {
				*r = Result{Kind: ResultMoved, Filepath: newPath, FromPath: row.Filepath, ToPath: newPath}
				break
			}
		}
	}
	return orphanResults, nil
}

// rebuildRelationships derives parent/child edges from the directory
// hierarchy, which is authoritative for parent derivation on sync.
func (e *Engine) rebuildRelationships() error {
	rows, err := e.db.AllDocuments()
	if err != nil {
		return err
	}
	byPath := make(map[string]*db.Row, len(rows))
	for _, row := range rows {
		byPath[row.Filepath] = row
	}

	if err := e.db.ClearRelationships(); err != nil {
		return err
	}
	for _, row := range rows {
		parentPath, ok := parentPathFor(row.Filepath)
		if !ok {
			continue
		}
		parent, exists := byPath[parentPath]
		if !exists {
			continue
		}
		rel := &db.Relationship{
			ParentShortCode: parent.ShortCode,
			ChildShortCode:  row.ShortCode,
			ParentFilepath:  parent.Filepath,
			ChildFilepath:   row.Filepath,
		}
		if err := e.db.CreateRelationship(rel); err != nil {
			return err
		}
	}
	return nil
}

// parentPathFor maps a document's workspace-relative path to its parent
// document's path under the canonical layout. NULL placeholder segments
// fall through to the vision.
func parentPathFor(relPath string) (string, bool) {
	dir := path.Dir(relPath)
	base := path.Base(relPath)

	switch {
	case relPath == "vision.md":
		return "", false
	case base == "strategy.md":
		return "vision.md", true
	case base == "initiative.md":
		// strategies/<slug>/initiatives/<slug>/initiative.md
		strategyDir := path.Dir(path.Dir(dir))
		if path.Base(strategyDir) == config.NullSegment {
			return "vision.md", true
		}
		return strategyDir + "/strategy.md", true
	case path.Base(dir) == "tasks":
		initiativeDir := path.Dir(dir)
		if path.Base(initiativeDir) == config.NullSegment {
			return "vision.md", true
		}
		return initiativeDir + "/initiative.md", true
	default:
		// ADRs and backlog items have no parent edge.
		return "", false
	}
}

// recoverCounters raises each type's counter to the maximum numeric suffix
// observed on disk (phase S6), so allocation never re-issues a code.
func (e *Engine) recoverCounters() error {
	maxima, err := e.observedMaxima()
	if err != nil {
		return err
	}
	for docType, maxNumber := range maxima {
		raised, err := e.cfg.SetCounterIfLower(docType, maxNumber)
		if err != nil {
			return err
		}
		if raised {
			slog.Debug("recovered short-code counter", "type", docType, "value", maxNumber)
		}
	}
	return nil
}
