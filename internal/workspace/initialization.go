package workspace

import (
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
	"github.com/randalmurphal/metis/internal/shortcode"
)

// InitOptions configures workspace initialization.
type InitOptions struct {
	BasePath    string
	ProjectName string
	Prefix      string
	Preset      string
	UpstreamURL string
}

// InitResult reports the artifacts created by initialization.
type InitResult struct {
	WorkspaceRoot string
	MetisDir      string
	ConfigPath    string
	DatabasePath  string
	VisionPath    string
}

// Initialize creates a workspace under opts.BasePath: the .metis directory,
// an empty schema-migrated index, config.toml, and a default vision
// document. Re-initializing is idempotent — an existing database or vision
// is left alone.
func Initialize(opts InitOptions) (*InitResult, error) {
	if !config.IsValidPrefix(opts.Prefix) {
		return nil, errors.ErrInvalidPrefix(opts.Prefix)
	}
	levels, err := config.ParsePreset(opts.Preset)
	if err != nil {
		return nil, err
	}
	// The full preset spans multiple writers, so the git sync fabric must be
	// configured up front.
	if opts.Preset == config.PresetFull && opts.UpstreamURL == "" {
		return nil, errors.ErrConfiguration("the full preset requires an upstream URL", nil)
	}

	metisDir := filepath.Join(opts.BasePath, MetisDirName)
	for _, dir := range []string{metisDir, filepath.Join(metisDir, StrategiesDirName)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.ErrIo("create directory", dir, err)
		}
	}

	dbPath := filepath.Join(metisDir, db.FileName)
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	tomlPath := filepath.Join(metisDir, config.TOMLFileName)
	if !files.Exists(tomlPath) {
		file := &config.File{
			Project:      config.ProjectSection{Name: opts.ProjectName, Prefix: opts.Prefix},
			FlightLevels: levels,
		}
		if opts.UpstreamURL != "" {
			file.Sync = &config.SyncSection{UpstreamURL: opts.UpstreamURL}
		}
		if err := file.Save(tomlPath); err != nil {
			return nil, err
		}
	}

	store := config.NewStore(database)
	if err := store.SetProjectPrefix(opts.Prefix); err != nil {
		return nil, err
	}
	if err := store.SetFlightLevels(levels); err != nil {
		return nil, err
	}

	visionPath := filepath.Join(metisDir, VisionFileName)
	if !files.Exists(visionPath) {
		if err := writeDefaultVision(store, visionPath, opts.ProjectName); err != nil {
			return nil, err
		}
	}

	svc := NewService(metisDir, database)
	if _, err := svc.Sync(); err != nil {
		return nil, err
	}

	return &InitResult{
		WorkspaceRoot: opts.BasePath,
		MetisDir:      metisDir,
		ConfigPath:    tomlPath,
		DatabasePath:  dbPath,
		VisionPath:    visionPath,
	}, nil
}

// writeDefaultVision renders the vision document for a fresh workspace.
func writeDefaultVision(store *config.Store, visionPath, projectName string) error {
	prefix, err := store.ProjectPrefix()
	if err != nil {
		return err
	}
	number, err := store.NextNumber(document.TypeVision)
	if err != nil {
		return err
	}

	body, err := document.RenderBody(document.TypeVision, projectName, "")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	vision := &document.Document{
		Type:      document.TypeVision,
		ID:        document.ToSlug(projectName),
		Title:     projectName,
		ShortCode: shortcode.Format(prefix, document.TypeVision, number),
		CreatedAt: now,
		UpdatedAt: now,
		Tags: []document.Tag{
			document.TypeTag(document.TypeVision),
			document.PhaseTag(document.TypeVision.InitialPhase()),
		},
		Body: body,
	}
	return vision.SaveToFile(visionPath)
}
