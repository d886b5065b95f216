// Package workspace owns the lifecycle of a metis workspace and the services
// that mutate it: document creation, phase transitions, task reassignment,
// archival, and recovery.
//
// A workspace is a directory containing a .metis/ subdirectory with the
// durable config, the markdown corpus, and the derived index database.
package workspace

import (
	"path/filepath"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/sync"
)

const (
	// MetisDirName is the workspace marker directory.
	MetisDirName = ".metis"

	// VisionFileName is the root vision document inside .metis/.
	VisionFileName = "vision.md"

	// StrategiesDirName holds the strategy subtrees.
	StrategiesDirName = "strategies"

	// InitiativesDirName nests under a strategy directory.
	InitiativesDirName = "initiatives"

	// TasksDirName nests under an initiative directory.
	TasksDirName = "tasks"

	// ADRsDirName holds architectural decision records.
	ADRsDirName = "adrs"

	// BacklogDirName holds parentless tasks by category.
	BacklogDirName = "backlog"

	// ArchivedDirName mirrors the workspace layout for archived documents.
	ArchivedDirName = "archived"
)

// Service bundles the open index and sync engine for one workspace.
type Service struct {
	metisDir string
	db       *db.DB
	cfg      *config.Store
	engine   *sync.Engine
}

// NewService creates a service over an open index for the .metis directory.
func NewService(metisDir string, database *db.DB) *Service {
	return &Service{
		metisDir: metisDir,
		db:       database,
		cfg:      config.NewStore(database),
		engine:   sync.New(metisDir, database),
	}
}

// MetisDir returns the workspace's .metis directory.
func (s *Service) MetisDir() string {
	return s.metisDir
}

// DB returns the open index database.
func (s *Service) DB() *db.DB {
	return s.db
}

// Config returns the configuration store.
func (s *Service) Config() *config.Store {
	return s.cfg
}

// Sync runs a full reconciliation pass over the workspace.
func (s *Service) Sync() ([]sync.Result, error) {
	return s.engine.SyncDirectory()
}

// engineSyncFile reconciles one workspace-relative path with the index.
func (s *Service) engineSyncFile(relPath string) (sync.Result, error) {
	return s.engine.SyncFile(relPath)
}

// absPath resolves a workspace-relative path to an absolute one.
func (s *Service) absPath(relPath string) string {
	return filepath.Join(s.metisDir, filepath.FromSlash(relPath))
}
