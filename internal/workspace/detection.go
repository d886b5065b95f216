package workspace

import (
	"os"
	"path/filepath"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
)

// Detect walks upward from startPath searching for the nearest directory
// containing .metis/. It returns that directory (the workspace root), or
// "" when no workspace exists anywhere above startPath.
func Detect(startPath string) (string, error) {
	current, err := filepath.Abs(startPath)
	if err != nil {
		return "", errors.ErrIo("resolve", startPath, err)
	}
	for {
		candidate := filepath.Join(current, MetisDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// IsWorkspace reports whether root contains a .metis directory.
func IsWorkspace(root string) bool {
	info, err := os.Stat(filepath.Join(root, MetisDirName))
	return err == nil && info.IsDir()
}

// ResolveMetisDir auto-corrects a path to the .metis directory it denotes:
// a path that already is a .metis dir passes through; a project root
// containing .metis/config.toml descends into it.
func ResolveMetisDir(path string) string {
	if filepath.Base(path) == MetisDirName {
		return path
	}
	nested := filepath.Join(path, MetisDirName)
	if files.Exists(filepath.Join(nested, config.TOMLFileName)) {
		return nested
	}
	return path
}

// Prepare opens the workspace at path (a .metis dir or a project root),
// ensures the index exists, runs sync, and returns a ready service. Callers
// own closing the service's database.
func Prepare(path string) (*Service, error) {
	metisDir := ResolveMetisDir(path)

	info, err := os.Stat(metisDir)
	if err != nil || !info.IsDir() {
		return nil, errors.ErrInvalidWorkspace(path)
	}

	dbPath := filepath.Join(metisDir, db.FileName)
	missing := !files.Exists(dbPath)
	if missing && !files.Exists(filepath.Join(metisDir, config.TOMLFileName)) {
		return nil, errors.ErrInvalidWorkspace(path)
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	svc := NewService(metisDir, database)
	if _, err := svc.Sync(); err != nil {
		database.Close()
		return nil, err
	}
	return svc, nil
}

// Recover rebuilds a missing index from config.toml plus the filesystem.
// It fails when both the database and config.toml are absent.
func Recover(metisDir string) (*Service, error) {
	dbPath := filepath.Join(metisDir, db.FileName)
	tomlPath := filepath.Join(metisDir, config.TOMLFileName)

	if !files.Exists(dbPath) && !files.Exists(tomlPath) {
		return nil, errors.ErrInvalidWorkspace(metisDir)
	}
	return Prepare(metisDir)
}
