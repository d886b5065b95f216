package config

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
)

// TOMLFileName is the durable configuration file inside .metis/.
const TOMLFileName = "config.toml"

// File mirrors .metis/config.toml, the durable source of truth for the
// project prefix and flight levels. The optional [sync] section is carried
// for the external git sync fabric and round-trips untouched.
type File struct {
	Project      ProjectSection    `toml:"project"`
	FlightLevels FlightLevelConfig `toml:"flight_levels"`
	Sync         *SyncSection      `toml:"sync,omitempty"`
}

// ProjectSection holds project identity.
type ProjectSection struct {
	Name   string `toml:"name,omitempty"`
	Prefix string `toml:"prefix"`
}

// SyncSection configures the external git sync fabric.
type SyncSection struct {
	UpstreamURL      string `toml:"upstream_url"`
	LastSyncedCommit string `toml:"last_synced_commit,omitempty"`
}

// LoadFile reads and validates .metis/config.toml from path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrFileNotFound(path)
		}
		return nil, errors.ErrIo("read", path, err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.ErrConfiguration("cannot parse "+path, err)
	}
	if !IsValidPrefix(f.Project.Prefix) {
		return nil, errors.ErrInvalidPrefix(f.Project.Prefix)
	}
	if err := f.FlightLevels.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Save writes the config file atomically.
func (f *File) Save(path string) error {
	if !IsValidPrefix(f.Project.Prefix) {
		return errors.ErrInvalidPrefix(f.Project.Prefix)
	}
	if err := f.FlightLevels.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return errors.ErrConfiguration("cannot serialize config.toml", err)
	}
	return files.AtomicWriteFile(path, buf.Bytes(), 0644)
}
