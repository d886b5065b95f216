// Package config manages workspace configuration: the flight-level
// hierarchy, the project prefix, and the per-type short-code counters.
//
// The durable source of truth is .metis/config.toml; the configuration table
// in the index database caches it and additionally holds the counters. Sync
// reconciles TOML into the database on every run.
package config

import (
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
)

// FlightLevelConfig selects which hierarchy tiers are enabled.
type FlightLevelConfig struct {
	StrategiesEnabled  bool `json:"strategies_enabled" toml:"strategies_enabled"`
	InitiativesEnabled bool `json:"initiatives_enabled" toml:"initiatives_enabled"`
}

// Named flight-level presets.
const (
	PresetFull        = "full"
	PresetStreamlined = "streamlined"
	PresetDirect      = "direct"
)

// NullSegment is the literal directory name standing in for a disabled
// intermediate flight level, keeping the on-disk hierarchy uniform.
const NullSegment = "NULL"

// NewFlightLevelConfig validates and builds a configuration. Enabling
// strategies without initiatives would leave a gap in the hierarchy.
func NewFlightLevelConfig(strategiesEnabled, initiativesEnabled bool) (FlightLevelConfig, error) {
	if strategiesEnabled && !initiativesEnabled {
		return FlightLevelConfig{}, errors.ErrConfiguration(
			"cannot enable strategies without initiatives", nil)
	}
	return FlightLevelConfig{
		StrategiesEnabled:  strategiesEnabled,
		InitiativesEnabled: initiativesEnabled,
	}, nil
}

// FullFlightLevels returns the Vision → Strategy → Initiative → Task preset.
func FullFlightLevels() FlightLevelConfig {
	return FlightLevelConfig{StrategiesEnabled: true, InitiativesEnabled: true}
}

// StreamlinedFlightLevels returns the Vision → Initiative → Task preset.
func StreamlinedFlightLevels() FlightLevelConfig {
	return FlightLevelConfig{StrategiesEnabled: false, InitiativesEnabled: true}
}

// DirectFlightLevels returns the Vision → Task preset.
func DirectFlightLevels() FlightLevelConfig {
	return FlightLevelConfig{StrategiesEnabled: false, InitiativesEnabled: false}
}

// ParsePreset resolves a preset name to its configuration.
func ParsePreset(name string) (FlightLevelConfig, error) {
	switch name {
	case PresetFull:
		return FullFlightLevels(), nil
	case PresetStreamlined:
		return StreamlinedFlightLevels(), nil
	case PresetDirect:
		return DirectFlightLevels(), nil
	default:
		return FlightLevelConfig{}, errors.ErrConfiguration("unknown flight-level preset "+name, nil)
	}
}

// PresetName returns the named preset this configuration matches.
func (c FlightLevelConfig) PresetName() string {
	switch {
	case c.StrategiesEnabled && c.InitiativesEnabled:
		return PresetFull
	case c.InitiativesEnabled:
		return PresetStreamlined
	case !c.StrategiesEnabled:
		return PresetDirect
	default:
		return "invalid"
	}
}

// Validate reports whether the configuration honors the hierarchy constraint.
func (c FlightLevelConfig) Validate() error {
	if c.StrategiesEnabled && !c.InitiativesEnabled {
		return errors.ErrConfiguration("cannot enable strategies without initiatives", nil)
	}
	return nil
}

// IsTypeAllowed reports whether documents of the given type may be created
// under this configuration. Vision, Task, and ADR are always allowed.
func (c FlightLevelConfig) IsTypeAllowed(t document.Type) bool {
	switch t {
	case document.TypeStrategy:
		return c.StrategiesEnabled
	case document.TypeInitiative:
		return c.InitiativesEnabled
	default:
		return true
	}
}

// ParentType returns the parent document type for t under this
// configuration, or "" for root documents (Vision, ADR).
func (c FlightLevelConfig) ParentType(t document.Type) document.Type {
	switch t {
	case document.TypeStrategy:
		return document.TypeVision
	case document.TypeInitiative:
		if c.StrategiesEnabled {
			return document.TypeStrategy
		}
		return document.TypeVision
	case document.TypeTask:
		if c.InitiativesEnabled {
			return document.TypeInitiative
		}
		return document.TypeVision
	default:
		return ""
	}
}

// HierarchyDisplay renders the enabled hierarchy, e.g. "Vision → Task".
func (c FlightLevelConfig) HierarchyDisplay() string {
	display := "Vision"
	if c.StrategiesEnabled {
		display += " → Strategy"
	}
	if c.InitiativesEnabled {
		display += " → Initiative"
	}
	return display + " → Task"
}
