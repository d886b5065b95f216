package config

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
)

// Configuration keys in the index database.
const (
	KeyProjectPrefix = "project_prefix"
	KeyFlightLevels  = "flight_levels"
	counterKeyPrefix = "counter:"
)

// prefixPattern constrains project prefixes: uppercase token, 2-8 chars,
// starting with a letter.
var prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,7}$`)

// IsValidPrefix reports whether prefix is a legal project prefix.
func IsValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// Store reads and writes workspace configuration through the index database,
// with a lazily loaded in-memory cache invalidated on every write.
type Store struct {
	db    *db.DB
	cache map[string]string
}

// NewStore creates a configuration store over an open index database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// get reads a key through the cache, loading the whole table on first read.
func (s *Store) get(key string) (string, bool, error) {
	if s.cache == nil {
		loaded, err := s.db.AllConfig()
		if err != nil {
			return "", false, err
		}
		s.cache = loaded
	}
	value, ok := s.cache[key]
	return value, ok, nil
}

// set writes a key and invalidates the cache.
func (s *Store) set(key, value string) error {
	if err := s.db.SetConfig(key, value); err != nil {
		return err
	}
	s.cache = nil
	return nil
}

// ProjectPrefix returns the workspace short-code prefix, or "" when unset.
func (s *Store) ProjectPrefix() (string, error) {
	value, _, err := s.get(KeyProjectPrefix)
	return value, err
}

// SetProjectPrefix validates and stores the workspace prefix.
func (s *Store) SetProjectPrefix(prefix string) error {
	if !IsValidPrefix(prefix) {
		return errors.ErrInvalidPrefix(prefix)
	}
	return s.set(KeyProjectPrefix, prefix)
}

// FlightLevels returns the flight-level configuration, defaulting to the
// full preset when unset.
func (s *Store) FlightLevels() (FlightLevelConfig, error) {
	value, ok, err := s.get(KeyFlightLevels)
	if err != nil {
		return FlightLevelConfig{}, err
	}
	if !ok {
		return FullFlightLevels(), nil
	}
	var cfg FlightLevelConfig
	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		return FlightLevelConfig{}, errors.ErrConfiguration("stored flight_levels is not valid JSON", err)
	}
	if err := cfg.Validate(); err != nil {
		return FlightLevelConfig{}, err
	}
	return cfg, nil
}

// SetFlightLevels validates and stores the flight-level configuration.
func (s *Store) SetFlightLevels(cfg FlightLevelConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	value, err := json.Marshal(cfg)
	if err != nil {
		return errors.ErrConfiguration("cannot serialize flight_levels", err)
	}
	return s.set(KeyFlightLevels, string(value))
}

// Counter returns the current short-code counter for a document type.
// Unset counters read as zero.
func (s *Store) Counter(t document.Type) (uint32, error) {
	value, ok, err := s.get(counterKeyPrefix + t.Letter())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errors.ErrConfiguration("stored counter for "+t.Letter()+" is not a number", err)
	}
	return uint32(n), nil
}

// SetCounter stores the short-code counter for a document type.
func (s *Store) SetCounter(t document.Type, value uint32) error {
	return s.set(counterKeyPrefix+t.Letter(), strconv.FormatUint(uint64(value), 10))
}

// SetCounterIfLower raises the counter for t to value iff value exceeds the
// current counter. Used by counter recovery so future allocations can never
// re-use an observed code.
func (s *Store) SetCounterIfLower(t document.Type, value uint32) (raised bool, err error) {
	current, err := s.Counter(t)
	if err != nil {
		return false, err
	}
	if value <= current {
		return false, nil
	}
	return true, s.SetCounter(t, value)
}

// NextNumber advances the counter for t and returns the allocated number.
func (s *Store) NextNumber(t document.Type) (uint32, error) {
	current, err := s.Counter(t)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := s.SetCounter(t, next); err != nil {
		return 0, err
	}
	return next, nil
}
