package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
)

func TestFlightLevelPresets(t *testing.T) {
	assert.Equal(t, PresetFull, FullFlightLevels().PresetName())
	assert.Equal(t, PresetStreamlined, StreamlinedFlightLevels().PresetName())
	assert.Equal(t, PresetDirect, DirectFlightLevels().PresetName())

	for _, name := range []string{PresetFull, PresetStreamlined, PresetDirect} {
		levels, err := ParsePreset(name)
		require.NoError(t, err)
		assert.Equal(t, name, levels.PresetName())
	}

	_, err := ParsePreset("bogus")
	assert.Error(t, err)
}

// Strategies without initiatives would leave a gap in the hierarchy.
func TestFlightLevelConstraint(t *testing.T) {
	_, err := NewFlightLevelConfig(true, false)
	assert.Error(t, err)

	levels, err := NewFlightLevelConfig(true, true)
	require.NoError(t, err)
	assert.NoError(t, levels.Validate())

	invalid := FlightLevelConfig{StrategiesEnabled: true, InitiativesEnabled: false}
	assert.Error(t, invalid.Validate())
}

func TestIsTypeAllowed(t *testing.T) {
	direct := DirectFlightLevels()
	assert.True(t, direct.IsTypeAllowed(document.TypeVision))
	assert.True(t, direct.IsTypeAllowed(document.TypeTask))
	assert.True(t, direct.IsTypeAllowed(document.TypeADR))
	assert.False(t, direct.IsTypeAllowed(document.TypeStrategy))
	assert.False(t, direct.IsTypeAllowed(document.TypeInitiative))

	streamlined := StreamlinedFlightLevels()
	assert.False(t, streamlined.IsTypeAllowed(document.TypeStrategy))
	assert.True(t, streamlined.IsTypeAllowed(document.TypeInitiative))
}

func TestParentType(t *testing.T) {
	full := FullFlightLevels()
	assert.Equal(t, document.TypeVision, full.ParentType(document.TypeStrategy))
	assert.Equal(t, document.TypeStrategy, full.ParentType(document.TypeInitiative))
	assert.Equal(t, document.TypeInitiative, full.ParentType(document.TypeTask))
	assert.Equal(t, document.Type(""), full.ParentType(document.TypeVision))
	assert.Equal(t, document.Type(""), full.ParentType(document.TypeADR))

	streamlined := StreamlinedFlightLevels()
	assert.Equal(t, document.TypeVision, streamlined.ParentType(document.TypeInitiative))
	assert.Equal(t, document.TypeInitiative, streamlined.ParentType(document.TypeTask))

	direct := DirectFlightLevels()
	assert.Equal(t, document.TypeVision, direct.ParentType(document.TypeTask))
}

func TestPrefixValidation(t *testing.T) {
	valid := []string{"ACME", "P2", "A1B2C3D4", "METIS"}
	for _, p := range valid {
		assert.True(t, IsValidPrefix(p), p)
	}
	invalid := []string{"", "A", "acme", "1ACME", "TOOLONGPRE", "AC ME", "AC-ME"}
	for _, p := range invalid {
		assert.False(t, IsValidPrefix(p), p)
	}
}

func TestStorePrefixAndLevels(t *testing.T) {
	store := NewStore(db.NewTestDB(t))

	prefix, err := store.ProjectPrefix()
	require.NoError(t, err)
	assert.Empty(t, prefix)

	require.NoError(t, store.SetProjectPrefix("ACME"))
	prefix, err = store.ProjectPrefix()
	require.NoError(t, err)
	assert.Equal(t, "ACME", prefix)

	assert.Error(t, store.SetProjectPrefix("bad prefix"))

	// Unset flight levels default to the full preset.
	levels, err := store.FlightLevels()
	require.NoError(t, err)
	assert.Equal(t, PresetFull, levels.PresetName())

	require.NoError(t, store.SetFlightLevels(StreamlinedFlightLevels()))
	levels, err = store.FlightLevels()
	require.NoError(t, err)
	assert.Equal(t, PresetStreamlined, levels.PresetName())
}

func TestStoreCounters(t *testing.T) {
	store := NewStore(db.NewTestDB(t))

	n, err := store.Counter(document.TypeTask)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)

	first, err := store.NextNumber(document.TypeTask)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), first)

	second, err := store.NextNumber(document.TypeTask)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), second)

	// Counters are independent per type.
	adr, err := store.NextNumber(document.TypeADR)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), adr)
}

func TestSetCounterIfLower(t *testing.T) {
	store := NewStore(db.NewTestDB(t))
	require.NoError(t, store.SetCounter(document.TypeTask, 5))

	raised, err := store.SetCounterIfLower(document.TypeTask, 3)
	require.NoError(t, err)
	assert.False(t, raised)

	raised, err = store.SetCounterIfLower(document.TypeTask, 9)
	require.NoError(t, err)
	assert.True(t, raised)

	n, err := store.Counter(document.TypeTask)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), n)
}

// The cache serves repeated reads and is invalidated by writes.
func TestStoreCacheInvalidation(t *testing.T) {
	database := db.NewTestDB(t)
	store := NewStore(database)

	require.NoError(t, store.SetProjectPrefix("ACME"))
	prefix, err := store.ProjectPrefix()
	require.NoError(t, err)
	assert.Equal(t, "ACME", prefix)

	require.NoError(t, store.SetProjectPrefix("OTHER"))
	prefix, err = store.ProjectPrefix()
	require.NoError(t, err)
	assert.Equal(t, "OTHER", prefix)
}

func TestTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, TOMLFileName)

	file := &File{
		Project:      ProjectSection{Name: "Acme", Prefix: "ACME"},
		FlightLevels: StreamlinedFlightLevels(),
		Sync: &SyncSection{
			UpstreamURL:      "git@github.com:acme/planning.git",
			LastSyncedCommit: "abc123",
		},
	}
	require.NoError(t, file.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, file, loaded)
}

func TestTOMLValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, TOMLFileName)

	bad := &File{Project: ProjectSection{Prefix: "not valid"}}
	assert.Error(t, bad.Save(path))

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
