package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/document"
)

// initWorkspace initializes a workspace under a temp dir and returns a
// prepared service.
func initWorkspace(t *testing.T, preset string) *Service {
	t.Helper()
	base := t.TempDir()

	opts := InitOptions{
		BasePath:    base,
		ProjectName: "Acme",
		Prefix:      "ACME",
		Preset:      preset,
	}
	if preset == config.PresetFull {
		opts.UpstreamURL = "git@github.com:acme/planning.git"
	}
	_, err := Initialize(opts)
	require.NoError(t, err)

	svc, err := Prepare(base)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.DB().Close() })
	return svc
}

func TestInitializeCreatesArtifacts(t *testing.T) {
	base := t.TempDir()
	result, err := Initialize(InitOptions{
		BasePath: base, ProjectName: "Acme", Prefix: "ACME",
		Preset: config.PresetStreamlined,
	})
	require.NoError(t, err)

	assert.DirExists(t, result.MetisDir)
	assert.FileExists(t, result.ConfigPath)
	assert.FileExists(t, result.DatabasePath)
	assert.FileExists(t, result.VisionPath)

	vision, err := document.FromFile(result.VisionPath)
	require.NoError(t, err)
	assert.Equal(t, "Acme", vision.Title)
	assert.Equal(t, "ACME-V-0001", vision.ShortCode)
	phase, err := vision.Phase()
	require.NoError(t, err)
	assert.Equal(t, document.PhaseDraft, phase)
}

func TestInitializeFullPresetRequiresUpstream(t *testing.T) {
	_, err := Initialize(InitOptions{
		BasePath: t.TempDir(), ProjectName: "Acme", Prefix: "ACME",
		Preset: config.PresetFull,
	})
	assert.Error(t, err)
}

func TestInitializeRejectsBadPrefix(t *testing.T) {
	_, err := Initialize(InitOptions{
		BasePath: t.TempDir(), ProjectName: "Acme", Prefix: "bad",
		Preset: config.PresetDirect,
	})
	assert.Error(t, err)
}

// Re-initializing leaves the existing vision and database alone.
func TestInitializeIsIdempotent(t *testing.T) {
	base := t.TempDir()
	opts := InitOptions{
		BasePath: base, ProjectName: "Acme", Prefix: "ACME",
		Preset: config.PresetStreamlined,
	}
	first, err := Initialize(opts)
	require.NoError(t, err)

	edited := "---\nid: acme\nlevel: vision\ntitle: \"Edited\"\nshort_code: \"ACME-V-0001\"\n" +
		"created_at: 2025-01-01T00:00:00Z\nupdated_at: 2025-01-01T00:00:00Z\narchived: false\n" +
		"blocked_by: []\ntags:\n  - \"#vision\"\n  - \"#phase/draft\"\nexit_criteria_met: false\n---\n\n# Edited\n"
	require.NoError(t, os.WriteFile(first.VisionPath, []byte(edited), 0644))

	_, err = Initialize(opts)
	require.NoError(t, err)

	vision, err := document.FromFile(first.VisionPath)
	require.NoError(t, err)
	assert.Equal(t, "Edited", vision.Title)
}

func TestDetect(t *testing.T) {
	base := t.TempDir()
	_, err := Initialize(InitOptions{
		BasePath: base, ProjectName: "Acme", Prefix: "ACME",
		Preset: config.PresetDirect,
	})
	require.NoError(t, err)

	nested := filepath.Join(base, "deeply", "nested", "dir")
	require.NoError(t, os.MkdirAll(nested, 0755))

	root, err := Detect(nested)
	require.NoError(t, err)
	assert.Equal(t, base, root)

	outside, err := Detect(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, outside)

	assert.True(t, IsWorkspace(base))
	assert.False(t, IsWorkspace(t.TempDir()))
}

func TestPrepareRejectsNonWorkspace(t *testing.T) {
	_, err := Prepare(t.TempDir())
	assert.Error(t, err)
}

// Scenario: initialize with the full preset, then create the whole
// hierarchy; files land at canonical paths with sequential short codes.
func TestCreateHierarchyFullPreset(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)

	strategy, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeStrategy, Title: "Payments Hardening",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME-S-0001", strategy.ShortCode)
	assert.Equal(t, "strategies/payments-hardening/strategy.md", strategy.FilePath)

	initiative, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeInitiative, Title: "3DS v2", ParentID: "payments-hardening",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME-I-0001", initiative.ShortCode)
	assert.Equal(t, "strategies/payments-hardening/initiatives/3ds-v2/initiative.md", initiative.FilePath)

	task, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeTask, Title: "Feature flag", ParentID: "3ds-v2",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME-T-0001", task.ShortCode)
	assert.Equal(t, "strategies/payments-hardening/initiatives/3ds-v2/tasks/feature-flag.md", task.FilePath)

	// The index knows the whole chain.
	parent, err := svc.DB().FindParent("ACME-T-0001")
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, "ACME-I-0001", parent.ShortCode)

	children, err := svc.DB().FindChildren("ACME-S-0001")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "ACME-I-0001", children[0].ShortCode)
}

// Scenario: disabled types are refused; enabled children use the NULL
// placeholder for the disabled level.
func TestCreateConfigurationGate(t *testing.T) {
	svc := initWorkspace(t, config.PresetStreamlined)

	_, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeStrategy, Title: "Nope",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "streamlined")

	initiative, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeInitiative, Title: "Solo Initiative",
	})
	require.NoError(t, err)
	assert.Equal(t, "strategies/NULL/initiatives/solo-initiative/initiative.md", initiative.FilePath)

	// Its parent edge points at the vision.
	parent, err := svc.DB().FindParent(initiative.ShortCode)
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, "ACME-V-0001", parent.ShortCode)
}

func TestCreateTaskDirectPreset(t *testing.T) {
	svc := initWorkspace(t, config.PresetDirect)

	task, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeTask, Title: "Straight to work",
	})
	require.NoError(t, err)
	assert.Equal(t, "strategies/NULL/initiatives/NULL/tasks/straight-to-work.md", task.FilePath)
}

func TestCreateDuplicateFails(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)

	_, err := svc.CreateDocument(CreateConfig{Type: document.TypeStrategy, Title: "Twice"})
	require.NoError(t, err)
	_, err = svc.CreateDocument(CreateConfig{Type: document.TypeStrategy, Title: "Twice"})
	assert.Error(t, err)
}

func TestCreateBacklogTask(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)

	task, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeTask, Title: "Fix the leak", BacklogCategory: "bug",
	})
	require.NoError(t, err)
	assert.Equal(t, "backlog/bugs/fix-the-leak.md", task.FilePath)
	assert.Equal(t, "ACME-T-0001", task.ShortCode)

	parent, err := svc.DB().FindParent(task.ShortCode)
	require.NoError(t, err)
	assert.Nil(t, parent)

	_, err = svc.CreateDocument(CreateConfig{
		Type: document.TypeTask, Title: "Odd", BacklogCategory: "nonsense",
	})
	assert.Error(t, err)
}

func TestCreateADR(t *testing.T) {
	svc := initWorkspace(t, config.PresetDirect)

	adr, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeADR, Title: "Use SQLite", DecisionMaker: "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "adrs/001-use-sqlite.md", adr.FilePath)
	assert.Equal(t, "ACME-A-0001", adr.ShortCode)

	doc, err := document.FromFile(svc.absPath(adr.FilePath))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), doc.Number)
	assert.Equal(t, "Bob", doc.DecisionMaker)
}

func TestCreateStrategyRequiresVision(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)
	require.NoError(t, os.Remove(svc.absPath(VisionFileName)))
	_, err := svc.Sync()
	require.NoError(t, err)

	_, err = svc.CreateDocument(CreateConfig{Type: document.TypeStrategy, Title: "Orphan"})
	assert.Error(t, err)
}
