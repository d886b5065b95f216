package sync

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/document"
)

// Two developers on separate branches allocate the same task code; after the
// merge, sync renumbers exactly one of them.
func TestCollisionResolutionAfterMerge(t *testing.T) {
	engine, metisDir, database := newTestEngine(t, config.StreamlinedFlightLevels())

	devA := fixtureDoc(document.TypeTask, "dev-a-task", "Developer A Task", "TEST-T-0001")
	devB := fixtureDoc(document.TypeTask, "dev-b-task", "Developer B Task", "TEST-T-0001")
	writeDoc(t, metisDir, "strategies/NULL/initiatives/I-0001/tasks/T-0001.md", devA)
	writeDoc(t, metisDir, "strategies/NULL/initiatives/I-0002/tasks/T-0001.md", devB)

	results, err := engine.SyncDirectory()
	require.NoError(t, err)

	var renumbered []Result
	for _, r := range results {
		if r.Kind == ResultRenumbered {
			renumbered = append(renumbered, r)
		}
	}
	require.Len(t, renumbered, 1, "exactly one document renumbered")

	// Equal depth: the lexicographically smaller path keeps the code.
	assert.Equal(t, "strategies/NULL/initiatives/I-0002/tasks/T-0001.md", renumbered[0].Filepath)
	assert.Equal(t, "TEST-T-0001", renumbered[0].OldCode)
	assert.Equal(t, "TEST-T-0002", renumbered[0].NewCode)

	winner, err := document.FromFile(filepath.Join(metisDir,
		"strategies", "NULL", "initiatives", "I-0001", "tasks", "T-0001.md"))
	require.NoError(t, err)
	assert.Equal(t, "TEST-T-0001", winner.ShortCode)

	loser, err := document.FromFile(filepath.Join(metisDir,
		"strategies", "NULL", "initiatives", "I-0002", "tasks", "T-0001.md"))
	require.NoError(t, err)
	assert.Equal(t, "TEST-T-0002", loser.ShortCode)

	store := config.NewStore(database)
	counter, err := store.Counter(document.TypeTask)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), counter)

	// No two rows share a short code afterwards.
	rows, err := database.AllDocuments()
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, row := range rows {
		assert.False(t, seen[row.ShortCode], "duplicate %s", row.ShortCode)
		seen[row.ShortCode] = true
	}

	// A follow-up sync is quiet.
	results, err = engine.SyncDirectory()
	require.NoError(t, err)
	assert.Zero(t, Summary(results)[ResultRenumbered])
}

// The document at the smaller filesystem depth wins regardless of name.
func TestCollisionTieBreakPrefersShallowerPath(t *testing.T) {
	engine, metisDir, _ := newTestEngine(t, config.StreamlinedFlightLevels())

	shallow := fixtureDoc(document.TypeTask, "shallow-task", "Shallow", "TEST-T-0001")
	deep := fixtureDoc(document.TypeTask, "deep-task", "Deep", "TEST-T-0001")
	// The shallow path sorts lexicographically after the deep one ("b" > "a"),
	// so depth must decide, not name.
	writeDoc(t, metisDir, "backlog/zzz.md", shallow)
	writeDoc(t, metisDir, "archived/strategies/NULL/initiatives/a/tasks/aaa.md", deep)

	results, err := engine.SyncDirectory()
	require.NoError(t, err)

	for _, r := range results {
		if r.Kind == ResultRenumbered {
			assert.Equal(t, "archived/strategies/NULL/initiatives/a/tasks/aaa.md", r.Filepath)
			return
		}
	}
	t.Fatal("expected a Renumbered result")
}

// Same-type collisions across three documents leave one winner and two
// freshly numbered losers.
func TestCollisionThreeWay(t *testing.T) {
	engine, metisDir, database := newTestEngine(t, config.StreamlinedFlightLevels())

	for _, name := range []string{"one", "two", "three"} {
		doc := fixtureDoc(document.TypeTask, name+"-task", name, "TEST-T-0001")
		writeDoc(t, metisDir, "backlog/features/"+name+".md", doc)
	}

	results, err := engine.SyncDirectory()
	require.NoError(t, err)
	assert.Equal(t, 2, Summary(results)[ResultRenumbered])

	rows, err := database.AllDocuments()
	require.NoError(t, err)
	codes := make(map[string]bool)
	for _, row := range rows {
		codes[row.ShortCode] = true
	}
	assert.Len(t, codes, 3)
	assert.True(t, codes["TEST-T-0001"])
	assert.True(t, codes["TEST-T-0002"])
	assert.True(t, codes["TEST-T-0003"])
}

// Documents of different types may share a numeric suffix without colliding.
func TestNoCollisionAcrossTypes(t *testing.T) {
	engine, metisDir, _ := newTestEngine(t, config.StreamlinedFlightLevels())

	writeDoc(t, metisDir, "vision.md", fixtureDoc(document.TypeVision, "v", "V", "TEST-V-0001"))
	writeDoc(t, metisDir, "backlog/bugs/t.md", fixtureDoc(document.TypeTask, "t", "T", "TEST-T-0001"))

	results, err := engine.SyncDirectory()
	require.NoError(t, err)
	assert.Zero(t, Summary(results)[ResultRenumbered])
}

// After a renumber, blocked_by references to the old code in the loser's
// directory subtree are rewritten to the new code.
func TestCollisionRewritesBlockedByReferences(t *testing.T) {
	engine, metisDir, _ := newTestEngine(t, config.StreamlinedFlightLevels())

	winner := fixtureDoc(document.TypeTask, "dev-a-task", "Dev A", "TEST-T-0001")
	loser := fixtureDoc(document.TypeTask, "dev-b-task", "Dev B", "TEST-T-0001")
	sibling := fixtureDoc(document.TypeTask, "dependent-task", "Dependent", "TEST-T-0003")
	sibling.BlockedBy = []string{"TEST-T-0001"}

	writeDoc(t, metisDir, "strategies/NULL/initiatives/I-0001/tasks/T-0001.md", winner)
	writeDoc(t, metisDir, "strategies/NULL/initiatives/I-0002/tasks/T-0001.md", loser)
	writeDoc(t, metisDir, "strategies/NULL/initiatives/I-0002/tasks/dependent.md", sibling)

	results, err := engine.SyncDirectory()
	require.NoError(t, err)

	var newCode string
	for _, r := range results {
		if r.Kind == ResultRenumbered {
			newCode = r.NewCode
		}
	}
	require.NotEmpty(t, newCode)

	updated, err := document.FromFile(filepath.Join(metisDir,
		"strategies", "NULL", "initiatives", "I-0002", "tasks", "dependent.md"))
	require.NoError(t, err)
	assert.Equal(t, []string{newCode}, updated.BlockedBy)
}
