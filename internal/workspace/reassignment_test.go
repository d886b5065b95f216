package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/files"
)

// fullHierarchy creates a strategy with two initiatives and one task under
// the first initiative.
func fullHierarchy(t *testing.T) (*Service, *CreateResult, *CreateResult, *CreateResult) {
	t.Helper()
	svc := initWorkspace(t, config.PresetFull)

	_, err := svc.CreateDocument(CreateConfig{Type: document.TypeStrategy, Title: "Platform"})
	require.NoError(t, err)

	first, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeInitiative, Title: "First Initiative", ParentID: "platform",
	})
	require.NoError(t, err)
	second, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeInitiative, Title: "Second Initiative", ParentID: "platform",
	})
	require.NoError(t, err)

	task, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeTask, Title: "Wandering Task", ParentID: "first-initiative",
	})
	require.NoError(t, err)
	return svc, first, second, task
}

// advanceInitiative walks an initiative through the machine to the target.
func advanceInitiative(t *testing.T, svc *Service, id string, target document.Phase) {
	t.Helper()
	order := document.TypeInitiative.Phases()
	for _, phase := range order[1:] {
		_, err := svc.TransitionPhase(id, phase, true)
		require.NoError(t, err)
		if phase == target {
			return
		}
	}
	t.Fatalf("phase %s not reached", target)
}

// Scenario: reassignment to an initiative that is not decompose/active fails
// and the file stays put; after the target advances, the move succeeds.
func TestReassignToInitiative(t *testing.T) {
	svc, _, second, task := fullHierarchy(t)

	_, err := svc.ReassignToInitiative(task.ShortCode, second.ShortCode)
	require.Error(t, err)
	assert.True(t, errors.HasCodeInChain(err, errors.CodeValidationFailed))
	assert.True(t, files.Exists(svc.absPath(task.FilePath)), "file must not move on failure")

	advanceInitiative(t, svc, second.DocumentID, document.PhaseDecompose)

	result, err := svc.ReassignToInitiative(task.ShortCode, second.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, task.FilePath, result.OldPath)
	assert.Equal(t,
		"strategies/platform/initiatives/second-initiative/tasks/wandering-task.md",
		result.NewPath)
	assert.Equal(t, second.ShortCode, result.NewParent)

	assert.False(t, files.Exists(svc.absPath(task.FilePath)))
	assert.True(t, files.Exists(svc.absPath(result.NewPath)))

	parent, err := svc.DB().FindParent(task.ShortCode)
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, second.ShortCode, parent.ShortCode)
}

func TestReassignRejectsNonTask(t *testing.T) {
	svc, first, second, _ := fullHierarchy(t)
	advanceInitiative(t, svc, second.DocumentID, document.PhaseDecompose)

	_, err := svc.ReassignToInitiative(first.ShortCode, second.ShortCode)
	require.Error(t, err)
	assert.True(t, errors.HasCodeInChain(err, errors.CodeValidationFailed))
}

func TestReassignRejectsNonInitiativeTarget(t *testing.T) {
	svc, _, _, task := fullHierarchy(t)

	_, err := svc.ReassignToInitiative(task.ShortCode, "ACME-V-0001")
	require.Error(t, err)
}

func TestReassignToBacklog(t *testing.T) {
	svc, _, _, task := fullHierarchy(t)

	result, err := svc.ReassignToBacklog(task.ShortCode, "tech-debt")
	require.NoError(t, err)
	assert.Equal(t, "backlog/tech-debt/wandering-task.md", result.NewPath)
	assert.Empty(t, result.NewParent)

	parent, err := svc.DB().FindParent(task.ShortCode)
	require.NoError(t, err)
	assert.Nil(t, parent)

	_, err = svc.ReassignToBacklog(task.ShortCode, "not-a-category")
	assert.Error(t, err)
}

func TestReassignDestinationConflict(t *testing.T) {
	svc, _, second, task := fullHierarchy(t)
	advanceInitiative(t, svc, second.DocumentID, document.PhaseActive)

	// A file already sits where the task would land.
	occupied := svc.absPath("strategies/platform/initiatives/second-initiative/tasks/wandering-task.md")
	require.NoError(t, files.WriteFile(occupied, "occupied"))

	_, err := svc.ReassignToInitiative(task.ShortCode, second.ShortCode)
	require.Error(t, err)
	assert.True(t, errors.HasCodeInChain(err, errors.CodeDocumentAlreadyExists))
}
