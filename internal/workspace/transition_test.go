package workspace

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
)

// Scenario: a transition is blocked by unchecked exit criteria, then
// succeeds after the box is checked.
func TestTransitionBlockedByExitCriteria(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)

	strategy, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeStrategy, Title: "Payments Hardening",
	})
	require.NoError(t, err)

	// Replace the template checklist with a single unchecked criterion.
	doc, err := document.FromFile(svc.absPath(strategy.FilePath))
	require.NoError(t, err)
	doc.Body = "# Payments Hardening\n\n## Exit Criteria\n\n- [ ] Problem stated\n"
	require.NoError(t, doc.SaveToFile(svc.absPath(strategy.FilePath)))
	_, err = svc.Sync()
	require.NoError(t, err)

	_, err = svc.TransitionPhase(strategy.DocumentID, document.PhaseDesign, false)
	require.Error(t, err)

	var criteriaErr *errors.ExitCriteriaError
	require.True(t, stderrors.As(err, &criteriaErr))
	assert.Equal(t, 1, criteriaErr.Missing)
	assert.Equal(t, 1, criteriaErr.Total)

	// Phase unchanged.
	row, err := svc.DB().FindByShortCode(strategy.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, string(document.PhaseShaping), row.Phase)

	// Check the box and retry.
	require.NoError(t, svc.UpdateExitCriterion(strategy.FilePath, "Problem stated", true))
	result, err := svc.TransitionPhase(strategy.DocumentID, document.PhaseDesign, false)
	require.NoError(t, err)
	assert.Equal(t, document.PhaseShaping, result.PreviousPhase)
	assert.Equal(t, document.PhaseDesign, result.NewPhase)

	row, err = svc.DB().FindByShortCode(strategy.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, string(document.PhaseDesign), row.Phase)
}

// Force bypasses only the exit-criteria gate; the state machine is absolute.
func TestTransitionForce(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)

	strategy, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeStrategy, Title: "Risky",
	})
	require.NoError(t, err)

	// Template body ships with unchecked criteria, so force is required.
	result, err := svc.TransitionPhase(strategy.DocumentID, document.PhaseDesign, true)
	require.NoError(t, err)
	assert.Equal(t, document.PhaseDesign, result.NewPhase)

	// Skipping a state fails even with force.
	_, err = svc.TransitionPhase(strategy.DocumentID, document.PhaseActive, true)
	require.Error(t, err)
	assert.True(t, errors.HasCodeInChain(err, errors.CodeInvalidTransition))
}

func TestTransitionByShortCode(t *testing.T) {
	svc := initWorkspace(t, config.PresetDirect)

	task, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeTask, Title: "Move along",
	})
	require.NoError(t, err)

	result, err := svc.TransitionPhase(task.ShortCode, document.PhaseActive, true)
	require.NoError(t, err)
	assert.Equal(t, document.PhaseTodo, result.PreviousPhase)
}

// Tasks entering completed get exit_criteria_met set.
func TestTaskCompletionMarksExitCriteria(t *testing.T) {
	svc := initWorkspace(t, config.PresetDirect)

	task, err := svc.CreateDocument(CreateConfig{
		Type: document.TypeTask, Title: "Finish me",
	})
	require.NoError(t, err)

	_, err = svc.TransitionPhase(task.ShortCode, document.PhaseActive, true)
	require.NoError(t, err)
	_, err = svc.TransitionPhase(task.ShortCode, document.PhaseCompleted, true)
	require.NoError(t, err)

	doc, err := document.FromFile(svc.absPath("strategies/NULL/initiatives/NULL/tasks/finish-me.md"))
	require.NoError(t, err)
	assert.True(t, doc.ExitCriteriaMet)
}

func TestTransitionUnknownDocument(t *testing.T) {
	svc := initWorkspace(t, config.PresetDirect)
	_, err := svc.TransitionPhase("nope", document.PhaseActive, false)
	require.Error(t, err)
	assert.True(t, errors.HasCodeInChain(err, errors.CodeNotFound))
}
