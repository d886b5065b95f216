package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/document"
)

func TestUpdateBlockedBy(t *testing.T) {
	svc := initWorkspace(t, config.PresetDirect)

	first, err := svc.CreateDocument(CreateConfig{Type: document.TypeTask, Title: "First"})
	require.NoError(t, err)
	second, err := svc.CreateDocument(CreateConfig{Type: document.TypeTask, Title: "Second"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateBlockedBy(second.FilePath, []string{first.ShortCode}))

	doc, err := document.FromFile(svc.absPath(second.FilePath))
	require.NoError(t, err)
	assert.Equal(t, []string{first.ShortCode}, doc.BlockedBy)

	// Mutual blocking is a modelling warning, not a storage error.
	require.NoError(t, svc.UpdateBlockedBy(first.FilePath, []string{second.ShortCode}))

	require.NoError(t, svc.UpdateBlockedBy(second.FilePath, nil))
	doc, err = document.FromFile(svc.absPath(second.FilePath))
	require.NoError(t, err)
	assert.Empty(t, doc.BlockedBy)
}

func TestUpdateExitCriterion(t *testing.T) {
	svc := initWorkspace(t, config.PresetDirect)

	task, err := svc.CreateDocument(CreateConfig{Type: document.TypeTask, Title: "Check me"})
	require.NoError(t, err)

	// The task template ships with two unchecked criteria.
	require.NoError(t, svc.UpdateExitCriterion(task.FilePath, "Objective is complete", true))

	doc, err := document.FromFile(svc.absPath(task.FilePath))
	require.NoError(t, err)
	result := doc.EvaluateExitCriteria()
	assert.Equal(t, 1, result.Completed)
	assert.False(t, doc.ExitCriteriaMet)

	require.NoError(t, svc.UpdateExitCriterion(task.FilePath, "Changes are reviewed", true))
	doc, err = document.FromFile(svc.absPath(task.FilePath))
	require.NoError(t, err)
	assert.True(t, doc.ExitCriteriaMet)

	// The index mirrors the shadow field after the per-file sync.
	row, err := svc.DB().FindByFilepath(task.FilePath)
	require.NoError(t, err)
	assert.True(t, row.ExitCriteriaMet)

	assert.Error(t, svc.UpdateExitCriterion(task.FilePath, "No such criterion", true))
}

func TestValidateDocument(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)

	strategy, err := svc.CreateDocument(CreateConfig{Type: document.TypeStrategy, Title: "Valid"})
	require.NoError(t, err)

	report := svc.ValidateDocument(strategy.FilePath)
	assert.True(t, report.IsValid)
	assert.Equal(t, document.TypeStrategy, report.Type)
	assert.Empty(t, report.Errors)

	report = svc.ValidateDocument("does-not-exist.md")
	assert.False(t, report.IsValid)
	assert.NotEmpty(t, report.Errors)
}

func TestArchiveSubtree(t *testing.T) {
	svc := initWorkspace(t, config.PresetFull)

	strategy, err := svc.CreateDocument(CreateConfig{Type: document.TypeStrategy, Title: "Old Bet"})
	require.NoError(t, err)
	_, err = svc.CreateDocument(CreateConfig{
		Type: document.TypeInitiative, Title: "Sub Work", ParentID: strategy.DocumentID,
	})
	require.NoError(t, err)

	result, err := svc.Archive(strategy.DocumentID)
	require.NoError(t, err)
	assert.Len(t, result.Moved, 2)

	archived, err := document.FromFile(svc.absPath("archived/strategies/old-bet/strategy.md"))
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	row, err := svc.DB().FindByShortCode(strategy.ShortCode)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.Archived)
	assert.Equal(t, "archived/strategies/old-bet/strategy.md", row.Filepath)

	// Archiving twice fails.
	_, err = svc.Archive(strategy.DocumentID)
	assert.Error(t, err)

	// The vision is not archivable.
	_, err = svc.Archive("acme")
	assert.Error(t, err)
}
