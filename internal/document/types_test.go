package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeLetterRoundTrip(t *testing.T) {
	for _, docType := range ValidTypes() {
		letter := docType.Letter()
		assert.Len(t, letter, 1)
		back, ok := TypeFromLetter(letter)
		assert.True(t, ok)
		assert.Equal(t, docType, back)
	}
}

func TestInitialPhases(t *testing.T) {
	assert.Equal(t, PhaseDraft, TypeVision.InitialPhase())
	assert.Equal(t, PhaseShaping, TypeStrategy.InitialPhase())
	assert.Equal(t, PhaseDiscovery, TypeInitiative.InitialPhase())
	assert.Equal(t, PhaseTodo, TypeTask.InitialPhase())
	assert.Equal(t, PhaseDraft, TypeADR.InitialPhase())
}

// Every type's CanTransition accepts exactly the immediate successor in the
// linear machine, plus the task blocked side-state.
func TestCanTransitionClosure(t *testing.T) {
	for _, docType := range ValidTypes() {
		phases := docType.Phases()
		for i, from := range phases {
			for j, to := range phases {
				want := j == i+1
				assert.Equal(t, want, docType.CanTransition(from, to),
					"%s: %s -> %s", docType, from, to)
			}
		}
	}
}

func TestTaskBlockedSideState(t *testing.T) {
	assert.True(t, TypeTask.CanTransition(PhaseTodo, PhaseBlocked))
	assert.True(t, TypeTask.CanTransition(PhaseActive, PhaseBlocked))
	assert.True(t, TypeTask.CanTransition(PhaseBlocked, PhaseActive))
	assert.False(t, TypeTask.CanTransition(PhaseBlocked, PhaseCompleted))
	assert.False(t, TypeTask.CanTransition(PhaseBlocked, PhaseTodo))
	assert.False(t, TypeTask.CanTransition(PhaseCompleted, PhaseBlocked))
}

func TestNoTransitionFromTerminal(t *testing.T) {
	assert.False(t, TypeVision.CanTransition(PhasePublished, PhaseDraft))
	assert.False(t, TypeStrategy.CanTransition(PhaseCompleted, PhaseActive))
	assert.False(t, TypeADR.CanTransition(PhaseSuperseded, PhaseDraft))
}

func TestPhaseTags(t *testing.T) {
	tag := PhaseTag(PhaseDesign)
	assert.Equal(t, Tag("#phase/design"), tag)
	assert.True(t, tag.IsPhase())
	assert.Equal(t, PhaseDesign, tag.Phase())

	plain := Tag("urgent")
	assert.False(t, plain.IsPhase())
	assert.Equal(t, Phase(""), plain.Phase())
}
