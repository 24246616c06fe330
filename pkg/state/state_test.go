package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_HappyPath(t *testing.T) {
	assert.True(t, CanTransition(Created, Researching))
	assert.True(t, CanTransition(Researching, Drafting))
	assert.True(t, CanTransition(Drafting, FactChecking))
	assert.True(t, CanTransition(FactChecking, Editing))
	assert.True(t, CanTransition(Editing, Critiquing))
	assert.True(t, CanTransition(Critiquing, Published))
}

func TestCanTransition_SkipEdges(t *testing.T) {
	assert.True(t, CanTransition(Drafting, Editing), "skip-factcheck edge")
	assert.True(t, CanTransition(Editing, Published), "skip-critique edge")
}

func TestCanTransition_RevisionEdges(t *testing.T) {
	assert.True(t, CanTransition(FactChecking, Drafting))
	assert.True(t, CanTransition(Editing, FactChecking))
	assert.True(t, CanTransition(Editing, Drafting))
	assert.True(t, CanTransition(Critiquing, Editing))
}

func TestCanTransition_Rejects(t *testing.T) {
	for _, from := range []State{Created, Researching, Drafting, FactChecking, Editing, Critiquing, AwaitingApproval} {
		assert.True(t, CanTransition(from, Rejected), "from %s", from)
	}
}

func TestCanTransition_TerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	assert.Empty(t, transitions[Published])
	assert.Empty(t, transitions[Rejected])
}

func TestValidate_InvalidTransitionError(t *testing.T) {
	err := Validate(Created, Published)
	require.Error(t, err)

	var invalid *InvalidTransition
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, Created, invalid.From)
	assert.Equal(t, Published, invalid.To)
	assert.Contains(t, err.Error(), "CREATED")
	assert.Contains(t, err.Error(), "PUBLISHED")
}

func TestValidate_ValidTransitionReturnsNil(t *testing.T) {
	assert.NoError(t, Validate(Created, Researching))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, Published.IsTerminal())
	assert.True(t, Rejected.IsTerminal())
	assert.False(t, Drafting.IsTerminal())
	assert.False(t, AwaitingApproval.IsTerminal())
}

func TestIsProcessing(t *testing.T) {
	assert.True(t, Researching.IsProcessing())
	assert.False(t, AwaitingApproval.IsProcessing())
	assert.False(t, Published.IsProcessing())
	assert.False(t, State("BOGUS").IsProcessing())
}

func TestNextInHappyFlow(t *testing.T) {
	next, ok := NextInHappyFlow(Drafting)
	require.True(t, ok)
	assert.Equal(t, FactChecking, next)

	_, ok = NextInHappyFlow(AwaitingApproval)
	assert.False(t, ok)

	_, ok = NextInHappyFlow(Published)
	assert.False(t, ok)
}

func TestPreviousForRevision(t *testing.T) {
	prev, ok := PreviousForRevision(FactChecking)
	require.True(t, ok)
	assert.Equal(t, Drafting, prev)

	prev, ok = PreviousForRevision(Critiquing)
	require.True(t, ok)
	assert.Equal(t, Editing, prev)

	_, ok = PreviousForRevision(Researching)
	assert.False(t, ok)
}

func TestAllStates_CoversTransitionTable(t *testing.T) {
	all := AllStates()
	assert.Len(t, all, len(transitions))
	for _, s := range all {
		assert.True(t, s.IsValid())
	}
}
