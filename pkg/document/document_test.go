package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakefearsd/contentpipeline/pkg/state"
)

func testBrief() Brief {
	return Brief{
		Topic:           "Git branching strategies",
		Audience:        "devs",
		TargetWordCount: 800,
	}
}

func TestNew_StartsInCreated(t *testing.T) {
	d := New(testBrief())
	assert.Equal(t, state.Created, d.State())
	assert.NotEmpty(t, d.ID())
	assert.Equal(t, testBrief(), d.Brief())
}

func TestTransitionTo_ValidMoveSucceeds(t *testing.T) {
	d := New(testBrief())
	require.NoError(t, d.TransitionTo(state.Researching))
	assert.Equal(t, state.Researching, d.State())
}

func TestTransitionTo_InvalidMoveFails(t *testing.T) {
	d := New(testBrief())
	err := d.TransitionTo(state.Published)
	assert.Error(t, err)
	assert.Equal(t, state.Created, d.State(), "state unchanged after rejected transition")
}

func TestTransitionTo_TerminalIsImmutable(t *testing.T) {
	d := New(testBrief())
	require.NoError(t, d.TransitionTo(state.Researching))
	require.NoError(t, d.TransitionTo(state.Rejected))

	assert.ErrorIs(t, d.TransitionTo(state.Published), ErrTerminal)
	assert.ErrorIs(t, d.SetDraft(ArticleDraft{WikiContent: "x"}), ErrTerminal)
	assert.ErrorIs(t, d.RecordContribution(Contribution{AgentRole: "writer"}), ErrTerminal)
}

func TestSetFinalArticle_ClampsQualityScore(t *testing.T) {
	d := New(testBrief())
	require.NoError(t, d.SetFinalArticle(FinalArticle{QualityScore: 1.4}))
	assert.Equal(t, 1.0, d.FinalArticle().QualityScore)

	require.NoError(t, d.SetFinalArticle(FinalArticle{QualityScore: -0.2}))
	assert.Equal(t, 0.0, d.FinalArticle().QualityScore)
}

func TestSetCriticReport_ClampsAllScores(t *testing.T) {
	d := New(testBrief())
	require.NoError(t, d.SetCriticReport(CriticReport{
		OverallScore:     2,
		StructureScore:   -1,
		SyntaxScore:      0.5,
		ReadabilityScore: 1.1,
	}))
	r := d.CriticReport()
	assert.Equal(t, 1.0, r.OverallScore)
	assert.Equal(t, 0.0, r.StructureScore)
	assert.Equal(t, 0.5, r.SyntaxScore)
	assert.Equal(t, 1.0, r.ReadabilityScore)
}

func TestRecordContribution_AppendOnlyOrdering(t *testing.T) {
	d := New(testBrief())
	require.NoError(t, d.RecordContribution(Contribution{AgentRole: "researcher"}))
	require.NoError(t, d.RecordContribution(Contribution{AgentRole: "writer"}))

	contribs := d.Contributions()
	require.Len(t, contribs, 2)
	assert.Equal(t, "researcher", contribs[0].AgentRole)
	assert.Equal(t, "writer", contribs[1].AgentRole)
}

func TestIncrementRevision_TracksPerEdgeAndTotal(t *testing.T) {
	d := New(testBrief())
	assert.Equal(t, 1, d.IncrementRevision(state.FactChecking))
	assert.Equal(t, 2, d.IncrementRevision(state.FactChecking))
	assert.Equal(t, 1, d.IncrementRevision(state.Critiquing))

	assert.Equal(t, 2, d.RevisionCount(state.FactChecking))
	assert.Equal(t, 1, d.RevisionCount(state.Critiquing))
	assert.Equal(t, 3, d.TotalRevisions())
}

func TestSnapshot_IsIndependentDeepCopy(t *testing.T) {
	d := New(testBrief())
	require.NoError(t, d.SetDraft(ArticleDraft{WikiContent: "original"}))
	require.NoError(t, d.RecordContribution(Contribution{AgentRole: "writer"}))

	snap := d.Snapshot()
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "original", snap.Draft.WikiContent)

	// Mutate the live document after taking the snapshot; the snapshot must
	// not observe the change because Snapshot deep-copies pointer fields.
	require.NoError(t, d.SetDraft(ArticleDraft{WikiContent: "revised"}))
	assert.Equal(t, "original", snap.Draft.WikiContent)
	assert.Len(t, snap.Contributions, 1)
}

func TestHasPrimarilySyntaxIssues(t *testing.T) {
	cases := []struct {
		name string
		r    CriticReport
		want bool
	}{
		{"pure syntax", CriticReport{SyntaxIssues: []string{"typo"}}, true},
		{"one structure issue tolerated", CriticReport{SyntaxIssues: []string{"typo"}, StructureIssues: []string{"s1"}}, true},
		{"two structure issues disqualify", CriticReport{SyntaxIssues: []string{"typo"}, StructureIssues: []string{"s1", "s2"}}, false},
		{"three style issues disqualify", CriticReport{SyntaxIssues: []string{"typo"}, StyleIssues: []string{"a", "b", "c"}}, false},
		{"no syntax issues", CriticReport{StructureIssues: []string{"s1"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.r.HasPrimarilySyntaxIssues())
		})
	}
}

func TestConfidenceMeets(t *testing.T) {
	assert.True(t, ConfidenceHigh.Meets(ConfidenceMedium))
	assert.True(t, ConfidenceMedium.Meets(ConfidenceMedium))
	assert.False(t, ConfidenceLow.Meets(ConfidenceMedium))
	assert.False(t, Confidence("BOGUS").Meets(ConfidenceLow))
}
