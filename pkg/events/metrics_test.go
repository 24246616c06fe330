package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jakefearsd/contentpipeline/pkg/state"
)

func TestMetrics_StartedEqualsCompletedPlusFailedPlusCancelled(t *testing.T) {
	m := NewMetrics()
	m.RecordPipelineStarted()
	m.RecordPipelineStarted()
	m.RecordPipelineStarted()

	m.RecordPipelineCompleted(10 * time.Millisecond)
	m.RecordPipelineFailed(state.Editing, 5*time.Millisecond)
	m.RecordPipelineCancelled(time.Millisecond)

	snap := m.Snapshot()
	assert.EqualValues(t, 3, snap.PipelinesStarted)
	assert.EqualValues(t, 1, snap.PipelinesCompleted)
	assert.EqualValues(t, 1, snap.PipelinesFailed)
	assert.EqualValues(t, 1, snap.PipelinesCancelled)
	assert.Equal(t, int64(1), snap.FailuresByState["EDITING"])
}

func TestMetrics_SuccessRate(t *testing.T) {
	m := NewMetrics()
	m.RecordPipelineCompleted(time.Millisecond)
	m.RecordPipelineCompleted(time.Millisecond)
	m.RecordPipelineFailed(state.Drafting, time.Millisecond)

	snap := m.Snapshot()
	assert.InDelta(t, 2.0/3.0, snap.SuccessRate, 0.001)
}

func TestMetrics_AgentAverages(t *testing.T) {
	m := NewMetrics()
	m.RecordAgentInvocation("writer", 100*time.Millisecond)
	m.RecordAgentInvocation("writer", 300*time.Millisecond)

	snap := m.Snapshot()
	writer := snap.Agents["writer"]
	assert.EqualValues(t, 2, writer.Invocations)
	assert.Equal(t, 200*time.Millisecond, writer.AvgTime)
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordPipelineStarted()
	m.RecordRevision()
	m.RecordApprovalRequested()
	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.PipelinesStarted)
	assert.Zero(t, snap.RevisionCycles)
	assert.Zero(t, snap.ApprovalsRequested)
}

func TestMetrics_MinMaxProcessingTime(t *testing.T) {
	m := NewMetrics()
	m.RecordPipelineCompleted(50 * time.Millisecond)
	m.RecordPipelineCompleted(10 * time.Millisecond)
	m.RecordPipelineCompleted(200 * time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, 10*time.Millisecond, snap.MinProcessingTime)
	assert.Equal(t, 200*time.Millisecond, snap.MaxProcessingTime)
}
