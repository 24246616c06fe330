// Package events implements the Event Bus & Metrics (C7): a synchronous,
// ordered fan-out of pipeline lifecycle events to registered listeners,
// plus an atomic metrics aggregate. Grounded on the teacher's use of
// sync/atomic counters in its orchestrator package, generalized here to a
// single explicit Metrics struct rather than scattered package-level vars.
package events

import (
	"time"

	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/state"
)

// Type enumerates the pipeline lifecycle events a Bus can deliver (§4.7).
type Type string

const (
	PipelineStarted   Type = "PIPELINE_STARTED"
	PhaseStarted      Type = "PHASE_STARTED"
	PhaseCompleted    Type = "PHASE_COMPLETED"
	ApprovalRequested Type = "APPROVAL_REQUESTED"
	ApprovalReceived  Type = "APPROVAL_RECEIVED"
	RevisionStarted   Type = "REVISION_STARTED"
	PipelineCompleted Type = "PIPELINE_COMPLETED"
	PipelineFailed    Type = "PIPELINE_FAILED"
	Warning           Type = "WARNING"
	Info              Type = "INFO"
)

// Event is one lifecycle notification, per §4.7's tuple
// (id, type, topic, previousState, currentState, message, timestamp, documentRef).
type Event struct {
	ID            string
	Type          Type
	Topic         string
	PreviousState state.State
	CurrentState  state.State
	Message       string
	Timestamp     time.Time // ISO-8601 UTC on the wire (§6)
	Document      *document.Snapshot
}
