package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jakefearsd/contentpipeline/pkg/approval"
	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/events"
	"github.com/jakefearsd/contentpipeline/pkg/state"
)

// gateEnabled reports whether phase carries a configured approval
// checkpoint (§4.6). phase is the just-completed processing state for the
// afterResearch/afterDraft/afterFactcheck gates, or state.Published for the
// beforePublish gate.
func (e *Executor) gateEnabled(phase state.State) bool {
	a := e.Config.Approval
	switch phase {
	case state.Researching:
		return a.AfterResearch
	case state.Drafting:
		return a.AfterDraft
	case state.FactChecking:
		return a.AfterFactcheck
	case state.Published:
		return a.BeforePublish
	default:
		return false
	}
}

// revisionTargetForGate names the stage a REQUEST_CHANGES verdict sends the
// document back to, per §4.6: the two research/draft gates redo their own
// stage, the fact-check gate sends the writer back to work, and the
// pre-publish gate sends the document back to editing.
func revisionTargetForGate(phase state.State) state.State {
	switch phase {
	case state.FactChecking:
		return state.Drafting
	case state.Published:
		return state.Editing
	default:
		return phase
	}
}

// maybeRequestApproval consults the gate configured for phase, if any. It
// returns (nil, false) when no gate is configured or the document should
// simply resume at its pre-gate state; it returns (result, true) when the
// run has reached a terminal outcome (REJECT, or a timeout treated as an
// agent failure).
func (e *Executor) maybeRequestApproval(ctx context.Context, doc *document.Document, phase state.State, start time.Time, revisions *int) (*Result, bool) {
	if !e.gateEnabled(phase) {
		return nil, false
	}

	preState := doc.State()

	if err := doc.TransitionTo(state.AwaitingApproval); err != nil {
		return e.finishFailure(doc, start, phase, err), true
	}
	e.Metrics.RecordApprovalRequested()
	e.emit(events.ApprovalRequested, doc, phase, state.AwaitingApproval, fmt.Sprintf("awaiting approval after %s", phase))

	outcome, err := e.requestApproval(ctx, doc, phase)
	if err != nil {
		return e.finishApprovalTimeout(doc, start, phase, err), true
	}

	result, terminal, _ := e.applyApprovalOutcome(doc, phase, preState, outcome, start, revisions)
	return result, terminal
}

// requestApproval builds the approval.Request for phase and blocks on the
// configured Gate.
func (e *Executor) requestApproval(ctx context.Context, doc *document.Document, phase state.State) (approval.Outcome, error) {
	return e.Approval.RequestApproval(ctx, approval.Request{
		DocumentID: doc.ID(),
		Phase:      string(phase),
		Summary:    fmt.Sprintf("%q after %s", doc.Brief().Topic, phase),
	})
}

// applyApprovalOutcome folds a Gate's Outcome into the document and the run,
// shared between the main loop's three post-phase gates and runPublish's
// beforePublish gate. The third return value, proceed, is true when the
// document ends this call sitting at preState, ready to continue forward —
// an APPROVE, or a REQUEST_CHANGES that hit an exhausted revision budget and
// was treated as one — and false when it was genuinely reverted to an
// earlier stage for rework. runPublish uses proceed to decide whether to
// actually invoke the Publisher; the main loop's gates instead detect a
// revert from the document's state and the revision counter.
func (e *Executor) applyApprovalOutcome(doc *document.Document, phase, preState state.State, outcome approval.Outcome, start time.Time, revisions *int) (result *Result, terminal bool, proceed bool) {
	switch outcome.Decision {
	case approval.Approve:
		e.Metrics.RecordApprovalGranted()
		e.emit(events.ApprovalReceived, doc, state.AwaitingApproval, preState, fmt.Sprintf("approved after %s", phase))
		if err := doc.TransitionTo(preState); err != nil {
			return e.finishFailure(doc, start, phase, err), true, false
		}
		return nil, false, true

	case approval.Reject:
		e.Metrics.RecordApprovalRejected()
		reason := outcome.Reason
		if reason == "" {
			reason = fmt.Sprintf("approval rejected after %s", phase)
		}
		return e.rejectWithReason(doc, start, phase, reason), true, false

	case approval.RequestChanges:
		if *revisions >= e.Config.MaxRevisionCycles {
			e.emit(events.Warning, doc, state.AwaitingApproval, preState,
				fmt.Sprintf("revision budget (%d) exhausted; request-changes after %s treated as approved", e.Config.MaxRevisionCycles, phase))
			if err := doc.TransitionTo(preState); err != nil {
				return e.finishFailure(doc, start, phase, err), true, false
			}
			return nil, false, true
		}

		target := revisionTargetForGate(phase)
		if err := doc.TransitionTo(target); err != nil {
			return e.finishFailure(doc, start, phase, err), true, false
		}
		doc.IncrementRevision(phase)
		*revisions++
		e.Metrics.RecordRevision()

		msg := fmt.Sprintf("approval requested changes after %s", phase)
		if outcome.Reason != "" {
			msg += ": " + outcome.Reason
		}
		e.emit(events.RevisionStarted, doc, state.AwaitingApproval, target, msg)
		return nil, false, false

	default:
		return e.finishFailure(doc, start, phase, fmt.Errorf("pipeline: unrecognized approval decision %q", outcome.Decision)), true, false
	}
}

// finishApprovalTimeout treats an expired or cancelled approval wait as an
// agent failure pinned at AWAITING_APPROVAL (§4.6, §7): the document is left
// for a debug dump the same way a failed agent invocation would be.
func (e *Executor) finishApprovalTimeout(doc *document.Document, start time.Time, phase state.State, err error) *Result {
	dumpPath, dumpErr := e.persistFailureDocument(doc, err)
	if dumpErr != nil {
		dumpPath = ""
	}

	_ = doc.TransitionTo(state.Rejected)

	e.Metrics.RecordPipelineFailed(phase, time.Since(start))
	e.emit(events.PipelineFailed, doc, state.AwaitingApproval, state.Rejected, err.Error())

	return &Result{
		Success:            false,
		Document:           doc,
		TotalTime:          time.Since(start),
		ErrorMessage:       err.Error(),
		FailedAtState:      state.AwaitingApproval,
		FailedDocumentPath: dumpPath,
		RevisionsPerformed: doc.TotalRevisions(),
	}
}
