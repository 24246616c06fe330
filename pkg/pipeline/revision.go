package pipeline

import (
	"fmt"
	"time"

	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/events"
	"github.com/jakefearsd/contentpipeline/pkg/state"
)

// applyReviewDecisions implements §4.8.2: after FACT_CHECKING and
// CRITIQUING, the reviewer's recommendation may send the document back to
// an earlier stage (bounded by e.Config.MaxRevisionCycles) or end the run
// as REJECTED. It returns (reverted, result, terminal): reverted means the
// caller should `continue` the main loop without consulting the approval
// gate for this phase; terminal means result is the run's final outcome.
func (e *Executor) applyReviewDecisions(doc *document.Document, completed state.State, start time.Time, revisions *int) (reverted bool, result *Result, terminal bool) {
	switch completed {
	case state.FactChecking:
		return e.applyFactCheckDecision(doc, start, revisions)
	case state.Critiquing:
		return e.applyCriticDecision(doc, start, revisions)
	default:
		return false, nil, false
	}
}

// applyFactCheckDecision: REJECT ends the run; REVISE (or a confidence
// floor miss, or requireVerifiedClaims with no verified claims) reverts to
// DRAFTING while budget remains, else falls through to EDITING with a
// WARNING event (§4.8.2's "Resolved open question (b)": the confidence
// floor is checked independently of requireVerifiedClaims).
func (e *Executor) applyFactCheckDecision(doc *document.Document, start time.Time, revisions *int) (bool, *Result, bool) {
	report := doc.FactCheckReport()
	if report == nil {
		return false, nil, false
	}

	if report.RecommendedAction == document.ActionReject {
		return false, e.rejectWithReason(doc, start, state.FactChecking, "fact checker recommended REJECT"), true
	}

	confidenceFloorMissed := !report.OverallConfidence.Meets(e.Quality.MinFactcheckConfidence)
	needsRevision := report.RecommendedAction == document.ActionRevise ||
		confidenceFloorMissed ||
		(e.Quality.RequireVerifiedClaims && len(report.VerifiedClaims) == 0)

	if !needsRevision {
		return false, nil, false
	}

	if *revisions < e.Config.MaxRevisionCycles {
		if err := doc.TransitionTo(state.Drafting); err != nil {
			return false, e.finishFailure(doc, start, state.FactChecking, err), true
		}
		doc.IncrementRevision(state.FactChecking)
		*revisions++
		e.Metrics.RecordRevision()
		e.emit(events.RevisionStarted, doc, state.FactChecking, state.Drafting, "fact check requested a revision")
		return true, nil, false
	}

	e.emit(events.Warning, doc, state.FactChecking, state.FactChecking,
		fmt.Sprintf("revision budget (%d) exhausted after fact check; proceeding to editing", e.Config.MaxRevisionCycles))
	return false, nil, false
}

// applyCriticDecision: REJECT is terminal (§9's "Resolved open question
// (c)": symmetric with the fact checker's REJECT handling). A REVISE whose
// issues are primarily cosmetic (CriticReport.HasPrimarilySyntaxIssues)
// reverts to EDITING; a REVISE with structural issues reverts all the way
// to DRAFTING.
func (e *Executor) applyCriticDecision(doc *document.Document, start time.Time, revisions *int) (bool, *Result, bool) {
	report := doc.CriticReport()
	if report == nil {
		return false, nil, false
	}

	if report.RecommendedAction == document.ActionReject {
		return false, e.rejectWithReason(doc, start, state.Critiquing, "critic recommended REJECT"), true
	}

	if report.RecommendedAction != document.ActionRevise {
		return false, nil, false
	}

	if *revisions >= e.Config.MaxRevisionCycles {
		e.emit(events.Warning, doc, state.Critiquing, state.Critiquing,
			fmt.Sprintf("revision budget (%d) exhausted after critique; proceeding to publish", e.Config.MaxRevisionCycles))
		return false, nil, false
	}

	target := state.Drafting
	if report.HasPrimarilySyntaxIssues() {
		target = state.Editing
	}

	if err := doc.TransitionTo(target); err != nil {
		return false, e.finishFailure(doc, start, state.Critiquing, err), true
	}
	doc.IncrementRevision(state.Critiquing)
	*revisions++
	e.Metrics.RecordRevision()
	e.emit(events.RevisionStarted, doc, state.Critiquing, target, "critique requested a revision")
	return true, nil, false
}

// rejectWithReason transitions doc to REJECTED and builds a Result carrying
// reason as the error message.
func (e *Executor) rejectWithReason(doc *document.Document, start time.Time, failedAt state.State, reason string) *Result {
	_ = doc.TransitionTo(state.Rejected)
	e.Metrics.RecordPipelineFailed(failedAt, time.Since(start))
	e.emit(events.PipelineFailed, doc, failedAt, state.Rejected, reason)
	return &Result{
		Success:            false,
		Document:           doc,
		TotalTime:          time.Since(start),
		ErrorMessage:       reason,
		FailedAtState:      failedAt,
		RevisionsPerformed: doc.TotalRevisions(),
	}
}
