// Package pipeline implements the Pipeline Executor (C8): the main loop
// that drives a Document through the Researcher -> Writer -> FactChecker ->
// Editor -> Critic -> Publisher sequence, honoring skip flags, revision
// cycles, and approval gates, and the ambient Run Pool (§4.8.5) that bounds
// how many runs execute concurrently. Grounded on the teacher's
// SessionExecutor (pkg/queue) for the overall try/catch/emit/advance shape,
// generalized from tarsy's single linear alert-processing chain to this
// spec's branching, revision-capable state machine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakefearsd/contentpipeline/pkg/agent"
	"github.com/jakefearsd/contentpipeline/pkg/approval"
	"github.com/jakefearsd/contentpipeline/pkg/config"
	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/events"
	"github.com/jakefearsd/contentpipeline/pkg/state"
)

// AgentSpecs bundles the five LLM-backed AgentSpecs the Executor dispatches
// on, one per processing state that isn't the deterministic Publisher.
// Built by the caller (cmd/contentpipeline) from agent.ResearcherSpec() etc.
// so this package stays agnostic of prompt providers and quality-gate
// wiring, per the "polymorphic agents" design note (§9).
type AgentSpecs struct {
	Researcher  agent.AgentSpec
	Writer      agent.AgentSpec
	FactChecker agent.AgentSpec
	Editor      agent.AgentSpec
	Critic      agent.AgentSpec
}

func (s AgentSpecs) specFor(st state.State) (agent.AgentSpec, bool) {
	switch st {
	case state.Researching:
		return s.Researcher, true
	case state.Drafting:
		return s.Writer, true
	case state.FactChecking:
		return s.FactChecker, true
	case state.Editing:
		return s.Editor, true
	case state.Critiquing:
		return s.Critic, true
	default:
		return agent.AgentSpec{}, false
	}
}

// Result is the Pipeline Executor's outcome, per §4.8.4.
type Result struct {
	Success             bool
	Document            *document.Document
	OutputPath          string
	TotalTime           time.Duration
	ErrorMessage        string
	FailedAtState       state.State
	FailedDocumentPath  string
	RevisionsPerformed  int
}

// Executor drives Documents through the pipeline. Run keeps all per-run
// state in its own locals, so one Executor may serve concurrent runs on
// distinct Documents (RunPool shares one across its workers); a single
// Document must not be run by two goroutines at once. The Envelope, Bus,
// and Metrics it's built with are safe for that shared use (§5).
type Executor struct {
	Envelope  *agent.Envelope
	Specs     AgentSpecs
	Publisher agent.PublisherConfig
	Approval  approval.Gate
	Config    config.PipelineConfig
	Quality   config.QualityConfig
	Bus       *events.Bus
	Metrics   *events.Metrics
}

// NewExecutor constructs an Executor from its dependencies.
func NewExecutor(envelope *agent.Envelope, specs AgentSpecs, pub agent.PublisherConfig, gate approval.Gate, pipelineCfg config.PipelineConfig, qualityCfg config.QualityConfig, bus *events.Bus, metrics *events.Metrics) *Executor {
	return &Executor{
		Envelope:  envelope,
		Specs:     specs,
		Publisher: pub,
		Approval:  gate,
		Config:    pipelineCfg,
		Quality:   qualityCfg,
		Bus:       bus,
		Metrics:   metrics,
	}
}

// Run drives doc (expected to be in state.Created) through the pipeline
// until it reaches a terminal state, honoring ctx for cancellation. It
// never panics or returns an error for ordinary pipeline failures — every
// outcome, success or failure, is reported through the returned Result
// (§7: "the Executor never throws; it always produces a PipelineResult").
func (e *Executor) Run(ctx context.Context, doc *document.Document) *Result {
	start := time.Now()
	topic := doc.Brief().Topic

	e.Metrics.RecordPipelineStarted()
	e.emit(events.PipelineStarted, doc, "", doc.State(), fmt.Sprintf("pipeline started for %q", topic))

	revisions := 0

	// pending overrides chooseNext's happy-path lookup for exactly one
	// iteration: a revision edge (applyReviewDecisions) or a REQUEST_CHANGES
	// approval outcome transitions the document directly to the stage that
	// needs rework, and that stage's own agent must run again — chooseNext
	// would otherwise treat "document is sitting in Drafting" as "Drafting's
	// agent already ran", and jump straight to its happy-path successor.
	var pending state.State

	for {
		if ctx.Err() != nil {
			return e.finishCancelled(doc, start)
		}

		cur := doc.State()
		if cur.IsTerminal() {
			break
		}

		var next state.State
		var ok bool
		if pending != "" {
			next, ok, pending = pending, true, ""
		} else {
			next, ok = e.chooseNext(cur)
		}
		if !ok {
			return e.finishFailure(doc, start, cur, fmt.Errorf("pipeline: no successor defined for state %s", cur))
		}

		e.emit(events.PhaseStarted, doc, cur, next, fmt.Sprintf("%s -> %s", cur, next))

		if next == state.Published {
			result, done := e.runPublish(ctx, doc, start, &revisions)
			if done {
				return result
			}
			// runPublish left the document at a REQUEST_CHANGES revert target.
			pending = doc.State()
			continue
		}

		if doc.State() != next {
			if err := doc.TransitionTo(next); err != nil {
				return e.finishFailure(doc, start, cur, err)
			}
		}

		spec, ok := e.Specs.specFor(next)
		if !ok {
			return e.finishFailure(doc, start, next, fmt.Errorf("pipeline: no agent spec for state %s", next))
		}
		if spec.Timeout == 0 && e.Config.PhaseTimeout > 0 {
			spec.Timeout = e.Config.PhaseTimeout
		}

		callStart := time.Now()
		_, err := e.Envelope.Run(ctx, doc, spec)
		e.Metrics.RecordAgentInvocation(spec.Role, time.Since(callStart))
		if err != nil {
			if ctx.Err() != nil {
				return e.finishCancelled(doc, start)
			}
			var failure *agent.AgentFailure
			if errors.As(err, &failure) {
				return e.finishAgentFailure(doc, start, next, failure)
			}
			return e.finishFailure(doc, start, next, err)
		}

		e.emit(events.PhaseCompleted, doc, next, next, fmt.Sprintf("%s completed", next))

		if reverted, result, terminal := e.applyReviewDecisions(doc, next, start, &revisions); terminal {
			return result
		} else if reverted {
			pending = doc.State()
			continue
		}

		revisionsBefore := revisions
		if result, terminal := e.maybeRequestApproval(ctx, doc, next, start, &revisions); terminal {
			return result
		} else if doc.State() != next || revisions != revisionsBefore {
			// an approval gate reverted the document for REQUEST_CHANGES rework
			// (the research and draft gates revert to the stage itself, so the
			// revision count is what shows the revert there).
			pending = doc.State()
		}
	}

	e.Metrics.RecordPipelineCompleted(time.Since(start))
	e.emit(events.PipelineCompleted, doc, doc.State(), doc.State(), fmt.Sprintf("pipeline completed for %q", topic))

	return &Result{
		Success:            true,
		Document:           doc,
		TotalTime:          time.Since(start),
		RevisionsPerformed: doc.TotalRevisions(),
	}
}

// chooseNext implements §4.8.1's phase selection: the State Machine's happy
// flow, except DRAFTING->EDITING when SkipFactCheck and EDITING->PUBLISHED
// when SkipCritique.
func (e *Executor) chooseNext(cur state.State) (state.State, bool) {
	switch cur {
	case state.Drafting:
		if e.Config.SkipFactCheck {
			return state.Editing, true
		}
	case state.Editing:
		if e.Config.SkipCritique {
			return state.Published, true
		}
	}
	return state.NextInHappyFlow(cur)
}

// runPublish executes the deterministic Publisher stage: it does not
// pre-transition the document (agent.Publish does that itself, matching
// its own transition-on-success contract), and it is not wrapped in the
// retry envelope since the Publisher makes no LLM call (§4.5). If a
// beforePublish gate is configured it is consulted first, against the
// document's current (pre-Published) state; a REQUEST_CHANGES verdict
// returns (nil, false) so the main loop resumes at the reverted state
// instead of publishing.
func (e *Executor) runPublish(ctx context.Context, doc *document.Document, start time.Time, revisions *int) (*Result, bool) {
	if e.gateEnabled(state.Published) {
		preState := doc.State()
		if err := doc.TransitionTo(state.AwaitingApproval); err != nil {
			return e.finishFailure(doc, start, preState, err), true
		}
		e.Metrics.RecordApprovalRequested()
		e.emit(events.ApprovalRequested, doc, preState, state.AwaitingApproval, "awaiting approval before publish")

		outcome, err := e.requestApproval(ctx, doc, state.Published)
		if err != nil {
			return e.finishApprovalTimeout(doc, start, preState, err), true
		}

		result, terminal, proceed := e.applyApprovalOutcome(doc, state.Published, preState, outcome, start, revisions)
		if terminal {
			return result, true
		}
		if !proceed {
			// REQUEST_CHANGES reverted the document to an earlier stage;
			// let the main loop pick it back up from there.
			return nil, false
		}
	}

	path, err := agent.Publish(doc, e.Publisher)
	if err != nil {
		return e.finishFailure(doc, start, doc.State(), err), true
	}
	e.emit(events.PhaseCompleted, doc, state.Published, state.Published, fmt.Sprintf("published to %s", path))
	e.Metrics.RecordPipelineCompleted(time.Since(start))
	e.emit(events.PipelineCompleted, doc, state.Published, state.Published, "pipeline completed")
	return &Result{
		Success:            true,
		Document:           doc,
		OutputPath:         path,
		TotalTime:          time.Since(start),
		RevisionsPerformed: doc.TotalRevisions(),
	}, true
}

func (e *Executor) emit(t events.Type, doc *document.Document, prev, cur state.State, message string) {
	snap := doc.Snapshot()
	e.Bus.Emit(events.Event{
		ID:            doc.ID(),
		Type:          t,
		Topic:         doc.Brief().Topic,
		PreviousState: prev,
		CurrentState:  cur,
		Message:       message,
		Timestamp:     time.Now().UTC(),
		Document:      &snap,
	})
}

func (e *Executor) finishFailure(doc *document.Document, start time.Time, failedAt state.State, err error) *Result {
	e.Metrics.RecordPipelineFailed(failedAt, time.Since(start))
	e.emit(events.PipelineFailed, doc, failedAt, doc.State(), err.Error())
	return &Result{
		Success:            false,
		Document:           doc,
		TotalTime:          time.Since(start),
		ErrorMessage:       err.Error(),
		FailedAtState:      failedAt,
		RevisionsPerformed: doc.TotalRevisions(),
	}
}

// finishAgentFailure implements the main loop's catch clause (§4.8): it
// persists a debug dump of any partial content (§4.8.3), transitions the
// document to REJECTED, and emits PIPELINE_FAILED.
func (e *Executor) finishAgentFailure(doc *document.Document, start time.Time, failedAt state.State, failure *agent.AgentFailure) *Result {
	dumpPath, dumpErr := e.persistFailureDocument(doc, failure)
	if dumpErr != nil {
		dumpPath = ""
	}

	_ = doc.TransitionTo(state.Rejected)

	e.Metrics.RecordPipelineFailed(failedAt, time.Since(start))
	e.emit(events.PipelineFailed, doc, failedAt, state.Rejected, failure.Error())

	return &Result{
		Success:            false,
		Document:           doc,
		TotalTime:          time.Since(start),
		ErrorMessage:       failure.Error(),
		FailedAtState:      failedAt,
		FailedDocumentPath: dumpPath,
		RevisionsPerformed: doc.TotalRevisions(),
	}
}

func (e *Executor) finishCancelled(doc *document.Document, start time.Time) *Result {
	_ = doc.TransitionTo(state.Rejected)
	e.Metrics.RecordPipelineCancelled(time.Since(start))
	e.emit(events.PipelineFailed, doc, doc.State(), state.Rejected, "cancelled")
	return &Result{
		Success:            false,
		Document:           doc,
		TotalTime:          time.Since(start),
		ErrorMessage:       "cancelled",
		RevisionsPerformed: doc.TotalRevisions(),
	}
}
