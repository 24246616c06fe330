// Package document defines the Document — the mutable container that
// carries a brief through the pipeline, accumulating per-phase artifacts,
// an append-only contribution log, and a State Machine (pkg/state) backed
// state field. A Document is exclusively owned by one Executor for the
// life of a run; see the doc comment on Snapshot for the one
// sanctioned way to hand a read-only view to other goroutines.
package document

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakefearsd/contentpipeline/pkg/state"
)

// Contribution is one append-only log entry recording an agent's work on
// the document. Entries are never mutated or removed once appended.
type Contribution struct {
	AgentRole string
	StartedAt time.Time
	Duration  time.Duration
	Metrics   map[string]any
	Summary   string
}

// Document is the per-run mutable container described in §3 of the spec.
// Not thread-safe for writers — the executor is the single writer — but
// getters and Snapshot take the read lock so concurrent event listeners
// may safely inspect it.
type Document struct {
	mu sync.RWMutex

	id        string
	createdAt time.Time
	st        state.State
	brief     Brief

	researchBrief   *ResearchBrief
	draft           *ArticleDraft
	factCheckReport *FactCheckReport
	finalArticle    *FinalArticle
	criticReport    *CriticReport

	contributions []Contribution
	revisionCount map[state.State]int
}

// New creates a Document in state Created for the given brief.
func New(brief Brief) *Document {
	return &Document{
		id:            uuid.New().String(),
		createdAt:     time.Now(),
		st:            state.Created,
		brief:         brief,
		revisionCount: make(map[state.State]int),
	}
}

func (d *Document) ID() string          { return d.id }
func (d *Document) CreatedAt() time.Time { return d.createdAt }
func (d *Document) Brief() Brief        { return d.brief }

// State returns the document's current phase.
func (d *Document) State() state.State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st
}

// ErrTerminal is returned by every mutator when the document has already
// reached a terminal state (§3 invariant: terminal documents are immutable).
var ErrTerminal = fmt.Errorf("document is in a terminal state and cannot be mutated")

// TransitionTo moves the document to target if, and only if, the move is
// legal per the State Machine's transition table and the document is not
// already terminal. Any other attempted mutation is a programming error
// per §3 — callers that need conditional logic belong in pkg/pipeline, not
// here.
func (d *Document) TransitionTo(target state.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.st.IsTerminal() {
		return ErrTerminal
	}
	if err := state.Validate(d.st, target); err != nil {
		return err
	}
	d.st = target
	return nil
}

// ResearchBrief returns the research artifact, or nil if not yet produced.
func (d *Document) ResearchBrief() *ResearchBrief {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.researchBrief
}

// SetResearchBrief records the Researcher's artifact. Fails if the document
// is terminal.
func (d *Document) SetResearchBrief(rb ResearchBrief) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st.IsTerminal() {
		return ErrTerminal
	}
	d.researchBrief = &rb
	return nil
}

// Draft returns the Writer's artifact, or nil if not yet produced.
func (d *Document) Draft() *ArticleDraft {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.draft
}

// SetDraft records the Writer's artifact.
func (d *Document) SetDraft(draft ArticleDraft) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st.IsTerminal() {
		return ErrTerminal
	}
	d.draft = &draft
	return nil
}

// FactCheckReport returns the FactChecker's artifact, or nil if not yet
// produced.
func (d *Document) FactCheckReport() *FactCheckReport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.factCheckReport
}

// SetFactCheckReport records the FactChecker's artifact.
func (d *Document) SetFactCheckReport(r FactCheckReport) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st.IsTerminal() {
		return ErrTerminal
	}
	d.factCheckReport = &r
	return nil
}

// FinalArticle returns the Editor's artifact, or nil if not yet produced.
func (d *Document) FinalArticle() *FinalArticle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.finalArticle
}

// SetFinalArticle records the Editor's artifact. QualityScore is clamped to
// [0,1] per the envelope's field-parsing step, regardless of what the
// caller passed in.
func (d *Document) SetFinalArticle(a FinalArticle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st.IsTerminal() {
		return ErrTerminal
	}
	a.QualityScore = clamp01(a.QualityScore)
	d.finalArticle = &a
	return nil
}

// CriticReport returns the Critic's artifact, or nil if not yet produced.
func (d *Document) CriticReport() *CriticReport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.criticReport
}

// SetCriticReport records the Critic's artifact. All four scores are
// clamped to [0,1].
func (d *Document) SetCriticReport(r CriticReport) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st.IsTerminal() {
		return ErrTerminal
	}
	r.OverallScore = clamp01(r.OverallScore)
	r.StructureScore = clamp01(r.StructureScore)
	r.SyntaxScore = clamp01(r.SyntaxScore)
	r.ReadabilityScore = clamp01(r.ReadabilityScore)
	d.criticReport = &r
	return nil
}

// RecordContribution appends a contribution log entry. Contributions are
// append-only; ordering equals execution order (§3 invariant).
func (d *Document) RecordContribution(c Contribution) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st.IsTerminal() {
		return ErrTerminal
	}
	d.contributions = append(d.contributions, c)
	return nil
}

// Contributions returns a copy of the append-only contribution log.
func (d *Document) Contributions() []Contribution {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Contribution, len(d.contributions))
	copy(out, d.contributions)
	return out
}

// IncrementRevision bumps the revision counter for the edge originating at
// from (e.g. FactChecking or Critiquing) and returns the new count. Callers
// in pkg/pipeline compare this against maxRevisionCycles.
func (d *Document) IncrementRevision(from state.State) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revisionCount[from]++
	return d.revisionCount[from]
}

// RevisionCount returns the number of revision edges taken from the given
// state so far.
func (d *Document) RevisionCount(from state.State) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revisionCount[from]
}

// TotalRevisions returns the sum of all revision edges taken, regardless of
// origin — the quantity §8's "revisionsPerformed ≤ maxRevisionCycles"
// invariant is checked against.
func (d *Document) TotalRevisions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	total := 0
	for _, c := range d.revisionCount {
		total += c
	}
	return total
}

// Snapshot is a read-only, deep-copied view of a Document's current
// artifacts and contribution log, safe to pass to event listeners that
// must not observe (or be blamed for racing on) the live, mutable Document.
type Snapshot struct {
	ID              string
	CreatedAt       time.Time
	State           state.State
	Brief           Brief
	ResearchBrief   *ResearchBrief
	Draft           *ArticleDraft
	FactCheckReport *FactCheckReport
	FinalArticle    *FinalArticle
	CriticReport    *CriticReport
	Contributions   []Contribution
}

// Snapshot takes the read lock once and copies every field, so the result
// may be handed to an event bus listener running on another goroutine.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	contributions := make([]Contribution, len(d.contributions))
	copy(contributions, d.contributions)

	s := Snapshot{
		ID:            d.id,
		CreatedAt:     d.createdAt,
		State:         d.st,
		Brief:         d.brief,
		Contributions: contributions,
	}
	if d.researchBrief != nil {
		rb := *d.researchBrief
		s.ResearchBrief = &rb
	}
	if d.draft != nil {
		dr := *d.draft
		s.Draft = &dr
	}
	if d.factCheckReport != nil {
		fc := *d.factCheckReport
		s.FactCheckReport = &fc
	}
	if d.finalArticle != nil {
		fa := *d.finalArticle
		s.FinalArticle = &fa
	}
	if d.criticReport != nil {
		cr := *d.criticReport
		s.CriticReport = &cr
	}
	return s
}
