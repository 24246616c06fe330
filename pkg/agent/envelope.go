// Package agent implements the Agent Execution Envelope (C4) — the single
// prompt-assembly -> LLM call -> parse -> validate -> retry wrapper shared
// by every agent implementation (C5) — grounded on the reference corpus's
// SingleShotController/ScoringController call-and-retry pattern.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/llm"
)

// maxExtraAttempts is K in the spec's "up to K=2 extra attempts (total 3)".
const maxExtraAttempts = 2

// defaultBackoff is the fixed delay between retry attempts.
const defaultBackoff = 500 * time.Millisecond

// defaultTimeout bounds a single LLM call when an AgentSpec does not
// override it.
const defaultTimeout = 30 * time.Second

// AgentSpec describes one agent's contribution to the envelope: what
// prompts to send, how to turn a decoded JSON object into a typed artifact,
// and how to apply that artifact to the Document. Each of the five
// LLM-backed agents in this package builds one of these and hands it to
// Envelope.Run; none of them touch the retry loop directly.
type AgentSpec struct {
	Role         string
	SystemPrompt string
	Temperature  float64
	Timeout      time.Duration // zero means defaultTimeout

	// BuildUserPrompt assembles the user-turn prompt from the document's
	// current artifacts. Called once per attempt; correction text (if any)
	// from a prior failed attempt is appended by the envelope afterward.
	BuildUserPrompt func(doc *document.Document) (string, error)

	// ParseAndValidate turns the raw decoded JSON object into a typed
	// artifact and applies the agent's semantic invariants (§4.4.4–4.4.5).
	// It receives the document so validators that depend on the brief (e.g.
	// the Writer's word-count and required-section checks) can consult it.
	// Returns a *ParseError or *ValidationError (or a wrapped one) on
	// failure; the envelope uses the returned error's text to build the
	// corrective reprompt.
	ParseAndValidate func(doc *document.Document, raw map[string]any) (artifact any, err error)

	// Apply writes the artifact onto the document (e.g. doc.SetDraft).
	Apply func(doc *document.Document, artifact any) error
}

// Envelope runs AgentSpecs against an llm.Client.
type Envelope struct {
	Client llm.Client
}

// NewEnvelope constructs an Envelope bound to client.
func NewEnvelope(client llm.Client) *Envelope {
	return &Envelope{Client: client}
}

// Run executes spec's prompt -> call -> parse -> validate -> retry cycle
// against doc, per §4.4 steps 1-7. On success the artifact has already been
// applied to doc and a contribution has been recorded; the artifact is also
// returned for callers that want it directly (e.g. the Pipeline Executor
// deciding on a revision edge). On exhausted retries it returns
// *AgentFailure and leaves doc's state untouched.
func (e *Envelope) Run(ctx context.Context, doc *document.Document, spec AgentSpec) (any, error) {
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userPrompt, err := spec.BuildUserPrompt(doc)
	if err != nil {
		return nil, fmt.Errorf("agent %s: building prompt: %w", spec.Role, err)
	}

	bo := backoff.NewConstantBackOff(defaultBackoff)

	var lastErr error
	var lastResponse string

	for attempt := 1; attempt <= maxExtraAttempts+1; attempt++ {
		started := time.Now()

		raw, callErr := e.Client.Generate(ctx, spec.SystemPrompt, userPrompt, spec.Temperature, timeout)
		if callErr != nil {
			lastErr = fmt.Errorf("llm call: %w", callErr)
			lastResponse = ""
		} else {
			lastResponse = raw
			obj, extractErr := ExtractJSON(raw)
			if extractErr != nil {
				lastErr = extractErr
			} else {
				artifact, parseErr := spec.ParseAndValidate(doc, obj)
				if parseErr != nil {
					lastErr = parseErr
				} else {
					if applyErr := spec.Apply(doc, artifact); applyErr != nil {
						return nil, fmt.Errorf("agent %s: applying artifact: %w", spec.Role, applyErr)
					}
					_ = doc.RecordContribution(document.Contribution{
						AgentRole: spec.Role,
						StartedAt: started,
						Duration:  time.Since(started),
						Metrics: map[string]any{
							"attempts":      attempt,
							"responseChars": len(raw),
						},
						Summary: fmt.Sprintf("%s succeeded on attempt %d/%d", spec.Role, attempt, maxExtraAttempts+1),
					})
					return artifact, nil
				}
			}
		}

		if attempt == maxExtraAttempts+1 {
			break
		}

		userPrompt = correctivePrompt(userPrompt, lastResponse, lastErr)

		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			return nil, fmt.Errorf("agent %s: %w", spec.Role, ctx.Err())
		}
	}

	return nil, &AgentFailure{
		Role:         spec.Role,
		Attempts:     maxExtraAttempts + 1,
		LastErr:      lastErr,
		LastResponse: lastResponse,
	}
}

// correctivePrompt appends the prior response and a short description of
// what was wrong with it to the original prompt, so the next attempt can
// fix it without re-deriving the whole task from scratch.
func correctivePrompt(original, priorResponse string, failure error) string {
	if priorResponse == "" {
		return fmt.Sprintf(
			"%s\n\nYour previous attempt failed: %v. The LLM call itself did not succeed; please try again and respond with a single JSON object as instructed.",
			original, failure,
		)
	}
	return fmt.Sprintf(
		"%s\n\nYour previous response was:\n%s\n\nThat response was invalid: %v. Correct the problem and respond again with a single JSON object matching the required shape.",
		original, priorResponse, failure,
	)
}
