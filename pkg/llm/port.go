// Package llm declares the LLM Port (C3): the single abstraction through
// which the pipeline talks to a large language model, plus the concrete
// adapters that implement it. Everything outside this package is pure
// CPU/memory — network I/O happens only behind Client.Generate.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable signals a transient failure to reach the LLM backend
// (connection refused, 5xx, etc). Retryable by the Agent Envelope.
var ErrUnavailable = errors.New("llm: provider unavailable")

// ErrTimeout signals the call did not complete within its deadline.
// Retryable by the Agent Envelope.
var ErrTimeout = errors.New("llm: call timed out")

// Client is the LLM Port contract: generate(system, user, temperature,
// timeout) -> text, per §4.3 of the specification.
type Client interface {
	// Generate issues one (system, user) prompt pair at the given sampling
	// temperature and returns the model's raw text response. The call must
	// not exceed timeout; on expiry it returns an error wrapping ErrTimeout.
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, timeout time.Duration) (string, error)
}
