package agent

import (
	"errors"
	"fmt"
)

// ErrResponseNotJSON is wrapped by ExtractJSON when the raw LLM response
// does not contain a decodable JSON object.
var ErrResponseNotJSON = errors.New("agent: response does not contain a JSON object")

// ParseError reports that a JSON object was extracted from the response but
// a required field was missing, of the wrong type, or otherwise unusable.
type ParseError struct {
	Role  string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("agent %s: parse error: %v", e.Role, e.Err)
	}
	return fmt.Sprintf("agent %s: parse error on field %q: %v", e.Role, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports that a successfully parsed artifact failed one of
// the agent's domain invariants (e.g. an empty outline, an out-of-range
// score).
type ValidationError struct {
	Role   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("agent %s: validation failed: %s", e.Role, e.Reason)
}

// AgentFailure is returned by Envelope.Run when every attempt (the initial
// call plus all corrective reprompts) has been exhausted without producing
// a valid artifact. LastErr is the error from the final attempt; LastResponse
// is the raw text of the final attempt, kept for diagnostics and failure
// dumps (§4.8.3).
type AgentFailure struct {
	Role         string
	Attempts     int
	LastErr      error
	LastResponse string
}

func (e *AgentFailure) Error() string {
	return fmt.Sprintf("agent %s: failed after %d attempt(s): %v", e.Role, e.Attempts, e.LastErr)
}

func (e *AgentFailure) Unwrap() error { return e.LastErr }
