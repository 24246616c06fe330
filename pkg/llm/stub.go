package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ScriptedCall is one queued response for StubClient. Exactly one of Text
// or Err should be set; Delay (if any) is applied before returning, so
// tests can exercise the Agent Envelope's timeout handling.
type ScriptedCall struct {
	Text  string
	Err   error
	Delay time.Duration
}

// StubClient is a scriptable, in-memory fake for the LLM Port. Every
// Agent Envelope and Pipeline Executor test in this repo drives one of
// these instead of a real network call, in the style of the teacher's
// hand-written mock* test doubles (see pkg/agent/controller/scoring_test.go
// in the reference corpus).
//
// Calls are queued in order; Generate pops the next scripted call for each
// invocation. If the queue is exhausted, Generate returns the last queued
// call again (or an error if none were ever queued), so a test can assert
// "the pipeline reached PUBLISHED" without scripting every remaining call.
type StubClient struct {
	mu    sync.Mutex
	calls []ScriptedCall
	next  int

	// Requests records every (system, user, temperature) triple passed to
	// Generate, in call order, for assertions on prompt content.
	Requests []Request
}

// Request is one recorded call to StubClient.Generate.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// NewStubClient creates a StubClient that will return the given scripted
// calls in order.
func NewStubClient(calls ...ScriptedCall) *StubClient {
	return &StubClient{calls: calls}
}

// Enqueue appends additional scripted calls, useful when a test wants to
// react to earlier calls before deciding what comes next.
func (s *StubClient) Enqueue(calls ...ScriptedCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, calls...)
}

// Generate implements Client.
func (s *StubClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, timeout time.Duration) (string, error) {
	s.mu.Lock()
	if len(s.calls) == 0 {
		s.mu.Unlock()
		return "", fmt.Errorf("llm: stub client has no scripted calls")
	}
	idx := s.next
	if idx >= len(s.calls) {
		idx = len(s.calls) - 1
	} else {
		s.next++
	}
	call := s.calls[idx]
	s.Requests = append(s.Requests, Request{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Temperature: temperature})
	s.mu.Unlock()

	if call.Delay > 0 {
		select {
		case <-time.After(call.Delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
	}
	if call.Delay > timeout {
		return "", fmt.Errorf("%w: scripted delay %v exceeds timeout %v", ErrTimeout, call.Delay, timeout)
	}
	if call.Err != nil {
		return "", call.Err
	}
	return call.Text, nil
}

// CallCount returns how many times Generate has been invoked.
func (s *StubClient) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
