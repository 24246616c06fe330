package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoGate_AlwaysApproves(t *testing.T) {
	g := AutoGate{}
	o, err := g.RequestApproval(context.Background(), Request{DocumentID: "d1", Phase: "DRAFTING"})
	require.NoError(t, err)
	assert.Equal(t, Approve, o.Decision)
}

func TestConsoleGate_ParsesAnswers(t *testing.T) {
	cases := map[string]Decision{
		"y\n":   Approve,
		"n\n":   Reject,
		"r\n":   Reject,
		"c\n":   RequestChanges,
		"\n":    Approve,
		"yes\n": Approve,
	}
	for input, want := range cases {
		var out bytes.Buffer
		g := NewConsoleGate(strings.NewReader(input), &out)
		o, err := g.RequestApproval(context.Background(), Request{DocumentID: "d1", Phase: "DRAFTING", Timeout: time.Second})
		require.NoError(t, err)
		assert.Equal(t, want, o.Decision, "input %q", input)
	}
}

func TestConsoleGate_ReadsRejectReason(t *testing.T) {
	var out bytes.Buffer
	g := NewConsoleGate(strings.NewReader("R\nnot good enough\n"), &out)
	o, err := g.RequestApproval(context.Background(), Request{DocumentID: "d1", Phase: "AWAITING_APPROVAL", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, Reject, o.Decision)
	assert.Equal(t, "not good enough", o.Reason)
}

func TestConsoleGate_EOFAutoApproves(t *testing.T) {
	var out bytes.Buffer
	g := NewConsoleGate(strings.NewReader(""), &out)
	o, err := g.RequestApproval(context.Background(), Request{DocumentID: "d1", Phase: "DRAFTING", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, Approve, o.Decision)
}

func TestConsoleGate_TimeoutWithNoInput(t *testing.T) {
	g := NewConsoleGate(blockingReader{}, &bytes.Buffer{})
	_, err := g.RequestApproval(context.Background(), Request{DocumentID: "d1", Phase: "DRAFTING", Timeout: 10 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTimeout)
}

// blockingReader never returns, simulating a console nobody is typing into.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestExternalGate_DelegatesToFunc(t *testing.T) {
	g := ExternalGate{Func: func(ctx context.Context, req Request) (Outcome, error) {
		return Outcome{Decision: RequestChanges}, nil
	}}
	o, err := g.RequestApproval(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, RequestChanges, o.Decision)
}

func TestWebhookGate_DeliversPostedDecision(t *testing.T) {
	g := NewWebhookGate()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	resultCh := make(chan Outcome, 1)
	errCh := make(chan error, 1)
	go func() {
		o, err := g.RequestApproval(context.Background(), Request{DocumentID: "doc1", Phase: "EDITING", Timeout: 5 * time.Second})
		resultCh <- o
		errCh <- err
	}()

	// give RequestApproval a moment to register the pending channel
	time.Sleep(20 * time.Millisecond)

	body, _ := json.Marshal(decisionPayload{DocumentID: "doc1", Phase: "EDITING", Decision: Approve})
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.Equal(t, Approve, (<-resultCh).Decision)
	require.NoError(t, <-errCh)
}

func TestWebhookGate_UnknownTokenReturns404(t *testing.T) {
	g := NewWebhookGate()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	body, _ := json.Marshal(decisionPayload{DocumentID: "nope", Phase: "EDITING", Decision: Approve})
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebhookGate_TimesOutWithNoDecision(t *testing.T) {
	g := NewWebhookGate()
	_, err := g.RequestApproval(context.Background(), Request{DocumentID: "doc2", Phase: "RESEARCHING", Timeout: 10 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTimeout)
}
