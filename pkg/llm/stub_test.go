package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubClient_ReturnsQueuedCallsInOrder(t *testing.T) {
	c := NewStubClient(
		ScriptedCall{Text: `{"a":1}`},
		ScriptedCall{Text: `{"a":2}`},
	)

	text, err := c.Generate(context.Background(), "sys", "user1", 0.3, time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	text, err = c.Generate(context.Background(), "sys", "user2", 0.3, time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, text)

	assert.Equal(t, 2, c.CallCount())
	require.Len(t, c.Requests, 2)
	assert.Equal(t, "user1", c.Requests[0].UserPrompt)
}

func TestStubClient_RepeatsLastCallWhenExhausted(t *testing.T) {
	c := NewStubClient(ScriptedCall{Text: "only"})

	text, err := c.Generate(context.Background(), "s", "u", 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "only", text)

	text, err = c.Generate(context.Background(), "s", "u", 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "only", text)
}

func TestStubClient_PropagatesScriptedError(t *testing.T) {
	boom := errors.New("boom")
	c := NewStubClient(ScriptedCall{Err: boom})

	_, err := c.Generate(context.Background(), "s", "u", 0, time.Second)
	assert.ErrorIs(t, err, boom)
}

func TestStubClient_DelayExceedingTimeoutYieldsTimeoutError(t *testing.T) {
	c := NewStubClient(ScriptedCall{Text: "late", Delay: 50 * time.Millisecond})

	_, err := c.Generate(context.Background(), "s", "u", 0, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestStubClient_ContextCancellationDuringDelay(t *testing.T) {
	c := NewStubClient(ScriptedCall{Text: "late", Delay: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "s", "u", 0, time.Minute)
	assert.ErrorIs(t, err, ErrTimeout)
}
