package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakefearsd/contentpipeline/pkg/config"
	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/llm"
	"github.com/jakefearsd/contentpipeline/pkg/state"
)

func testRunPoolConfig() config.RunPoolConfig {
	return config.RunPoolConfig{WorkerCount: 2, QueueCapacity: 4}
}

func TestRunPool_SubmitRunsToCompletion(t *testing.T) {
	dir := t.TempDir()
	client := llm.NewStubClient(
		llm.ScriptedCall{Text: researchResponse(3, 2)},
		llm.ScriptedCall{Text: draftResponse(120)},
		llm.ScriptedCall{Text: factCheckResponse("HIGH", "APPROVE", 2)},
		llm.ScriptedCall{Text: editorResponse(120, 0.9)},
		llm.ScriptedCall{Text: criticResponse("APPROVE", 0.9)},
	)
	executor := newTestExecutor(client, defaultPipelineConfig(), defaultQualityConfig(), nil, dir)
	pool := NewRunPool(testRunPoolConfig(), executor)
	defer pool.Shutdown(context.Background())

	doc := document.New(testBrief())
	result, err := pool.Submit(context.Background(), doc)

	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, state.Published, doc.State())
}

func TestRunPool_CancelRunStopsInFlightWork(t *testing.T) {
	dir := t.TempDir()
	client := llm.NewStubClient(
		llm.ScriptedCall{Text: researchResponse(3, 2), Delay: 200 * time.Millisecond},
	)
	executor := newTestExecutor(client, defaultPipelineConfig(), defaultQualityConfig(), nil, dir)
	pool := NewRunPool(testRunPoolConfig(), executor)
	defer pool.Shutdown(context.Background())

	doc := document.New(testBrief())

	resultCh := make(chan *Result, 1)
	go func() {
		result, _ := pool.Submit(context.Background(), doc)
		resultCh <- result
	}()

	// Give the worker a moment to pick up the job and register its cancel
	// func before we try to cancel it.
	require.Eventually(t, func() bool {
		return pool.CancelRun(doc.ID())
	}, time.Second, 5*time.Millisecond)

	result := <-resultCh
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.NotEqual(t, state.Published, doc.State())
}

func TestRunPool_SubmitAfterShutdownFails(t *testing.T) {
	dir := t.TempDir()
	client := llm.NewStubClient()
	executor := newTestExecutor(client, defaultPipelineConfig(), defaultQualityConfig(), nil, dir)
	pool := NewRunPool(testRunPoolConfig(), executor)

	require.NoError(t, pool.Shutdown(context.Background()))

	doc := document.New(testBrief())
	_, err := pool.Submit(context.Background(), doc)
	assert.ErrorIs(t, err, ErrPoolStopped)
}
