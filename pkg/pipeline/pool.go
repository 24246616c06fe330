package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jakefearsd/contentpipeline/pkg/config"
	"github.com/jakefearsd/contentpipeline/pkg/document"
)

// ErrPoolStopped is returned by Submit once Shutdown has been called.
var ErrPoolStopped = errors.New("pipeline: run pool is shutting down")

// job is one accepted run awaiting a worker.
type job struct {
	ctx      context.Context
	doc      *document.Document
	resultCh chan *Result
}

// RunPool bounds how many pipeline runs execute concurrently (§4.8.5),
// grounded on the teacher's pkg/queue.WorkerPool: a fixed number of worker
// goroutines draining a buffered job queue, plus a cancel-function registry
// keyed by document ID so an individual in-flight run can be cancelled
// without tearing down the pool. Unlike the teacher, which polls a database
// for pending sessions, a RunPool's queue is purely in-process — it does
// not persist queued work across a restart (no non-goal violated: §4.8.5
// is explicit that this is "still in-process, best-effort").
type RunPool struct {
	executor *Executor
	jobs     chan job

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	stopped bool

	wg sync.WaitGroup
}

// NewRunPool constructs a RunPool bound to executor and starts its worker
// goroutines. executor may be shared safely across concurrent runs: Run
// holds no state beyond its arguments and a per-call local revision count.
func NewRunPool(cfg config.RunPoolConfig, executor *Executor) *RunPool {
	p := &RunPool{
		executor: executor,
		jobs:     make(chan job, cfg.QueueCapacity),
		cancels:  make(map[string]context.CancelFunc),
	}
	for i := 0; i < cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *RunPool) worker(id int) {
	defer p.wg.Done()
	log := slog.With("worker", id)
	for j := range p.jobs {
		log.Info("run accepted", "document_id", j.doc.ID())
		j.resultCh <- p.execute(j)
	}
}

func (p *RunPool) execute(j job) *Result {
	runCtx, cancel := context.WithCancel(j.ctx)
	defer cancel()

	p.registerCancel(j.doc.ID(), cancel)
	defer p.unregisterCancel(j.doc.ID())

	return p.executor.Run(runCtx, j.doc)
}

func (p *RunPool) registerCancel(id string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancels[id] = cancel
}

func (p *RunPool) unregisterCancel(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cancels, id)
}

// CancelRun cancels the in-flight run for the given document ID, if one is
// registered on this pool. Returns true if a run was found and cancelled.
func (p *RunPool) CancelRun(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cancel, ok := p.cancels[id]
	if !ok {
		return false
	}
	cancel()
	return true
}

// Submit enqueues doc and blocks until a worker has produced a Result, ctx
// is cancelled, or the pool has been shut down. Submit is safe to call
// concurrently from multiple goroutines.
func (p *RunPool) Submit(ctx context.Context, doc *document.Document) (*Result, error) {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return nil, ErrPoolStopped
	}

	j := job{ctx: ctx, doc: doc, resultCh: make(chan *Result, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-j.resultCh:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops accepting new runs and waits for in-flight runs to finish,
// up to ctx's deadline. Already-queued-but-unstarted jobs still run to
// completion; Submit after Shutdown has been called returns ErrPoolStopped.
func (p *RunPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline: shutdown timed out waiting for in-flight runs: %w", ctx.Err())
	}
}
