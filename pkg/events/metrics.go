package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jakefearsd/contentpipeline/pkg/state"
)

// Metrics is the fully thread-safe aggregate described in §4.7: atomic
// counters/gauges for pipeline outcomes, revisions, approvals, per-agent
// invocation stats, and overall processing-time extremes. Grounded on the
// teacher's sync/atomic counter style (pkg/agent/orchestrator), generalized
// into one explicit struct constructed once per process and passed by
// reference rather than held in package-level state.
type Metrics struct {
	startedAt time.Time

	pipelinesStarted   atomic.Int64
	pipelinesCompleted atomic.Int64
	pipelinesFailed    atomic.Int64
	pipelinesCancelled atomic.Int64
	revisionCycles     atomic.Int64
	approvalsRequested atomic.Int64
	approvalsGranted   atomic.Int64
	approvalsRejected  atomic.Int64

	mu                sync.Mutex
	failuresByState   map[state.State]int64
	agentInvocations  map[string]int64
	agentTotalNanos   map[string]int64
	processingMinNs   int64
	processingMaxNs   int64
	processingSumNs   int64
	processingCount   int64
}

// NewMetrics constructs an empty Metrics with Uptime measured from now.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:        time.Now(),
		failuresByState:  make(map[state.State]int64),
		agentInvocations: make(map[string]int64),
		agentTotalNanos:  make(map[string]int64),
	}
}

// RecordPipelineStarted increments the started counter.
func (m *Metrics) RecordPipelineStarted() { m.pipelinesStarted.Add(1) }

// RecordPipelineCompleted increments the completed counter and folds
// elapsed into the overall min/avg/max.
func (m *Metrics) RecordPipelineCompleted(elapsed time.Duration) {
	m.pipelinesCompleted.Add(1)
	m.recordProcessingTime(elapsed)
}

// RecordPipelineFailed increments the failed counter, attributes the
// failure to failedAt, and folds elapsed into the overall min/avg/max.
func (m *Metrics) RecordPipelineFailed(failedAt state.State, elapsed time.Duration) {
	m.pipelinesFailed.Add(1)
	m.mu.Lock()
	m.failuresByState[failedAt]++
	m.mu.Unlock()
	m.recordProcessingTime(elapsed)
}

// RecordPipelineCancelled increments the cancelled counter.
func (m *Metrics) RecordPipelineCancelled(elapsed time.Duration) {
	m.pipelinesCancelled.Add(1)
	m.recordProcessingTime(elapsed)
}

func (m *Metrics) recordProcessingTime(elapsed time.Duration) {
	ns := elapsed.Nanoseconds()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingCount++
	m.processingSumNs += ns
	if m.processingMinNs == 0 || ns < m.processingMinNs {
		m.processingMinNs = ns
	}
	if ns > m.processingMaxNs {
		m.processingMaxNs = ns
	}
}

// RecordRevision increments the revision-cycle counter.
func (m *Metrics) RecordRevision() { m.revisionCycles.Add(1) }

// RecordApprovalRequested increments the approvals-requested counter.
func (m *Metrics) RecordApprovalRequested() { m.approvalsRequested.Add(1) }

// RecordApprovalGranted increments the approvals-granted counter.
func (m *Metrics) RecordApprovalGranted() { m.approvalsGranted.Add(1) }

// RecordApprovalRejected increments the approvals-rejected counter.
func (m *Metrics) RecordApprovalRejected() { m.approvalsRejected.Add(1) }

// RecordAgentInvocation folds one agent call's elapsed time into the
// per-agent invocation count and cumulative time.
func (m *Metrics) RecordAgentInvocation(role string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agentInvocations[role]++
	m.agentTotalNanos[role] += elapsed.Nanoseconds()
}

// Snapshot is a point-in-time, JSON-serializable read of every metric,
// including the derived success rate and per-agent averages — the shape
// exposed read-only via GET /metrics (§6).
type Snapshot struct {
	PipelinesStarted   int64                    `json:"pipelinesStarted"`
	PipelinesCompleted int64                    `json:"pipelinesCompleted"`
	PipelinesFailed    int64                    `json:"pipelinesFailed"`
	PipelinesCancelled int64                    `json:"pipelinesCancelled"`
	SuccessRate        float64                  `json:"successRate"`
	RevisionCycles     int64                    `json:"revisionCycles"`
	ApprovalsRequested int64                    `json:"approvalsRequested"`
	ApprovalsGranted   int64                    `json:"approvalsGranted"`
	ApprovalsRejected  int64                    `json:"approvalsRejected"`
	FailuresByState    map[string]int64         `json:"failuresByState"`
	Agents             map[string]AgentSnapshot `json:"agents"`
	MinProcessingTime  time.Duration            `json:"minProcessingTimeNs"`
	MaxProcessingTime  time.Duration            `json:"maxProcessingTimeNs"`
	AvgProcessingTime  time.Duration            `json:"avgProcessingTimeNs"`
	UptimeSeconds      float64                  `json:"uptimeSeconds"`
}

// AgentSnapshot is one agent's invocation count and average call time.
type AgentSnapshot struct {
	Invocations int64         `json:"invocations"`
	TotalTime   time.Duration `json:"totalTimeNs"`
	AvgTime     time.Duration `json:"avgTimeNs"`
}

// Snapshot computes derived metrics (success rate, per-agent averages,
// overall average processing time) and returns them alongside the raw
// counters.
func (m *Metrics) Snapshot() Snapshot {
	started := m.pipelinesStarted.Load()
	completed := m.pipelinesCompleted.Load()
	failed := m.pipelinesFailed.Load()
	cancelled := m.pipelinesCancelled.Load()

	var successRate float64
	if finished := completed + failed + cancelled; finished > 0 {
		successRate = float64(completed) / float64(finished)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	failuresByState := make(map[string]int64, len(m.failuresByState))
	for s, n := range m.failuresByState {
		failuresByState[string(s)] = n
	}

	agents := make(map[string]AgentSnapshot, len(m.agentInvocations))
	for role, n := range m.agentInvocations {
		total := time.Duration(m.agentTotalNanos[role])
		var avg time.Duration
		if n > 0 {
			avg = total / time.Duration(n)
		}
		agents[role] = AgentSnapshot{Invocations: n, TotalTime: total, AvgTime: avg}
	}

	var avgProcessing time.Duration
	if m.processingCount > 0 {
		avgProcessing = time.Duration(m.processingSumNs / m.processingCount)
	}

	return Snapshot{
		PipelinesStarted:   started,
		PipelinesCompleted: completed,
		PipelinesFailed:    failed,
		PipelinesCancelled: cancelled,
		SuccessRate:        successRate,
		RevisionCycles:     m.revisionCycles.Load(),
		ApprovalsRequested: m.approvalsRequested.Load(),
		ApprovalsGranted:   m.approvalsGranted.Load(),
		ApprovalsRejected:  m.approvalsRejected.Load(),
		FailuresByState:    failuresByState,
		Agents:             agents,
		MinProcessingTime:  time.Duration(m.processingMinNs),
		MaxProcessingTime:  time.Duration(m.processingMaxNs),
		AvgProcessingTime:  avgProcessing,
		UptimeSeconds:      time.Since(m.startedAt).Seconds(),
	}
}

// Reset zeroes every counter, for test isolation (§4.7).
func (m *Metrics) Reset() {
	m.pipelinesStarted.Store(0)
	m.pipelinesCompleted.Store(0)
	m.pipelinesFailed.Store(0)
	m.pipelinesCancelled.Store(0)
	m.revisionCycles.Store(0)
	m.approvalsRequested.Store(0)
	m.approvalsGranted.Store(0)
	m.approvalsRejected.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresByState = make(map[state.State]int64)
	m.agentInvocations = make(map[string]int64)
	m.agentTotalNanos = make(map[string]int64)
	m.processingMinNs = 0
	m.processingMaxNs = 0
	m.processingSumNs = 0
	m.processingCount = 0
	m.startedAt = time.Now()
}
