// Package metrics provides metrics collection and reporting for the MCP server.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metric labels
const (
	labelTool   = "tool"
	labelStatus = "status"
)

// Metrics tracks tool-execution metrics with both internal counters for
// fast in-process access and Prometheus metrics for the /metrics endpoint.
type Metrics struct {
	totalExecutions      atomic.Uint64
	successfulExecutions atomic.Uint64
	failedExecutions     atomic.Uint64
	rateLimitWaits       atomic.Uint64

	toolsMu     sync.RWMutex
	toolUsage   map[string]uint64
	toolErrors  map[string]uint64
	toolLatency map[string]time.Duration

	logger *zap.Logger

	promToolCalls   *prometheus.CounterVec
	promToolLatency *prometheus.HistogramVec
	promRateWaits   prometheus.Counter
}

// New creates a new metrics tracker with Prometheus integration
func New(logger *zap.Logger) *Metrics {
	return &Metrics{
		toolUsage:   make(map[string]uint64),
		toolErrors:  make(map[string]uint64),
		toolLatency: make(map[string]time.Duration),
		logger:      logger,

		promToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yield_mcp",
			Name:      "tool_calls_total",
			Help:      "Total number of tool executions by tool and status",
		}, []string{labelTool, labelStatus}),
		promToolLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "yield_mcp",
			Name:      "tool_latency_seconds",
			Help:      "Tool execution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{labelTool}),
		promRateWaits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "yield_mcp",
			Name:      "rate_limit_waits_total",
			Help:      "Number of tool executions delayed by the rate limiter",
		}),
	}
}

// RecordToolExecution records one tool execution
func (m *Metrics) RecordToolExecution(tool string, success bool, duration time.Duration) {
	m.totalExecutions.Add(1)
	status := "success"
	if success {
		m.successfulExecutions.Add(1)
	} else {
		m.failedExecutions.Add(1)
		status = "error"
	}

	m.toolsMu.Lock()
	m.toolUsage[tool]++
	if !success {
		m.toolErrors[tool]++
	}
	m.toolLatency[tool] += duration
	m.toolsMu.Unlock()

	m.promToolCalls.WithLabelValues(tool, status).Inc()
	m.promToolLatency.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordRateLimitWait records a tool execution delayed by the rate limiter
func (m *Metrics) RecordRateLimitWait() {
	m.rateLimitWaits.Add(1)
	m.promRateWaits.Inc()
}

// ToolStats summarises usage of one tool
type ToolStats struct {
	Tool       string        `json:"tool"`
	Calls      uint64        `json:"calls"`
	Errors     uint64        `json:"errors"`
	AvgLatency time.Duration `json:"avg_latency"`
}

// GetToolStats returns per-tool usage sorted by call count (descending)
func (m *Metrics) GetToolStats() []ToolStats {
	m.toolsMu.RLock()
	defer m.toolsMu.RUnlock()

	stats := make([]ToolStats, 0, len(m.toolUsage))
	for tool, calls := range m.toolUsage {
		s := ToolStats{Tool: tool, Calls: calls, Errors: m.toolErrors[tool]}
		if calls > 0 {
			s.AvgLatency = m.toolLatency[tool] / time.Duration(calls)
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Calls != stats[j].Calls {
			return stats[i].Calls > stats[j].Calls
		}
		return stats[i].Tool < stats[j].Tool
	})
	return stats
}

// Totals returns the aggregate execution counters
func (m *Metrics) Totals() (total, successful, failed uint64) {
	return m.totalExecutions.Load(), m.successfulExecutions.Load(), m.failedExecutions.Load()
}

// LogStats logs a summary of collected metrics
func (m *Metrics) LogStats() {
	total, successful, failed := m.Totals()
	m.logger.Info("Tool execution metrics",
		zap.Uint64("total", total),
		zap.Uint64("successful", successful),
		zap.Uint64("failed", failed),
		zap.Uint64("rate_limit_waits", m.rateLimitWaits.Load()),
	)

	for _, s := range m.GetToolStats() {
		m.logger.Debug("Tool usage",
			zap.String("tool", s.Tool),
			zap.Uint64("calls", s.Calls),
			zap.Uint64("errors", s.Errors),
			zap.Duration("avg_latency", s.AvgLatency),
		)
	}
}
