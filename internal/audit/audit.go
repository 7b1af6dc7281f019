// Package audit provides audit logging for tracking tool executions.
// This helps with debugging and understanding how the conversational
// orchestrator is driving the analysis session.
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/tracing"
)

// Entry represents a single audit log entry
type Entry struct {
	Timestamp time.Time     `json:"timestamp"`
	TraceID   string        `json:"trace_id,omitempty"`
	SpanID    string        `json:"span_id,omitempty"`
	Tool      string        `json:"tool"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration_ms"`
	ErrorMsg  string        `json:"error_message,omitempty"`
}

// Logger handles audit logging with an in-memory ring of recent entries
type Logger struct {
	enabled bool
	logger  *zap.Logger

	mu         sync.RWMutex
	entries    []Entry
	maxEntries int
}

// NewLogger creates a new audit logger
func NewLogger(logger *zap.Logger, enabled bool) *Logger {
	return &Logger{
		enabled:    enabled,
		logger:     logger.Named("audit"),
		entries:    make([]Entry, 0, 256),
		maxEntries: 1000,
	}
}

// Log records an audit entry, filling trace identifiers from the context
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if !l.enabled {
		return
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if info := tracing.FromContext(ctx); info != nil {
		if entry.TraceID == "" {
			entry.TraceID = info.TraceID
		}
		if entry.SpanID == "" {
			entry.SpanID = info.SpanID
		}
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	l.mu.Unlock()

	fields := []zap.Field{
		zap.String("tool", entry.Tool),
		zap.Bool("success", entry.Success),
		zap.Duration("duration", entry.Duration),
		zap.String("trace_id", entry.TraceID),
	}
	if entry.ErrorMsg != "" {
		fields = append(fields, zap.String("error", entry.ErrorMsg))
	}
	l.logger.Info("Tool executed", fields...)
}

// Recent returns up to n most recent entries, newest last
func (l *Logger) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}
