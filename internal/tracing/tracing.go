// Package tracing provides distributed tracing support for the MCP server.
// It generates per-call trace and span IDs for the audit log and initialises
// OpenTelemetry when tracing is enabled.
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// TraceInfo contains the trace identifiers for one tool call
type TraceInfo struct {
	TraceID string `json:"trace_id"`
	SpanID  string `json:"span_id"`
}

// GenerateID generates a random 32-character hex ID (128 bits)
func GenerateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(b)
}

// GenerateShortID generates a random 16-character hex ID (64 bits) for span IDs
func GenerateShortID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b)
}

// NewTraceInfo creates a new trace with generated IDs
func NewTraceInfo() *TraceInfo {
	return &TraceInfo{
		TraceID: GenerateID(),
		SpanID:  GenerateShortID(),
	}
}

// WithTrace attaches trace identifiers to a context
func WithTrace(ctx context.Context, info *TraceInfo) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, info.TraceID)
	return context.WithValue(ctx, spanIDKey, info.SpanID)
}

// FromContext extracts trace identifiers from a context. Missing values
// come back as empty strings.
func FromContext(ctx context.Context) *TraceInfo {
	info := &TraceInfo{}
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		info.TraceID = v
	}
	if v, ok := ctx.Value(spanIDKey).(string); ok {
		info.SpanID = v
	}
	return info
}
