package tracing

import (
	"context"
	"testing"
)

func TestGenerateIDs(t *testing.T) {
	if got := GenerateID(); len(got) != 32 {
		t.Errorf("GenerateID() length = %d, want 32", len(got))
	}
	if got := GenerateShortID(); len(got) != 16 {
		t.Errorf("GenerateShortID() length = %d, want 16", len(got))
	}
	if GenerateID() == GenerateID() {
		t.Error("GenerateID() produced duplicate IDs")
	}
}

func TestContextRoundTrip(t *testing.T) {
	info := NewTraceInfo()
	ctx := WithTrace(context.Background(), info)

	got := FromContext(ctx)
	if got.TraceID != info.TraceID || got.SpanID != info.SpanID {
		t.Errorf("FromContext() = %+v, want %+v", got, info)
	}
}

func TestFromContext_Empty(t *testing.T) {
	got := FromContext(context.Background())
	if got.TraceID != "" || got.SpanID != "" {
		t.Errorf("FromContext() on bare context = %+v, want empty IDs", got)
	}
}
