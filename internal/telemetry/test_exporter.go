package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

// TestSpanRecorder is a span exporter that keeps finished spans in memory.
type TestSpanRecorder struct {
	mu    sync.RWMutex
	spans []trace.ReadOnlySpan
}

func NewTestSpanRecorder() *TestSpanRecorder {
	return &TestSpanRecorder{}
}

func (t *TestSpanRecorder) ExportSpans(_ context.Context, spans []trace.ReadOnlySpan) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spans = append(t.spans, spans...)
	return nil
}

func (t *TestSpanRecorder) Shutdown(context.Context) error {
	return nil
}

func (t *TestSpanRecorder) GetSpansByName(name string) []trace.ReadOnlySpan {
	return t.filter(func(s trace.ReadOnlySpan) bool { return s.Name() == name })
}

func (t *TestSpanRecorder) GetSpansByOperation(operation string) []trace.ReadOnlySpan {
	return t.filter(func(s trace.ReadOnlySpan) bool {
		for _, attr := range s.Attributes() {
			if attr.Key == "operation" && attr.Value.AsString() == operation {
				return true
			}
		}
		return false
	})
}

func (t *TestSpanRecorder) filter(keep func(trace.ReadOnlySpan) bool) []trace.ReadOnlySpan {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []trace.ReadOnlySpan
	for _, span := range t.spans {
		if keep(span) {
			result = append(result, span)
		}
	}
	return result
}

func (t *TestSpanRecorder) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spans = nil
}

// InitTestTracing installs a synchronous provider feeding recorder, so spans
// are visible as soon as they end.
func InitTestTracing(recorder *TestSpanRecorder) *trace.TracerProvider {
	tp := trace.NewTracerProvider(trace.WithSyncer(recorder))
	otel.SetTracerProvider(tp)
	return tp
}
