package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing("svc", "1.0.0", "jaeger")
	assert.Error(t, err)
}

func TestInitTracingWithoutExporter(t *testing.T) {
	tp, err := InitTracing("svc", "1.0.0", ExporterNone)
	require.NoError(t, err)
	defer func() { _ = ShutdownTracing(context.Background(), tp) }()

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
}

func TestRecorderFiltersByOperation(t *testing.T) {
	recorder := NewTestSpanRecorder()
	tp := InitTestTracing(recorder)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := otel.Tracer("test")
	_, write := tracer.Start(context.Background(), "subscription.repository.insert")
	write.SetAttributes(attribute.String("operation", "database.write"))
	write.End()
	_, other := tracer.Start(context.Background(), "other")
	other.End()

	assert.Len(t, recorder.GetSpansByOperation("database.write"), 1)
	assert.Len(t, recorder.GetSpansByName("other"), 1)

	recorder.Clear()
	assert.Empty(t, recorder.GetSpansByName("other"))
}
