package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return recorder, provider
}

func TestStartServiceSpan(t *testing.T) {
	recorder, provider := newRecorder(t)
	tracer := provider.Tracer(TracerName)

	_, span := tracer.Start(context.Background(), "posting.post_batch")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "posting.post_batch", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	recorder, provider := newRecorder(t)
	tracer := provider.Tracer(TracerName)

	_, span := tracer.Start(context.Background(), "test")
	SetAttributes(span,
		SpanAttrEntryNumber, "JRN-000001",
		SpanAttrLineCount, 3,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(SpanAttrEntryNumber, "JRN-000001"))
	assert.Contains(t, attrs, attribute.Int(SpanAttrLineCount, 3))
}

func TestSetAttributesIgnoresOddPairs(t *testing.T) {
	recorder, provider := newRecorder(t)
	tracer := provider.Tracer(TracerName)

	_, span := tracer.Start(context.Background(), "test")
	SetAttributes(span, "key_without_value")
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Empty(t, recorder.Ended()[0].Attributes())
}

func TestRecordError(t *testing.T) {
	recorder, provider := newRecorder(t)
	tracer := provider.Tracer(TracerName)

	_, span := tracer.Start(context.Background(), "test")
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestRecordErrorNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(nil, errors.New("boom"))
		RecordError(trace.SpanFromContext(context.Background()), nil)
	})
}

func TestGetTraceID(t *testing.T) {
	_, provider := newRecorder(t)
	tracer := provider.Tracer(TracerName)

	ctx, span := tracer.Start(context.Background(), "test")
	defer span.End()

	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))
	assert.Empty(t, GetTraceID(context.Background()))
}
