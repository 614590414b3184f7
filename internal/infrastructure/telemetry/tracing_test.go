package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	revenueID := uuid.New()
	ctx, span := telemetry.StartServiceSpan(context.Background(), "sfa_payment", "add",
		telemetry.SpanAttrRevenueID, revenueID,
		telemetry.SpanAttrDraftCount, 3,
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	telemetry.SetAttributes(span, telemetry.SpanAttrSuccessCount, int64(2), "ignored")
	telemetry.AddEvent(span, "dispatched", "requests", 3)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "sfa_payment.add", spans[0].Name())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, revenueID.String(), attrs[telemetry.SpanAttrRevenueID])
	assert.Equal(t, "3", attrs[telemetry.SpanAttrDraftCount])
	assert.Equal(t, "2", attrs[telemetry.SpanAttrSuccessCount])
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "dispatched", spans[0].Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, errors.New("boom"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{ServiceName: "test"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(context.Background()))
}
