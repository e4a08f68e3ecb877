package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer for analysis operations.
const TracerName = "meeting-analyzer"

// Span attribute keys
const (
	AttrMeetingID = "meeting_id"
	AttrStage     = "stage"
	AttrModel     = "model"
	AttrMIMEType  = "mime_type"
	AttrPersisted = "persisted"
)

// Span names
const (
	SpanAnalyze = "analysis.run"
	SpanLLMCall = "analysis.llm_call"
)

// Tracer wraps the global OpenTelemetry tracer for pipeline spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartAnalysis starts the root span of a pipeline run.
func (t *Tracer) StartAnalysis(ctx context.Context, meetingID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanAnalyze,
		trace.WithAttributes(attribute.String(AttrMeetingID, meetingID)),
	)
}

// StartStage starts a span for one pipeline stage.
func (t *Tracer) StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "analysis.stage."+stage,
		trace.WithAttributes(attribute.String(AttrStage, stage)),
	)
}

// StartLLM starts a span for a language model call.
func (t *Tracer) StartLLM(ctx context.Context, model string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanLLMCall,
		trace.WithAttributes(attribute.String(AttrModel, model)),
	)
}

// End records err on the span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
