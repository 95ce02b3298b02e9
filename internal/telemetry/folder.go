package telemetry

import (
	"context"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sitproject/sit/internal/fold"
	"github.com/sitproject/sit/internal/types"
)

const foldScopeName = "github.com/sitproject/sit/fold"

// InstrumentedFolder wraps fold.Folder with OTel tracing and metrics.
// Every run gets a span and is counted in sit.fold.* metrics.
// Use WrapFolder to create one; it returns the original folder unchanged when
// telemetry is disabled.
type InstrumentedFolder struct {
	inner   fold.Folder
	tracer  trace.Tracer
	runs    metric.Int64Counter
	records metric.Int64Counter
	diags   metric.Int64Counter
	dur     metric.Float64Histogram
}

// WrapFolder returns f decorated with OTel instrumentation.
// When telemetry is disabled, f is returned as-is with zero overhead.
func WrapFolder(f fold.Folder) fold.Folder {
	if !Enabled() {
		return f
	}
	return NewInstrumentedFolder(f, Tracer(foldScopeName), Meter(foldScopeName))
}

// NewInstrumentedFolder decorates f using the given tracer and meter.
func NewInstrumentedFolder(f fold.Folder, tracer trace.Tracer, m metric.Meter) *InstrumentedFolder {
	runs, _ := m.Int64Counter("sit.fold.runs",
		metric.WithDescription("Total fold runs executed"),
	)
	records, _ := m.Int64Counter("sit.fold.records",
		metric.WithDescription("Total records folded"),
	)
	diags, _ := m.Int64Counter("sit.fold.diagnostics",
		metric.WithDescription("Total per-record diagnostics reported"),
	)
	dur, _ := m.Float64Histogram("sit.fold.duration",
		metric.WithDescription("Fold run duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return &InstrumentedFolder{
		inner:   f,
		tracer:  tracer,
		runs:    runs,
		records: records,
		diags:   diags,
		dur:     dur,
	}
}

func (f *InstrumentedFolder) start(ctx context.Context, mode, issueID string) (context.Context, trace.Span, time.Time, []attribute.KeyValue) {
	attrs := []attribute.KeyValue{
		attribute.String("sit.fold.mode", mode),
	}
	ctx, span := f.tracer.Start(ctx, "fold."+mode,
		trace.WithAttributes(append(attrs, attribute.String("sit.issue.id", issueID))...),
	)
	f.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	return ctx, span, time.Now(), attrs
}

func (f *InstrumentedFolder) done(ctx context.Context, span trace.Span, start time.Time, attrs []attribute.KeyValue, res *fold.Result, err error) {
	defer span.End()
	f.dur.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	f.records.Add(ctx, int64(res.Applied), metric.WithAttributes(attrs...))
	f.diags.Add(ctx, int64(len(res.Diagnostics)), metric.WithAttributes(attrs...))
	span.SetAttributes(
		attribute.Int("sit.fold.records", res.Applied),
		attribute.Int("sit.fold.diagnostics", len(res.Diagnostics)),
		attribute.String("sit.fold.head", res.Head),
	)
}

// Fold implements fold.Folder.
func (f *InstrumentedFolder) Fold(ctx context.Context, issueID string, records iter.Seq2[types.Record, error]) (*fold.Result, error) {
	ctx, span, start, attrs := f.start(ctx, "full", issueID)
	res, err := f.inner.Fold(ctx, issueID, records)
	f.done(ctx, span, start, attrs, res, err)
	return res, err
}

// Resume implements fold.Folder.
func (f *InstrumentedFolder) Resume(ctx context.Context, prev fold.Snapshot, records iter.Seq2[types.Record, error]) (*fold.Result, error) {
	ctx, span, start, attrs := f.start(ctx, "resume", prev.Projection.ID)
	res, err := f.inner.Resume(ctx, prev, records)
	f.done(ctx, span, start, attrs, res, err)
	return res, err
}

var _ fold.Folder = (*InstrumentedFolder)(nil)
