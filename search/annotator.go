// Copyright © 2024 The symref authors

package search

import (
	"context"

	"github.com/luthersystems/symref/refs"
	ocstats "go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Annotator receives search lifecycle events.  Implementations attach
// spans or record measurements; they must be cheap because File fires once
// per input file.
type Annotator interface {
	// Begin marks the start of a search.  The returned function is called
	// exactly once when the search ends, with the total match count.
	Begin(ctx context.Context, target string, kind refs.Kind, nfiles int) (context.Context, func(matches int))
	// File records one processed file and the matches found in it.
	File(ctx context.Context, path string, matches int)
}

const (
	// ContextTracerKey looks up a parent tracer name from a context key.
	ContextTracerKey = "symrefParentTracer"
)

var _ Annotator = &otelAnnotator{}

type otelAnnotator struct{}

// NewOpenTelemetryAnnotator returns an Annotator that wraps each search in
// an OpenTelemetry span and marks each processed file with a span event.
func NewOpenTelemetryAnnotator() Annotator {
	return &otelAnnotator{}
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextTracerKey).(string)
	if !ok {
		tracerName = "symref"
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (a *otelAnnotator) Begin(ctx context.Context, target string, kind refs.Kind, nfiles int) (context.Context, func(int)) {
	ctx, span := contextTracer(ctx).Start(ctx, "symref.search")
	span.SetAttributes(
		attribute.String("symref.target", target),
		attribute.String("symref.kind", kind.String()),
		attribute.Int("symref.files", nfiles),
	)
	return ctx, func(matches int) {
		span.SetAttributes(attribute.Int("symref.matches", matches))
		span.End()
	}
}

func (a *otelAnnotator) File(ctx context.Context, path string, matches int) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("file", trace.WithAttributes(
		attribute.String("symref.path", path),
		attribute.Int("symref.matches", matches),
	))
}

// OpenCensus measures recorded by the annotator returned from
// NewOpenCensusAnnotator.
var (
	MFilesSearched = ocstats.Int64("symref/files_searched", "Files parsed and walked during searches", ocstats.UnitDimensionless)
	MMatchesFound  = ocstats.Int64("symref/matches_found", "References located during searches", ocstats.UnitDimensionless)
)

// Views aggregating the search measures, for callers that export
// OpenCensus stats.
var (
	FilesSearchedView = &view.View{
		Name:        "symref/files_searched",
		Measure:     MFilesSearched,
		Description: "Number of files parsed and walked",
		Aggregation: view.Count(),
	}
	MatchesFoundView = &view.View{
		Name:        "symref/matches_found",
		Measure:     MMatchesFound,
		Description: "Number of references located",
		Aggregation: view.Sum(),
	}
)

var _ Annotator = &ocAnnotator{}

type ocAnnotator struct{}

// NewOpenCensusAnnotator returns an Annotator that wraps each search in an
// OpenCensus span and records the file and match measures.
func NewOpenCensusAnnotator() Annotator {
	return &ocAnnotator{}
}

func (a *ocAnnotator) Begin(ctx context.Context, target string, kind refs.Kind, nfiles int) (context.Context, func(int)) {
	ctx, span := octrace.StartSpan(ctx, "symref.search")
	span.AddAttributes(
		octrace.StringAttribute("target", target),
		octrace.StringAttribute("kind", kind.String()),
		octrace.Int64Attribute("files", int64(nfiles)),
	)
	return ctx, func(matches int) {
		span.AddAttributes(octrace.Int64Attribute("matches", int64(matches)))
		span.End()
	}
}

func (a *ocAnnotator) File(ctx context.Context, path string, matches int) {
	ocstats.Record(ctx, MFilesSearched.M(1), MMatchesFound.M(int64(matches)))
}
