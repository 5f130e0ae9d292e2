// Package finder runs one loadout search end to end: it resolves the
// nightfarer in the catalog, cleans up the query, canonicalises the
// inventory and drives the search engine under a tracing span.
package finder

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

const instrumentationName = "github.com/tonyliqx/nightreign-relic-manager/internal/finder"

// Options tunes a run. Zero values fall back to relic.DefaultConfig.
type Options struct {
	CheckpointEvery int
	OnProgress      func(relic.Progress)
	// Log receives the engine's [tag] lines. Nil is silent.
	Log io.Writer
}

// Outcome is a finished run.
type Outcome struct {
	Nightfarer catalog.Nightfarer
	// Query is the normalised query that was searched.
	Query  Query
	Report relic.Report
	// Unknown lists query names the catalog does not know. They are searched
	// as typed.
	Unknown []string
	Elapsed time.Duration
}

// Run searches every vessel of q.Nightfarer for loadouts drawn from inv.
func Run(ctx context.Context, cat *catalog.Catalog, inv []relic.Relic, q Query, opts Options) (out Outcome, err error) {
	start := time.Now()
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "finder.search",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	vocab := cat.Vocabulary()
	q = q.Normalize(vocab)
	if err := q.Validate(); err != nil {
		return Outcome{Query: q}, err
	}
	nf, err := cat.Nightfarer(q.Nightfarer)
	if err != nil {
		return Outcome{Query: q}, err
	}
	out = Outcome{Nightfarer: nf, Query: q, Unknown: unknownNames(q, vocab)}
	for _, name := range out.Unknown {
		logf(opts.Log, "[query] %q is not a known effect, searching it as typed\n", name)
	}

	span.SetAttributes(
		attribute.String("relic.nightfarer", nf.Alias),
		attribute.Int("relic.required", len(q.Required)),
		attribute.Int("relic.avoided", len(q.Avoided)),
		attribute.Int("relic.inventory", len(inv)),
	)

	cfg := relic.DefaultConfig()
	if opts.CheckpointEvery > 0 {
		cfg.CheckpointEvery = opts.CheckpointEvery
	}
	cfg.OnProgress = opts.OnProgress
	cfg.Log = opts.Log
	cfg.Vocabulary = vocab

	rep, err := relic.Find(ctx, nf.Vessels, CanonicalInventory(inv, vocab), q.engine(), cfg)
	out.Report = rep
	out.Elapsed = time.Since(start)
	span.SetAttributes(
		attribute.Int("relic.results", len(rep.Results)),
		attribute.Int64("relic.visits", rep.Visits),
		attribute.Bool("relic.infeasible", rep.Infeasible),
	)
	if err != nil {
		return out, fmt.Errorf("search %s: %w", nf.Alias, err)
	}
	return out, nil
}

// CanonicalInventory rewrites every effect name to its catalog spelling.
// Relics whose names are already canonical come back unchanged.
func CanonicalInventory(inv []relic.Relic, names Canonicalizer) []relic.Relic {
	out := make([]relic.Relic, len(inv))
	for i, r := range inv {
		for j := range r.Effects {
			if r.Effects[j] != "" {
				r.Effects[j] = names.Canonical(r.Effects[j])
			}
		}
		for j := range r.Pairs {
			if p := &r.Pairs[j]; p.Positive != "" {
				p.Positive = names.Canonical(p.Positive)
			}
			if p := &r.Pairs[j]; p.Negative != "" {
				p.Negative = names.Canonical(p.Negative)
			}
		}
		out[i] = r
	}
	return out
}

func unknownNames(q Query, vocab *catalog.Vocabulary) []string {
	var out []string
	for _, r := range q.Required {
		if !vocab.Known(r.Effect) {
			out = append(out, r.Effect)
		}
	}
	for _, a := range q.Avoided {
		if !vocab.Known(a) {
			out = append(out, a)
		}
	}
	return out
}

func logf(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, format, args...)
	}
}
