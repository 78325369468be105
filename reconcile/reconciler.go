// Package reconcile maps free-text ingredient names onto the catalog.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"liora"
	"liora/catalog"
	"liora/catalog/storage"
	"liora/normalize"
)

// DefaultThreshold is the minimum similarity a fuzzy match must reach.
const DefaultThreshold = 0.8

type Reconciler struct {
	catalog    *catalog.Catalog
	normalizer *normalize.Normalizer
	threshold  float64
	escalator  Escalator
	store      storage.State
	tracer     trace.Tracer
	meter      metric.Meter

	matches     metric.Int64Counter
	escalations metric.Int64Counter

	// escalateMu serializes the escalate, add and save sequence.
	escalateMu sync.Mutex
}

type Option func(*Reconciler)

func WithThreshold(t float64) Option {
	return func(r *Reconciler) {
		if t > 0 && t <= 1 {
			r.threshold = t
		}
	}
}

func WithEscalator(e Escalator) Option {
	return func(r *Reconciler) { r.escalator = e }
}

// WithStore persists the catalog after every accepted escalation.
func WithStore(s storage.State) Option {
	return func(r *Reconciler) { r.store = s }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Reconciler) { r.tracer = t }
}

func WithMeter(m metric.Meter) Option {
	return func(r *Reconciler) { r.meter = m }
}

func New(cat *catalog.Catalog, opts ...Option) *Reconciler {
	r := &Reconciler{
		catalog:    cat,
		normalizer: normalize.New(cat),
		threshold:  DefaultThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(liora.TracerNameReconciler)
	}
	if r.meter == nil {
		r.meter = otel.Meter(liora.TracerNameReconciler)
	}

	r.matches, _ = r.meter.Int64Counter("reconcile_matches_total",
		metric.WithDescription("Ingredient lookups by match kind"))
	r.escalations, _ = r.meter.Int64Counter("reconcile_escalations_total",
		metric.WithDescription("Escalations of unmatched ingredients by result"))
	return r
}

func (r *Reconciler) Catalog() *catalog.Catalog { return r.catalog }

func (r *Reconciler) Threshold() float64 { return r.threshold }

func (r *Reconciler) Normalize(name string) string {
	return r.normalizer.Normalize(name)
}

// Match looks the candidate up in the catalog. It never mutates the catalog
// and never fails; a miss is reported as an Unmatched match. The returned
// candidate carries the normalized name, or the catalog spelling and
// category when a match is found.
func (r *Reconciler) Match(c Candidate) (Candidate, Match) {
	out := c
	out.Name = r.normalizer.Normalize(c.Name)
	if out.Name == "" {
		return out, Match{Kind: Unmatched}
	}

	// The declared category is searched first, then the whole catalog.
	scopes := []string{""}
	if c.Category != "" {
		scopes = []string{c.Category, ""}
	}
	items := r.catalog.Items()

	for _, scope := range scopes {
		if it, ok := exact(items, out.Name, scope); ok {
			out.Name, out.Category = it.Name, it.Category
			return out, Match{Kind: Exact, Score: 1, Name: it.Name, Category: it.Category}
		}
	}
	for _, scope := range scopes {
		it, score, ok := best(items, out.Name, scope)
		if ok && score >= r.threshold {
			out.Name, out.Category = it.Name, it.Category
			return out, Match{Kind: Fuzzy, Score: score, Name: it.Name, Category: it.Category}
		}
	}

	return out, Match{Kind: Unmatched}
}

// Suggestion is a catalog entry close to a looked-up name.
type Suggestion struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Similar returns up to n catalog entries scoring at least the threshold
// against name, best first. An empty category searches the whole catalog;
// an unknown one yields nothing.
func (r *Reconciler) Similar(name, category string, n int) []Suggestion {
	if category != "" && !r.catalog.HasCategory(category) {
		return nil
	}
	var out []Suggestion
	for _, it := range r.catalog.Items() {
		if category != "" && it.Category != category {
			continue
		}
		if score := normalize.Ratio(name, it.Name); score >= r.threshold {
			out = append(out, Suggestion{Name: it.Name, Category: it.Category, Score: score})
		}
	}
	slices.SortStableFunc(out, func(a, b Suggestion) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Validate reconciles a batch. Every candidate is looked at even when an
// earlier one fails; unmatched candidates are escalated once each when an
// escalator is configured. Use Report.OK or Report.Err to decide whether
// the batch may be used.
func (r *Reconciler) Validate(ctx context.Context, candidates []Candidate) Report {
	ctx, span := r.tracer.Start(ctx, "Reconciler.Validate", trace.WithAttributes(
		attribute.Int("candidates", len(candidates)),
		attribute.Float64("threshold", r.threshold),
	))
	defer span.End()

	report := Report{Outcomes: make([]Outcome, len(candidates))}
	var saveErrs []error

	for i, c := range candidates {
		o := &report.Outcomes[i]
		o.Original = c
		o.move(StateCandidate)

		corrected, m := r.Match(c)
		o.move(StateNormalized)
		o.Candidate, o.Match = corrected, m
		r.matches.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", m.Kind.String())))

		switch m.Kind {
		case Exact:
			o.move(StateMatchedExact)
			continue
		case Fuzzy:
			slog.Info("RECONCILE: Autocorrected ingredient",
				"from", c.Name, "to", m.Name, "category", m.Category, "similarity", m.Score)
			o.move(StateMatchedFuzzy)
			continue
		}

		o.move(StateUnmatched)
		slog.Warn("RECONCILE: Ingredient not found in catalog", "name", c.Name, "normalized", corrected.Name)
		if r.escalator == nil {
			continue
		}
		if err := r.escalate(ctx, o); err != nil {
			saveErrs = append(saveErrs, err)
		}
	}

	report.SaveErr = errors.Join(saveErrs...)
	if err := report.Err(); err != nil {
		span.SetStatus(codes.Error, "unresolved ingredients")
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Int("unresolved", len(report.Unresolved())))
	return report
}

// escalate resolves one unmatched outcome in place. The returned error is a
// persistence failure only; rejections are recorded on the outcome.
func (r *Reconciler) escalate(ctx context.Context, o *Outcome) error {
	r.escalateMu.Lock()
	defer r.escalateMu.Unlock()

	// An earlier escalation in this batch, or a concurrent one, may already
	// have added the name.
	if corrected, m := r.Match(o.Original); m.Kind != Unmatched {
		o.Candidate, o.Match = corrected, m
		o.move(StateResolved)
		r.escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "rematched")))
		return nil
	}

	entry, accepted, err := r.escalator.Resolve(ctx, o.Original, r.catalog.Categories())
	if err != nil {
		slog.Error("RECONCILE: Escalation failed", "name", o.Original.Name, "error", err)
		o.Err = err
		o.move(StateRejected)
		r.escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "error")))
		return nil
	}
	if !accepted {
		slog.Info("RECONCILE: Escalation declined", "name", o.Original.Name)
		o.move(StateRejected)
		r.escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "declined")))
		return nil
	}

	entry.Name = strings.TrimSpace(entry.Name)
	if _, err := r.catalog.Add(entry); err != nil {
		slog.Warn("RECONCILE: Escalated entry rejected", "name", entry.Name, "category", entry.Category, "error", err)
		o.Err = err
		o.move(StateRejected)
		r.escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "rejected")))
		return nil
	}

	o.Candidate.Name, o.Candidate.Category = entry.Name, entry.Category
	o.Match = Match{Kind: Unmatched, Name: entry.Name, Category: entry.Category}
	o.move(StateResolved)
	r.escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "accepted")))
	slog.Info("RECONCILE: Ingredient added to catalog", "name", entry.Name, "category", entry.Category, "aliases", entry.Aliases)

	if r.store == nil {
		return nil
	}
	if err := catalog.Save(ctx, r.store, r.catalog); err != nil {
		slog.Error("RECONCILE: Failed to persist catalog", "error", err)
		return err
	}
	return nil
}

func inScope(it catalog.Item, category string) bool {
	return category == "" || it.Category == category
}

func exact(items []catalog.Item, name, category string) (catalog.Item, bool) {
	for _, it := range items {
		if inScope(it, category) && strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return catalog.Item{}, false
}

// best returns the highest scoring item; ties keep the first declared.
func best(items []catalog.Item, name, category string) (catalog.Item, float64, bool) {
	var (
		top   catalog.Item
		score = -1.0
	)
	for _, it := range items {
		if !inScope(it, category) {
			continue
		}
		if s := normalize.Ratio(name, it.Name); s > score {
			top, score = it, s
		}
	}
	return top, score, score >= 0
}
