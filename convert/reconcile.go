package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"liora"
	"liora/reconcile"
)

// Rejection names a recipe dropped because some of its ingredients could
// not be resolved against the catalog.
type Rejection struct {
	Recipe     string   `json:"recipe"`
	Unresolved []string `json:"unresolved"`
	Err        error    `json:"-"`
}

func (r Rejection) String() string {
	if len(r.Unresolved) == 0 && r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Recipe, r.Err)
	}
	return fmt.Sprintf("%s: %d unresolved ingredient(s): %v", r.Recipe, len(r.Unresolved), r.Unresolved)
}

type Converter struct {
	reconciler *reconcile.Reconciler
	tracer     trace.Tracer
}

func NewConverter(r *reconcile.Reconciler) *Converter {
	return &Converter{reconciler: r, tracer: otel.Tracer(liora.TracerNameConverter)}
}

// Reconcile resolves every recipe's ingredient names against the catalog.
// A recipe with any unresolved ingredient is left out of the result and
// reported as a Rejection. Kept recipes carry the catalog spelling of each
// name; the sheet's food type is kept as the ingredient category.
func (c *Converter) Reconcile(ctx context.Context, recipes []liora.Recipe) ([]liora.Recipe, []Rejection) {
	ctx, span := c.tracer.Start(ctx, "Converter.Reconcile", trace.WithAttributes(
		attribute.Int("recipes", len(recipes)),
	))
	defer span.End()

	var (
		kept     []liora.Recipe
		rejected []Rejection
	)
	for _, rec := range recipes {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			rejected = append(rejected, Rejection{Recipe: rec.Name, Err: err})
			continue
		}

		out, rej := c.reconcileRecipe(ctx, rec)
		if rej != nil {
			slog.Warn("CONVERT: Recipe rejected", "recipe", rec.Name, "unresolved", rej.Unresolved, "error", rej.Err)
			rejected = append(rejected, *rej)
			continue
		}
		kept = append(kept, out)
	}

	span.SetAttributes(attribute.Int("kept", len(kept)), attribute.Int("rejected", len(rejected)))
	slog.Info("CONVERT: Reconciled recipes", "kept", len(kept), "rejected", len(rejected))
	return kept, rejected
}

func (c *Converter) reconcileRecipe(ctx context.Context, rec liora.Recipe) (liora.Recipe, *Rejection) {
	candidates := make([]reconcile.Candidate, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		cand, err := reconcile.FromIngredient(ing)
		if err != nil {
			return rec, &Rejection{Recipe: rec.Name, Err: err}
		}
		// Sheet food types are not catalog categories.
		cand.Category = ""
		candidates = append(candidates, cand)
	}

	report := c.reconciler.Validate(ctx, candidates)
	if report.SaveErr != nil {
		slog.Error("CONVERT: Catalog could not be saved", "recipe", rec.Name, "error", report.SaveErr)
	}
	if err := report.Err(); err != nil {
		var unmatched *reconcile.UnmatchedError
		if errors.As(err, &unmatched) {
			return rec, &Rejection{Recipe: rec.Name, Unresolved: unmatched.Names, Err: err}
		}
		return rec, &Rejection{Recipe: rec.Name, Err: err}
	}

	out := rec
	out.Ingredients = make([]liora.Ingredient, len(rec.Ingredients))
	for i, cand := range report.Candidates() {
		ing := rec.Ingredients[i]
		ing.Name = cand.Name
		out.Ingredients[i] = ing
	}
	return out, nil
}
