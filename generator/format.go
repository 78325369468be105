package generator

import (
	"strings"

	"liora"
	"liora/units"
)

// FormatForOutput returns a copy of r ready to be written out: text fields
// trimmed and ingredient units in singular form.
func FormatForOutput(r liora.GeneratedRecipe) liora.GeneratedRecipe {
	out := r
	out.Name = strings.TrimSpace(r.Name)
	out.SideDish = strings.TrimSpace(r.SideDish)
	out.ShortDescription = strings.TrimSpace(r.ShortDescription)

	out.Ingredients = make([]liora.Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		out.Ingredients[i] = liora.Ingredient{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     units.Unit(units.Singular(string(ing.Unit))),
			Category: strings.TrimSpace(ing.Category),
		}
	}

	out.Steps = make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out.Steps[i] = strings.TrimSpace(s)
	}
	return out
}
