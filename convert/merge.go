package convert

import (
	"liora"
	"liora/units"
)

// MergeIngredients folds repeated (name, unit) lines into one, summing the
// amounts, in first-seen order. A non-numeric amount keeps the first line.
func MergeIngredients(in []liora.Ingredient) []liora.Ingredient {
	type key struct {
		name string
		unit units.Unit
	}
	pos := make(map[key]int, len(in))
	out := make([]liora.Ingredient, 0, len(in))

	for _, ing := range in {
		k := key{ing.Name, ing.Unit}
		if i, ok := pos[k]; ok {
			out[i].Quantity = out[i].Quantity.Add(ing.Quantity)
			continue
		}
		pos[k] = len(out)
		out = append(out, ing)
	}
	return out
}
