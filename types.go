package liora

import (
	"context"
	"net/http"

	"liora/units"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// Ingredient is one quantified ingredient line of a recipe.
type Ingredient struct {
	Name     string       `json:"name"`
	Quantity units.Amount `json:"quantity"`
	Unit     units.Unit   `json:"unit"`
	Category string       `json:"category"`
}

// Nutrition holds per-serving nutrition facts.
type Nutrition struct {
	EnergyKJ      float64 `json:"energy_kj"`
	Calories      float64 `json:"calories"`
	Fats          float64 `json:"fats"`
	SaturatedFats float64 `json:"saturated_fats"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugars        float64 `json:"sugars"`
	Fiber         float64 `json:"fiber"`
	Proteins      float64 `json:"proteins"`
}

// NutritionKeys lists the nutrition fields in output order.
var NutritionKeys = []string{
	"energy_kj", "calories", "fats", "saturated_fats",
	"carbohydrates", "sugars", "fiber", "proteins",
}

// Values returns the facts keyed like NutritionKeys.
func (n Nutrition) Values() map[string]float64 {
	return map[string]float64{
		"energy_kj":      n.EnergyKJ,
		"calories":       n.Calories,
		"fats":           n.Fats,
		"saturated_fats": n.SaturatedFats,
		"carbohydrates":  n.Carbohydrates,
		"sugars":         n.Sugars,
		"fiber":          n.Fiber,
		"proteins":       n.Proteins,
	}
}

// DietaryInfo flags which diets a recipe fits.
type DietaryInfo struct {
	GlutenFree    bool `json:"gluten_free" yaml:"gluten_free"`
	LactoseFree   bool `json:"lactose_free" yaml:"lactose_free"`
	NutFree       bool `json:"nut_free" yaml:"nut_free"`
	EggFree       bool `json:"egg_free" yaml:"egg_free"`
	ShellfishFree bool `json:"shellfish_free" yaml:"shellfish_free"`
	SoyFree       bool `json:"soy_free" yaml:"soy_free"`
	YeastFree     bool `json:"yeast_free" yaml:"yeast_free"`
	SugarFree     bool `json:"sugar_free" yaml:"sugar_free"`
	Vegan         bool `json:"vegan" yaml:"vegan"`
	Vegetarian    bool `json:"vegetarian" yaml:"vegetarian"`
	Keto          bool `json:"keto" yaml:"keto"`
	Paleo         bool `json:"paleo" yaml:"paleo"`
}

// DietaryKeys lists every dietary flag a response must carry.
var DietaryKeys = []string{
	"gluten_free", "lactose_free", "nut_free", "egg_free",
	"shellfish_free", "soy_free", "yeast_free", "sugar_free",
	"vegan", "vegetarian", "keto", "paleo",
}

// Recipe is the record shared by the converters, the database seeder and
// the generator.
type Recipe struct {
	ID               string       `json:"id,omitempty"`
	Name             string       `json:"name"`
	SideDish         string       `json:"side_dish"`
	ShortDescription string       `json:"short_description,omitempty"`
	MealType         string       `json:"meal_type"`
	Category         string       `json:"category"`
	Servings         int          `json:"servings"`
	Nutrition        Nutrition    `json:"nutrition"`
	PrepTime         string       `json:"prep_time"`
	CuisineType      string       `json:"cuisine_type"`
	URL              string       `json:"url,omitempty"`
	PDFURL           string       `json:"pdf_url,omitempty"`
	ImageURL         string       `json:"image_url,omitempty"`
	Source           string       `json:"source,omitempty"`
	Ingredients      []Ingredient `json:"ingredients"`
	Steps            []string     `json:"steps"`
}

// GeneratedRecipe is a Recipe produced by the generation pipeline.
type GeneratedRecipe struct {
	Recipe
	Dietary DietaryInfo `json:"dietary_info"`
}

// IsValid checks the fields every generated recipe must carry.
func (r *GeneratedRecipe) IsValid() bool {
	if r.Name == "" || r.SideDish == "" || r.ShortDescription == "" {
		return false
	}
	if len(r.Ingredients) == 0 || len(r.Steps) == 0 {
		return false
	}
	for _, ing := range r.Ingredients {
		if ing.Name == "" || ing.Category == "" || ing.Unit == "" {
			return false
		}
	}
	for _, step := range r.Steps {
		if step == "" {
			return false
		}
	}
	return true
}
