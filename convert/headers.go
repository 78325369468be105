// Package convert moves recipe sheets between CSV, JSON and the SQL seed
// migration.
package convert

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// IngredientSlots is the number of ingredient column groups per row.
	IngredientSlots = 20
	// StepSlots is the number of step columns per row.
	StepSlots = 6
)

var ErrUnknownHeaders = errors.New("unrecognised header row")

// HeaderSet names the columns of one spreadsheet layout.
type HeaderSet struct {
	Name string

	Title       string
	SideDish    string
	Source      string
	MealType    string
	Category    string
	Calories    string
	EnergyKJ    string
	Fats        string
	Saturated   string
	Carbs       string
	Sugars      string
	Fiber       string
	Proteins    string
	PrepTime    string
	URL         string
	PDFURL      string
	ImageURL    string
	CuisineType string

	// DefaultMealType fills rows that leave the meal type empty.
	DefaultMealType string

	ingredient, quantity, foodType, step string
}

func (h HeaderSet) Ingredient(i int) string { return fmt.Sprintf(h.ingredient, i) }
func (h HeaderSet) Quantity(i int) string   { return fmt.Sprintf(h.quantity, i) }
func (h HeaderSet) FoodType(i int) string   { return fmt.Sprintf(h.foodType, i) }
func (h HeaderSet) Step(j int) string       { return fmt.Sprintf(h.step, j) }

var SpanishHeaders = HeaderSet{
	Name:            "es",
	Title:           "Titulo",
	SideDish:        "Descripcion",
	Source:          "Fuente",
	MealType:        "Tipo de comida",
	Category:        "Categoria",
	Calories:        "Valor energético (kcal)",
	EnergyKJ:        "Valor energético (kJ)",
	Fats:            "Grasas",
	Saturated:       "de las cuales saturadas",
	Carbs:           "Carbohidratos",
	Sugars:          "de los cuales azúcares",
	Fiber:           "Fibra",
	Proteins:        "Proteínas",
	PrepTime:        "Tiempo de preparación",
	URL:             "URL",
	PDFURL:          "PDF_URL",
	ImageURL:        "Image_url",
	CuisineType:     "Cuisine_type",
	DefaultMealType: "Comida",
	ingredient:      "Ingrediente_%d",
	quantity:        "Cantidad_%d",
	foodType:        "Tipo_%d",
	step:            "Paso %d",
}

var EnglishHeaders = HeaderSet{
	Name:            "en",
	Title:           "name",
	SideDish:        "side_dish",
	Source:          "source",
	MealType:        "meal_type",
	Category:        "category",
	Calories:        "calories",
	EnergyKJ:        "energy_kj",
	Fats:            "fats",
	Saturated:       "saturated_fats",
	Carbs:           "carbohydrates",
	Sugars:          "sugars",
	Fiber:           "fiber",
	Proteins:        "proteins",
	PrepTime:        "prep_time",
	URL:             "url",
	PDFURL:          "pdf_url",
	ImageURL:        "image_url",
	CuisineType:     "cuisine_type",
	DefaultMealType: "comida",
	ingredient:      "ingredient_%d",
	quantity:        "quantity_%d",
	foodType:        "type_%d",
	step:            "step_%d",
}

// HeaderSetByName returns the layout called "es" or "en".
func HeaderSetByName(name string) (HeaderSet, bool) {
	switch name {
	case SpanishHeaders.Name:
		return SpanishHeaders, true
	case EnglishHeaders.Name:
		return EnglishHeaders, true
	}
	return HeaderSet{}, false
}

// DetectHeaders picks the layout whose title and first ingredient columns
// appear in the header row.
func DetectHeaders(header []string) (HeaderSet, error) {
	for _, hs := range []HeaderSet{SpanishHeaders, EnglishHeaders} {
		if slices.Contains(header, hs.Title) && slices.Contains(header, hs.Ingredient(1)) {
			return hs, nil
		}
	}
	return HeaderSet{}, ErrUnknownHeaders
}
