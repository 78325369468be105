package convert

import "strings"

const (
	OtherCategory           = "Otros"
	OtherIngredientCategory = "Otras Categorías"
	OtherCuisine            = "otra"
	DefaultPrepTime         = "45"
)

var recipeCategories = map[string]bool{
	"Aves":             true,
	"Carnes":           true,
	"Ensaladas":        true,
	"Fast Food":        true,
	"Legumbres":        true,
	"Pastas y Arroces": true,
	"Pescados":         true,
	"Sopas y Cremas":   true,
	"Vegetariano":      true,
	"Desayuno":         true,
	"Huevos":           true,
	"Snack":            true,
}

// sheet food type -> ingredient_category enum
var ingredientCategories = map[string]string{
	"Lácteos y Derivados":    "Lácteos, Huevos y Derivados",
	"Vegetales y Legumbres":  "Vegetales y Legumbres",
	"Cereales y Derivados":   "Cereales y Derivados",
	"Carnicería":             "Carnicería",
	"Pescadería":             "Pescadería",
	"Charcutería":            "Charcutería",
	"Condimentos y Especias": "Condimentos y Especias",
	"Salsas y Aderezos":      "Salsas y Aderezos",
	"Frutos Secos":           "Frutos Secos",
	"Frutas":                 "Frutas",
	"Aceites":                "Aceites",
	"Líquidos y Caldos":      "Líquidos y Caldos",
	"Cafés e infusiones":     "Cafés e infusiones",
	"Confituras":             "Confituras",
}

var cuisineTypes = map[string]bool{}

func init() {
	for _, c := range []string{
		"italiana", "mexicana", "española", "japonesa", "china", "coreana",
		"tailandesa", "vietnamita", "india", "mediterránea", "griega", "turca",
		"libanesa", "marroquí", "francesa", "alemana", "británica", "americana",
		"tex-mex", "brasileña", "peruana", "argentina", "colombiana", "venezolana",
		"caribeña", "portuguesa", "rusa", "polaca", "nórdica", "hawaiana",
		"fusión", "vegana", "vegetariana", "sin_gluten", "tradicional", "moderna",
		"casera", "callejera", "gourmet", "saludable",
	} {
		cuisineTypes[c] = true
	}
}

// MapCategory keeps a recipe category the database accepts, else Otros.
func MapCategory(category string) string {
	if recipeCategories[category] {
		return category
	}
	return OtherCategory
}

// MapIngredientCategory maps a sheet food type to the ingredient enum.
func MapIngredientCategory(foodType string) string {
	if c, ok := ingredientCategories[foodType]; ok {
		return c
	}
	return OtherIngredientCategory
}

// MapCuisineType lowercases and trims the cuisine; unknown values are "otra".
func MapCuisineType(cuisine string) string {
	c := strings.ToLower(strings.TrimSpace(cuisine))
	if cuisineTypes[c] {
		return c
	}
	return OtherCuisine
}

// NumericValue returns the first whitespace separated token of a nutrition
// cell, or "0" for an empty one.
func NumericValue(cell string) string {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return "0"
	}
	return fields[0]
}
