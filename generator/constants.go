package generator

import (
	"fmt"
	"strings"
)

// Group is a main recipe category and its subcategories.
type Group struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// RecipeCategories lists the recipe types a recipe can be generated for,
// in display order.
var RecipeCategories = []Group{
	{Name: "Carnes", Subcategories: []string{"Aves", "Cerdo", "Ternera y Vacuno", "Cordero", "Caza", "Casquería"}},
	{Name: "Pescados y Mariscos", Subcategories: []string{"Pescados", "Mariscos", "Cefalópodos", "Conservas de Mar"}},
	{Name: "Vegetarianas", Subcategories: []string{"Verduras", "Legumbres", "Arroces y Cereales", "Pasta", "Huevos"}},
	{Name: "Veganas", Subcategories: []string{"Verduras", "Legumbres", "Cereales", "Proteínas Vegetales", "Sin Gluten"}},
	{Name: "Ensaladas", Subcategories: []string{"Ensaladas Frescas", "Ensaladas Templadas", "Ensaladas de Pasta", "Bowls"}},
	{Name: "Sopas y Cremas", Subcategories: []string{"Sopas Calientes", "Sopas Frías", "Cremas de Verduras", "Caldos y Consomés"}},
	{Name: "Arroces y Pastas", Subcategories: []string{"Arroces", "Pastas", "Risottos", "Fideuás"}},
	{Name: "Postres", Subcategories: []string{"Tartas y Pasteles", "Helados y Sorbetes", "Frutas", "Sin Azúcar"}},
}

var CuisineTypes = []string{
	"mexicana", "española", "japonesa", "china", "coreana", "tailandesa", "vietnamita",
	"india", "mediterránea", "griega", "turca", "libanesa", "marroquí", "francesa",
	"alemana", "británica", "americana", "tex-mex", "brasileña", "peruana", "argentina",
	"colombiana", "venezolana", "caribeña", "portuguesa", "rusa", "polaca", "nórdica",
	"hawaiana", "fusión", "fast food", "tradicional", "moderna", "casera", "callejera", "gourmet",
}

var MealTypes = []string{"desayuno", "comida", "cena", "snack"}

// Subcategories returns every recipe type once, in declaration order.
func Subcategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range RecipeCategories {
		for _, s := range g.Subcategories {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// MainCategory returns the first group that lists subcategory.
func MainCategory(subcategory string) (string, bool) {
	for _, g := range RecipeCategories {
		for _, s := range g.Subcategories {
			if strings.EqualFold(s, subcategory) {
				return g.Name, true
			}
		}
	}
	return "", false
}

// canonicalRecipeType matches a model answer against the known
// subcategories, ignoring case, quotes and a trailing period.
func canonicalRecipeType(answer string) (string, error) {
	a := strings.Trim(strings.TrimSpace(answer), `"'.`)
	for _, s := range Subcategories() {
		if strings.EqualFold(s, a) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown recipe type %q", answer)
}

func oneOf(value string, allowed []string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if a == v {
			return a, true
		}
	}
	return "", false
}
