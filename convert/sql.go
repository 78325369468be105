package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"liora"
)

const DefaultServings = 4

type SQLOptions struct {
	// Servings is used for recipes that carry none. Zero means DefaultServings.
	Servings int
	// KeepExisting omits the DELETE statements.
	KeepExisting bool
}

var recipeColumns = []string{
	"name", "side_dish", "meal_type", "category", "servings",
	"calories", "energy_kj", "fats", "saturated_fats", "carbohydrates",
	"sugars", "fiber", "proteins", "sodium", "prep_time", "instructions",
	"url", "pdf_url", "image_url", "cuisine_type",
}

// WriteSQL writes the seed migration for the recipes: the unique
// ingredients, the recipes, and one recipe_ingredients insert per recipe.
func WriteSQL(w io.Writer, recipes []liora.Recipe, opts SQLOptions) error {
	if opts.Servings <= 0 {
		opts.Servings = DefaultServings
	}

	var b strings.Builder
	if !opts.KeepExisting {
		b.WriteString("-- Primero limpiamos las tablas existentes\n")
		b.WriteString("DELETE FROM recipe_ingredients;\nDELETE FROM recipes;\nDELETE FROM ingredients;\n\n")
	}

	if ings := UniqueIngredients(recipes); len(ings) > 0 {
		b.WriteString("-- Insertar ingredientes únicos\nINSERT INTO ingredients (name, category) VALUES\n")
		rows := make([]string, len(ings))
		for i, ing := range ings {
			rows[i] = fmt.Sprintf("(%s, %s)", quote(ing.Name), quote(ing.Category))
		}
		b.WriteString(strings.Join(rows, ",\n"))
		b.WriteString(" ON CONFLICT (name) DO NOTHING;\n\n")
	}

	if len(recipes) > 0 {
		b.WriteString("-- Insertar recetas\nINSERT INTO recipes (\n")
		for i := 0; i < len(recipeColumns); i += 5 {
			end := min(i+5, len(recipeColumns))
			b.WriteString("    " + strings.Join(recipeColumns[i:end], ", "))
			if end < len(recipeColumns) {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(") VALUES\n")

		rows := make([]string, len(recipes))
		for i, rec := range recipes {
			row, err := recipeValues(rec, opts.Servings)
			if err != nil {
				return fmt.Errorf("recipe %q: %w", rec.Name, err)
			}
			rows[i] = row
		}
		b.WriteString(strings.Join(rows, ",\n"))
		b.WriteString(";\n\n")

		b.WriteString("-- Relacionar ingredientes con recetas\n")
		for _, rec := range recipes {
			writeRecipeIngredients(&b, rec)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write sql: %w", err)
	}
	slog.Info("CONVERT: Wrote SQL migration", "recipes", len(recipes))
	return nil
}

// UniqueIngredients returns one row per ingredient name, in first-seen
// order, with the mapped category of its last occurrence.
func UniqueIngredients(recipes []liora.Recipe) []liora.Ingredient {
	pos := make(map[string]int)
	var out []liora.Ingredient
	for _, rec := range recipes {
		for _, ing := range rec.Ingredients {
			row := liora.Ingredient{Name: ing.Name, Category: MapIngredientCategory(ing.Category)}
			if i, ok := pos[ing.Name]; ok {
				out[i] = row
				continue
			}
			pos[ing.Name] = len(out)
			out = append(out, row)
		}
	}
	return out
}

func recipeValues(rec liora.Recipe, servings int) (string, error) {
	if rec.Servings > 0 {
		servings = rec.Servings
	}
	prep := rec.PrepTime
	if prep == "" {
		prep = DefaultPrepTime
	}
	instructions, err := InstructionsJSON(rec.Steps)
	if err != nil {
		return "", err
	}

	n := rec.Nutrition
	values := []string{
		quote(rec.Name),
		quote(rec.SideDish),
		quote(strings.ToLower(rec.MealType)),
		quote(MapCategory(rec.Category)),
		strconv.Itoa(servings),
		quote(formatNumber(n.Calories)),
		quote(formatNumber(n.EnergyKJ)),
		quote(formatNumber(n.Fats)),
		quote(formatNumber(n.SaturatedFats)),
		quote(formatNumber(n.Carbohydrates)),
		quote(formatNumber(n.Sugars)),
		quote(formatNumber(n.Fiber)),
		quote(formatNumber(n.Proteins)),
		quote("0"),
		quote(prep),
		quote(instructions) + "::jsonb",
		quote(rec.URL),
		quote(rec.PDFURL),
		quote(rec.ImageURL),
		quote(MapCuisineType(rec.CuisineType)),
	}
	return "(\n    " + strings.Join(values, ",\n    ") + "\n)", nil
}

func writeRecipeIngredients(b *strings.Builder, rec liora.Recipe) {
	ings := MergeIngredients(rec.Ingredients)
	if len(ings) == 0 {
		return
	}
	cte := "recipe_" + identifier(rec.Name)

	fmt.Fprintf(b, "WITH %s AS (\n    SELECT id FROM recipes WHERE name = %s\n)\n", cte, quote(rec.Name))
	b.WriteString("INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit)\nSELECT\n")
	fmt.Fprintf(b, "    (SELECT id FROM %s),\n    i.id,\n    ing.quantity,\n    ing.unit::unit_type\nFROM (\n    VALUES\n", cte)

	rows := make([]string, len(ings))
	for i, ing := range ings {
		qty := "NULL"
		if ing.Quantity.Numeric {
			qty = formatNumber(ing.Quantity.Value)
		} else {
			slog.Warn("CONVERT: Non-numeric quantity written as NULL",
				"recipe", rec.Name, "ingredient", ing.Name, "quantity", ing.Quantity.Raw)
		}
		rows[i] = fmt.Sprintf("    (%s, %s, %s)", quote(ing.Name), qty, quote(string(ing.Unit)))
	}
	b.WriteString(strings.Join(rows, ",\n"))
	b.WriteString("\n) AS ing(name, quantity, unit)\nJOIN ingredients i ON i.name = ing.name\n")
	b.WriteString("ON CONFLICT (recipe_id, ingredient_id) DO UPDATE SET quantity = EXCLUDED.quantity;\n\n")
}

// InstructionsJSON renders the steps as {"Paso 1": ..., "Paso 6": ...}.
// Missing steps up to StepSlots are written as empty strings.
func InstructionsJSON(steps []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	var b strings.Builder
	b.WriteString("{")
	for j := 1; j <= max(StepSlots, len(steps)); j++ {
		step := ""
		if j <= len(steps) {
			step = steps[j-1]
		}
		buf.Reset()
		if err := enc.Encode(step); err != nil {
			return "", fmt.Errorf("encode step %d: %w", j, err)
		}
		if j > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "\"Paso %d\": %s", j, strings.TrimSuffix(buf.String(), "\n"))
	}
	b.WriteString("}")
	return b.String(), nil
}

// ParseInstructions reads what InstructionsJSON wrote back into ordered
// steps, dropping empty ones.
func ParseInstructions(data []byte) ([]string, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode instructions: %w", err)
	}
	type step struct {
		n    int
		text string
	}
	var steps []step
	for k, v := range m {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(k, "Paso")))
		if err != nil {
			return nil, fmt.Errorf("instruction key %q: %w", k, err)
		}
		if v = strings.TrimSpace(v); v != "" {
			steps = append(steps, step{n, v})
		}
	}
	slices.SortFunc(steps, func(a, b step) int { return a.n - b.n })

	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.text
	}
	return out, nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// identifier turns a recipe name into a CTE name fragment.
func identifier(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
}
