package convert

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liora"
	"liora/catalog"
	"liora/reconcile"
	"liora/units"
)

func sampleRecipe() liora.Recipe {
	return liora.Recipe{
		Name:        "Merluza a la gallega de l'Avi",
		SideDish:    "Patatas",
		MealType:    "Cena",
		Category:    "Pescados",
		CuisineType: "Española",
		Nutrition:   liora.Nutrition{Calories: 320.5, Proteins: 28},
		Steps:       []string{"Cocer las patatas.", "Añadir la \"merluza\"."},
		Ingredients: []liora.Ingredient{
			{Name: "Merluza", Quantity: units.Number(200), Unit: units.Gramo, Category: "Pescadería"},
			{Name: "Ajo", Quantity: units.Number(1), Unit: units.Unidad, Category: "Vegetales y Legumbres"},
			{Name: "Ajo", Quantity: units.Number(1), Unit: units.Unidad, Category: "Vegetales y Legumbres"},
			{Name: "Sal", Quantity: units.Text("al gusto"), Unit: units.Unidad},
		},
	}
}

func TestWriteSQL(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteSQL(&b, []liora.Recipe{sampleRecipe()}, SQLOptions{}))
	sql := b.String()

	assert.True(t, strings.HasPrefix(sql, "-- Primero limpiamos las tablas existentes\nDELETE FROM recipe_ingredients;\nDELETE FROM recipes;\nDELETE FROM ingredients;\n"))
	assert.Contains(t, sql, "INSERT INTO ingredients (name, category) VALUES\n"+
		"('Merluza', 'Pescadería'),\n"+
		"('Ajo', 'Vegetales y Legumbres'),\n"+
		"('Sal', 'Otras Categorías') ON CONFLICT (name) DO NOTHING;\n")
	assert.Contains(t, sql, "    name, side_dish, meal_type, category, servings,\n")
	assert.Contains(t, sql, "    url, pdf_url, image_url, cuisine_type\n) VALUES\n")

	assert.Contains(t, sql, "'Merluza a la gallega de l''Avi',\n    'Patatas',\n    'cena',\n    'Pescados',\n    4,\n    '320.5',")
	assert.Contains(t, sql, "    '0',\n    '45',\n")
	assert.Contains(t, sql, `'{"Paso 1": "Cocer las patatas.", "Paso 2": "Añadir la \"merluza\".", "Paso 3": "", "Paso 4": "", "Paso 5": "", "Paso 6": ""}'::jsonb`)
	assert.Contains(t, sql, "'española'\n);\n")

	assert.Contains(t, sql, "WITH recipe_Merluza_a_la_gallega_de_l_Avi AS (\n    SELECT id FROM recipes WHERE name = 'Merluza a la gallega de l''Avi'\n)\n")
	assert.Contains(t, sql, "    ('Merluza', 200, 'gramo'),\n    ('Ajo', 2, 'unidad'),\n    ('Sal', NULL, 'unidad')\n) AS ing(name, quantity, unit)\n")
	assert.True(t, strings.HasSuffix(sql, "JOIN ingredients i ON i.name = ing.name\nON CONFLICT (recipe_id, ingredient_id) DO UPDATE SET quantity = EXCLUDED.quantity;\n\n"))
}

func TestWriteSQL_Options(t *testing.T) {
	rec := sampleRecipe()
	rec.PrepTime = "20 min"

	var b strings.Builder
	require.NoError(t, WriteSQL(&b, []liora.Recipe{rec}, SQLOptions{Servings: 2, KeepExisting: true}))

	assert.NotContains(t, b.String(), "DELETE FROM")
	assert.Contains(t, b.String(), "    2,\n")
	assert.Contains(t, b.String(), "'20 min'")

	rec.Servings = 6
	b.Reset()
	require.NoError(t, WriteSQL(&b, []liora.Recipe{rec}, SQLOptions{Servings: 2}))
	assert.Contains(t, b.String(), "    6,\n")
}

func TestWriteSQL_Empty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteSQL(&b, nil, SQLOptions{}))
	assert.NotContains(t, b.String(), "INSERT")
}

func TestUniqueIngredients_LastCategoryWins(t *testing.T) {
	got := UniqueIngredients([]liora.Recipe{
		{Ingredients: []liora.Ingredient{{Name: "Leche", Category: "Dulces"}, {Name: "Pan"}}},
		{Ingredients: []liora.Ingredient{{Name: "Leche", Category: "Lácteos y Derivados"}}},
	})
	require.Len(t, got, 2)
	assert.Equal(t, liora.Ingredient{Name: "Leche", Category: "Lácteos, Huevos y Derivados"}, got[0])
	assert.Equal(t, "Pan", got[1].Name)
}

func TestInstructionsJSON_MoreThanSixSteps(t *testing.T) {
	steps := []string{"1", "2", "3", "4", "5", "6", "7"}
	got, err := InstructionsJSON(steps)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, `"Paso 7": "7"}`))
}

func testReconciler() *reconcile.Reconciler {
	cat := catalog.New([]catalog.Category{
		{Name: "Pescados Blancos", Ingredients: []string{"Merluza", "Bacalao"}},
		{Name: "Verduras Básicas", Ingredients: []string{"Ajo", "Cebolla"}},
	}, nil)
	return reconcile.New(cat)
}

func TestConverter_Reconcile(t *testing.T) {
	ok := liora.Recipe{
		Name: "Merluza al ajillo",
		Ingredients: []liora.Ingredient{
			{Name: "merluza", Quantity: units.Number(200), Unit: units.Gramo, Category: "Pescadería"},
			{Name: "Ajos", Quantity: units.Number(2), Unit: units.Unidad, Category: "Vegetales y Legumbres"},
		},
	}
	bad := liora.Recipe{
		Name: "Tempeh con ajo",
		Ingredients: []liora.Ingredient{
			{Name: "Tempeh ahumado", Quantity: units.Number(100), Unit: units.Gramo},
			{Name: "Ajo", Quantity: units.Number(1), Unit: units.Unidad},
		},
	}

	c := NewConverter(testReconciler())
	kept, rejected := c.Reconcile(context.Background(), []liora.Recipe{ok, bad})

	require.Len(t, kept, 1)
	assert.Equal(t, "Merluza", kept[0].Ingredients[0].Name)
	assert.Equal(t, "Pescadería", kept[0].Ingredients[0].Category, "sheet food type is kept")
	assert.Equal(t, "Ajo", kept[0].Ingredients[1].Name)
	assert.Equal(t, units.Number(2), kept[0].Ingredients[1].Quantity)
	assert.Equal(t, "merluza", ok.Ingredients[0].Name, "input is not modified")

	require.Len(t, rejected, 1)
	assert.Equal(t, "Tempeh con ajo", rejected[0].Recipe)
	assert.Equal(t, []string{"Tempeh ahumado"}, rejected[0].Unresolved)
	assert.Contains(t, rejected[0].String(), "Tempeh ahumado")
}

func TestConverter_ReconcileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	kept, rejected := NewConverter(testReconciler()).Reconcile(ctx, []liora.Recipe{{Name: "Merluza"}})
	assert.Empty(t, kept)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Err, context.Canceled)
}

func TestParseInstructions(t *testing.T) {
	got, err := ParseInstructions([]byte(`{"Paso 2": "Hornear.", "Paso 10": "Servir.", "Paso 1": "Mezclar.", "Paso 3": ""}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Mezclar.", "Hornear.", "Servir."}, got)

	_, err = ParseInstructions([]byte(`{"Step one": "x"}`))
	assert.Error(t, err)

	js, err := InstructionsJSON([]string{"Mezclar."})
	require.NoError(t, err)
	back, err := ParseInstructions([]byte(js))
	require.NoError(t, err)
	assert.Equal(t, []string{"Mezclar."}, back)
}
