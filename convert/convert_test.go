package convert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liora"
	"liora/units"
)

const spanishSheet = "\ufeffTitulo,Descripcion,Tipo de comida,Categoria,Valor energético (kcal),Grasas,Ingrediente_1,Cantidad_1,Tipo_1,Ingrediente_2,Cantidad_2,Tipo_2,Ingrediente_3,Cantidad_3,Tipo_3,Paso 1,Paso 2,Cuisine_type\n" +
	"Merluza en salsa,Con patatas,Cena,Pescados,\"320,5 kcal\",12 g,Merluza,200 g,Pescadería,Ajo,2 dientes,Vegetales y Legumbres,Sal,al gusto,,Limpiar la merluza.,Cocinar con el ajo.,Española\n" +
	",sin titulo,,,,,,,,,,,,,,,,\n" +
	"Tostada,,,Desayuno,,,Pan,1/2 rebanadas,Cereales y Derivados,,,,,,,Tostar.,,\n"

const englishSheet = "name,side_dish,meal_type,category,calories,ingredient_1,quantity_1,type_1,step_1,cuisine_type\n" +
	"Lentejas,Ensalada,Comida,Legumbres,410,Lentejas,250 gramos,Vegetales y Legumbres,Cocer.,casera\n"

func TestDetectHeaders(t *testing.T) {
	hs, err := DetectHeaders([]string{"Titulo", "Ingrediente_1", "Cantidad_1"})
	require.NoError(t, err)
	assert.Equal(t, "es", hs.Name)

	hs, err = DetectHeaders([]string{"name", "ingredient_1"})
	require.NoError(t, err)
	assert.Equal(t, "en", hs.Name)

	_, err = DetectHeaders([]string{"foo", "bar"})
	assert.ErrorIs(t, err, ErrUnknownHeaders)
}

func TestHeaderSet_Columns(t *testing.T) {
	assert.Equal(t, "Ingrediente_20", SpanishHeaders.Ingredient(20))
	assert.Equal(t, "Paso 3", SpanishHeaders.Step(3))
	assert.Equal(t, "quantity_7", EnglishHeaders.Quantity(7))
	assert.Equal(t, "type_1", EnglishHeaders.FoodType(1))

	hs, ok := HeaderSetByName("en")
	assert.True(t, ok)
	assert.Equal(t, EnglishHeaders.Title, hs.Title)
	_, ok = HeaderSetByName("fr")
	assert.False(t, ok)
}

func TestReadCSV_Spanish(t *testing.T) {
	recipes, err := ReadCSV(strings.NewReader(spanishSheet), HeaderSet{})
	require.NoError(t, err)
	require.Len(t, recipes, 2, "rows without a title are skipped")

	r := recipes[0]
	assert.Equal(t, "Merluza en salsa", r.Name)
	assert.Equal(t, "Con patatas", r.SideDish)
	assert.Equal(t, "Cena", r.MealType)
	assert.InDelta(t, 320.5, r.Nutrition.Calories, 1e-9)
	assert.InDelta(t, 12, r.Nutrition.Fats, 1e-9)
	assert.Zero(t, r.Nutrition.Proteins)
	assert.Equal(t, []string{"Limpiar la merluza.", "Cocinar con el ajo."}, r.Steps)
	assert.Equal(t, "Española", r.CuisineType)

	require.Len(t, r.Ingredients, 3)
	assert.Equal(t, liora.Ingredient{Name: "Merluza", Quantity: units.Number(200), Unit: units.Gramo, Category: "Pescadería"}, r.Ingredients[0])
	assert.Equal(t, units.Number(2), r.Ingredients[1].Quantity)
	assert.Equal(t, units.Unidad, r.Ingredients[1].Unit)
	assert.Equal(t, units.Text("al gusto"), r.Ingredients[2].Quantity)

	toast := recipes[1]
	assert.Equal(t, "Comida", toast.MealType, "empty meal type gets the layout default")
	require.Len(t, toast.Ingredients, 1)
	assert.Equal(t, units.Number(0.5), toast.Ingredients[0].Quantity)
	assert.Equal(t, units.Rebanada, toast.Ingredients[0].Unit)
}

func TestReadCSV_English(t *testing.T) {
	recipes, err := ReadCSV(strings.NewReader(englishSheet), EnglishHeaders)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Lentejas", recipes[0].Name)
	assert.InDelta(t, 410, recipes[0].Nutrition.Calories, 1e-9)
	assert.Equal(t, units.Gramo, recipes[0].Ingredients[0].Unit)
	assert.Equal(t, []string{"Cocer."}, recipes[0].Steps)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("foo,bar\n1,2\n"), HeaderSet{})
	assert.ErrorIs(t, err, ErrUnknownHeaders)

	recipes, err := ReadCSV(strings.NewReader(""), HeaderSet{})
	assert.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestJSON_RoundTrip(t *testing.T) {
	recipes, err := ReadCSV(strings.NewReader(spanishSheet), SpanishHeaders)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, recipes))
	assert.Contains(t, buf.String(), `"name": "Merluza en salsa"`)
	assert.Contains(t, buf.String(), `"quantity": "al gusto"`)

	back, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, recipes, back)
}

func TestWriteJSON_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []liora.Recipe{{Name: "Pan & aceite <casero>"}}))
	assert.Contains(t, buf.String(), "Pan & aceite <casero>")

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestMapping(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"allowed category", MapCategory("Pastas y Arroces"), "Pastas y Arroces"},
		{"unknown category", MapCategory("Postres"), "Otros"},
		{"empty category", MapCategory(""), "Otros"},
		{"mapped food type", MapIngredientCategory("Lácteos y Derivados"), "Lácteos, Huevos y Derivados"},
		{"identity food type", MapIngredientCategory("Frutas"), "Frutas"},
		{"unknown food type", MapIngredientCategory("Dulces"), "Otras Categorías"},
		{"cuisine is lowered", MapCuisineType("  Española "), "española"},
		{"cuisine underscore", MapCuisineType("sin_gluten"), "sin_gluten"},
		{"unknown cuisine", MapCuisineType("Klingon"), "otra"},
		{"numeric value", NumericValue("320 kcal"), "320"},
		{"numeric value comma", NumericValue(" 12,5 g"), "12,5"},
		{"numeric value empty", NumericValue("  "), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestMergeIngredients(t *testing.T) {
	in := []liora.Ingredient{
		{Name: "Ajo", Quantity: units.Number(1), Unit: units.Unidad},
		{Name: "Sal", Quantity: units.Text("al gusto"), Unit: units.Unidad},
		{Name: "Ajo", Quantity: units.Number(2), Unit: units.Unidad},
		{Name: "Ajo", Quantity: units.Number(5), Unit: units.Gramo},
		{Name: "Sal", Quantity: units.Number(1), Unit: units.Unidad},
	}

	got := MergeIngredients(in)

	require.Len(t, got, 3)
	assert.Equal(t, "Ajo", got[0].Name)
	assert.Equal(t, units.Number(3), got[0].Quantity)
	assert.Equal(t, units.Text("al gusto"), got[1].Quantity)
	assert.Equal(t, units.Gramo, got[2].Unit)
	assert.Equal(t, units.Number(1), in[0].Quantity, "input is not modified")
}
