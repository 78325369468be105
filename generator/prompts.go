package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"liora"
	"liora/catalog"
)

const (
	systemName        = "Eres un chef creativo experto en nombres de platos."
	systemIngredients = "Eres un chef experto. Selecciona ingredientes precisos."
	systemSteps       = "Eres un chef experto. Genera pasos de recetas manteniendo las variables como texto literal."
	systemDietary     = "Eres un experto en nutrición. Analiza los ingredientes y determina las restricciones dietéticas."
	systemNutrition   = "Eres un experto en nutrición. Calcula los valores nutricionales precisos."
	systemRecipeType  = "Eres un experto en categorización de recetas."
	systemDescription = "Genera una descripción técnica y precisa para esta receta."
	systemCategorize  = "Eres un experto en clasificación de ingredientes culinarios. " +
		"Categoriza cada ingrediente en su categoría más específica."
)

func namePrompt(recipeType string) string {
	return fmt.Sprintf(`Crea un nombre completo para una receta de %s que incluya:
1. Plato principal (name)
2. Acompañamiento especial (side_dish)
3. Una descripción breve y apetecible (short_description)

Opcionalmente indica también:
- meal_type: uno de %s
- cuisine_type: uno de %s
- prep_time: tiempo de preparación, por ejemplo "30 min"

Ejemplos de name y side_dish:
- "Macarrones con tomate" y "con mejillones en escabeche"
- "Arroz negro" y "con calamares y alioli casero"
- "Solomillo de cerdo al whisky" y "con champiñones salteados y patatas asadas"

NO generes nombres demasiado simples ("Arroz con pollo"), poco descriptivos
("Ensalada mixta" con "con atún") ni genéricos ("Pasta" con "con salsa").

Responde SOLO con un objeto JSON:
{"name": "...", "side_dish": "...", "short_description": "...", "meal_type": "...", "cuisine_type": "...", "prep_time": "..."}`,
		recipeType, strings.Join(MealTypes, ", "), strings.Join(CuisineTypes, ", "))
}

func ingredientsPrompt(name, sideDish string, categories []catalog.Category) string {
	vocabulary := make(map[string][]string, len(categories))
	for _, c := range categories {
		vocabulary[c.Name] = c.Ingredients
	}

	return fmt.Sprintf(`Genera una lista de ingredientes para la receta "%s %s".

Usa ÚNICAMENTE ingredientes de estas categorías, respetando EXACTAMENTE sus nombres y categorías:
%s

IMPORTANTE:
1. Usa EXACTAMENTE los nombres de los ingredientes como aparecen en la lista
2. No agregues palabras como "filetes de" o "rodajas de" al nombre del ingrediente
3. La cantidad y unidad deben ir separadas del nombre del ingrediente
4. Si necesitas especificar el corte o preparación, hazlo en los pasos de la receta

La respuesta debe ser un array JSON válido con este formato exacto:
[
  {"name": "Cebolla", "quantity": 1, "unit": "unidad", "category": "Verduras Básicas"},
  {"name": "Zanahoria", "quantity": 2, "unit": "unidad", "category": "Verduras de Raíz"}
]

Reglas:
1. Los ingredientes deben corresponder EXACTAMENTE con el nombre de la receta y su acompañamiento
2. La categoría debe coincidir EXACTAMENTE con la categoría del ingrediente en la lista
3. La cantidad debe ser un número
4. La unidad debe estar SIEMPRE en singular: "unidad", "diente", "cucharada", "taza", "pizca"`,
		name, sideDish, marshalIndent(vocabulary))
}

func stepsPrompt(ingredients []liora.Ingredient) string {
	var list strings.Builder
	for i, ing := range ingredients {
		fmt.Fprintf(&list, "%d. %s (%s %s)\n", i+1, ing.Name, ing.Quantity, ing.Unit)
	}

	return fmt.Sprintf(`Crea los pasos de preparación usando ÚNICAMENTE estos ingredientes numerados:
%s
Reglas:
1. Para referirte a un ingrediente usa EXACTAMENTE el formato: "{quantity_X} {unit_X} {ingredient_X}"
   donde X es el número del ingrediente en la lista anterior
2. Cada paso debe comenzar con un emoji relevante
3. Los pasos deben ser claros y concisos
4. NO menciones ingredientes que no estén en la lista
5. Usa las llaves { } en el texto, NO intentes evaluar las variables

Ejemplo de formato correcto:
[
  "🥄 Mezcla {quantity_1} {unit_1} {ingredient_1} con {quantity_2} {unit_2} {ingredient_2} en un bol",
  "🔥 Hornea a 180°C durante 30 minutos"
]`, list.String())
}

func dietaryPrompt(ingredients []liora.Ingredient) string {
	return fmt.Sprintf(`Analiza estos ingredientes y determina las restricciones dietéticas:
%s

Devuelve un objeto JSON con estos campos (true/false):
%s

IMPORTANTE: La respuesta debe ser un objeto JSON válido.`,
		marshalIndent(ingredients), keyTemplate(liora.DietaryKeys, "true/false"))
}

func nutritionPrompt(ingredients []liora.Ingredient) string {
	return fmt.Sprintf(`Calcula la información nutricional para estos ingredientes:
%s

Devuelve un objeto JSON con estos campos (valores numéricos por porción):
{
  "energy_kj": 1000,
  "calories": 240,
  "fats": 10.5,
  "saturated_fats": 2.3,
  "carbohydrates": 30.2,
  "sugars": 5.1,
  "fiber": 3.2,
  "proteins": 8.4
}

IMPORTANTE:
1. La respuesta debe ser un objeto JSON válido
2. Todos los valores deben ser números
3. No incluyas unidades en los valores
4. Calcula los valores para una porción`, marshalIndent(ingredients))
}

func recipeTypePrompt(name, sideDish string) string {
	return fmt.Sprintf(`Determina la categoría más apropiada para esta receta:
Nombre: %s
Acompañamiento: %s

Categorías disponibles:
%s

Responde ÚNICAMENTE con el nombre exacto de la subcategoría más apropiada.`,
		name, sideDish, marshalIndent(RecipeCategories))
}

func descriptionPrompt(name, sideDish string) string {
	return fmt.Sprintf(`Crea una descripción técnica para: %s %s
Incluye:
- Método exacto de cocción y temperatura/tiempo
- Técnicas culinarias utilizadas
- Resultado final esperado`, name, sideDish)
}

func categorizePrompt(name string, categories []string) string {
	return fmt.Sprintf(`Categoriza este ingrediente en una de las categorías existentes:

Ingrediente: "%s"

INSTRUCCIONES:
1. Usa ÚNICAMENTE una de estas categorías existentes:
%s

2. Reglas específicas:
- Todos los tipos de pasta van en la categoría "%s"
- Las harinas y masas van en "Harinas y Masas"
- Los panes van en "Panes Tradicionales"
- Las verduras van en sus categorías específicas
- Mantén el nombre original si es un ingrediente válido; NO sugieras cambios drásticos

3. Responde SOLO con este formato JSON:
{"name": "nombre en singular", "category": "categoría de la lista", "aliases": ["variante1", "variante2"]}`,
		name, marshalIndent(categories), PastaCategory)
}

func keyTemplate(keys []string, value string) string {
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("  %q: %s", k, value)
	}
	return "{\n" + strings.Join(lines, ",\n") + "\n}"
}

// marshalIndent renders prompt data as readable UTF-8 JSON.
func marshalIndent(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(buf.String())
}
