package generator

import (
	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"liora"
)

var zero = 0.0

func str() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }

func nameSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":              str(),
			"side_dish":         str(),
			"short_description": str(),
			"meal_type":         str(),
			"cuisine_type":      str(),
			"prep_time":         str(),
		},
		Required: []string{"name", "side_dish", "short_description"},
	}
}

func ingredientsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "array",
		Items: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":     str(),
				"quantity": {Type: "number", Minimum: &zero},
				"unit":     str(),
				"category": str(),
			},
			Required: []string{"name", "quantity", "unit", "category"},
		},
	}
}

func stepsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: str()}
}

func dietarySchema() *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(liora.DietaryKeys))
	for _, k := range liora.DietaryKeys {
		props[k] = &jsonschema.Schema{Type: "boolean"}
	}
	return &jsonschema.Schema{Type: "object", Properties: props, Required: liora.DietaryKeys}
}

func nutritionSchema() *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(liora.NutritionKeys))
	for _, k := range liora.NutritionKeys {
		props[k] = &jsonschema.Schema{Type: "number", Minimum: &zero}
	}
	return &jsonschema.Schema{Type: "object", Properties: props, Required: liora.NutritionKeys}
}

func categorizationSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":     str(),
			"category": str(),
			"aliases":  {Type: "array", Items: str()},
		},
		Required: []string{"name", "category"},
	}
}
