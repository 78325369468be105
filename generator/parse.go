package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"liora"
	"liora/llm"
	"liora/units"
)

// MissingKeysError reports a model answer without some required fields.
type MissingKeysError struct {
	Stage string
	Keys  []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Stage, strings.Join(e.Keys, ", "))
}

type nameResult struct {
	Name             string `json:"name"`
	SideDish         string `json:"side_dish"`
	ShortDescription string `json:"short_description"`
	MealType         string `json:"meal_type"`
	CuisineType      string `json:"cuisine_type"`
	PrepTime         string `json:"prep_time"`
}

func parseName(content string) (nameResult, error) {
	var r nameResult
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &r); err != nil {
		return nameResult{}, fmt.Errorf("decode recipe name: %w", err)
	}
	r.Name = strings.TrimSpace(r.Name)
	r.SideDish = strings.TrimSpace(r.SideDish)
	r.ShortDescription = strings.TrimSpace(r.ShortDescription)
	r.PrepTime = strings.TrimSpace(r.PrepTime)

	var missing []string
	for k, v := range map[string]string{"name": r.Name, "side_dish": r.SideDish, "short_description": r.ShortDescription} {
		if v == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nameResult{}, &MissingKeysError{Stage: stageName, Keys: missing}
	}

	// Optional fields outside the known vocabularies are dropped.
	r.MealType, _ = oneOf(r.MealType, MealTypes)
	r.CuisineType, _ = oneOf(r.CuisineType, CuisineTypes)
	return r, nil
}

type wireIngredient struct {
	Name     string       `json:"name"`
	Quantity units.Amount `json:"quantity"`
	Unit     string       `json:"unit"`
	Category string       `json:"category"`
}

func parseIngredients(content string) ([]liora.Ingredient, error) {
	var wire []wireIngredient
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &wire); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if len(wire) == 0 {
		return nil, errors.New("no ingredients in response")
	}

	out := make([]liora.Ingredient, 0, len(wire))
	for _, w := range wire {
		unit := units.Singular(strings.ToLower(w.Unit))
		if unit == "" {
			unit = string(units.Default)
		}
		out = append(out, liora.Ingredient{
			Name:     strings.TrimSpace(w.Name),
			Quantity: w.Quantity,
			Unit:     units.Unit(unit),
			Category: strings.TrimSpace(w.Category),
		})
	}
	return out, nil
}

// parseSteps reads a JSON array of strings. When the array does not decode,
// quoted lines of the raw answer are taken as steps.
func parseSteps(content string) ([]string, error) {
	var steps []string
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &steps); err != nil {
		steps = nil
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, `"`) || strings.HasPrefix(line, "“") {
				steps = append(steps, strings.Trim(line, `",“”`))
			}
		}
	}

	out := steps[:0]
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no steps in response")
	}
	return out, nil
}

// parseDietary reads the twelve dietary flags. A JSON object is preferred;
// a "key: true" list, one flag per line, is accepted as a fallback.
func parseDietary(content string) (liora.DietaryInfo, error) {
	raw := make(map[string]any)
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &raw); err != nil {
		raw, err = dietaryFromYAML(content)
		if err != nil {
			return liora.DietaryInfo{}, fmt.Errorf("decode dietary info: %w", err)
		}
	}

	flags := make(map[string]bool, len(liora.DietaryKeys))
	var missing []string
	for _, k := range liora.DietaryKeys {
		v, ok := raw[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		switch t := v.(type) {
		case bool:
			flags[k] = t
		case string:
			flags[k] = strings.EqualFold(strings.TrimSpace(t), "true")
		default:
			return liora.DietaryInfo{}, fmt.Errorf("dietary flag %s is %T, want boolean", k, v)
		}
	}
	if len(missing) > 0 {
		return liora.DietaryInfo{}, &MissingKeysError{Stage: stageDietary, Keys: missing}
	}

	var info liora.DietaryInfo
	b, _ := json.Marshal(flags)
	if err := json.Unmarshal(b, &info); err != nil {
		return liora.DietaryInfo{}, err
	}
	return info, nil
}

func dietaryFromYAML(content string) (map[string]any, error) {
	lines := strings.Split(strings.ReplaceAll(content, "`", ""), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if strings.Contains(line, ":") {
			kept = append(kept, line)
		}
	}
	out := make(map[string]any)
	if err := yaml.Unmarshal([]byte(strings.Join(kept, "\n")), &out); err != nil {
		return nil, err
	}
	return out, nil
}

var nutritionPatterns = map[string]*regexp.Regexp{
	"energy_kj":      regexp.MustCompile(`energía:?\s*(\d+(?:[.,]\d+)?)\s*kj`),
	"calories":       regexp.MustCompile(`calorías:?\s*(\d+(?:[.,]\d+)?)\s*kcal`),
	"fats":           regexp.MustCompile(`grasas totales:?\s*(\d+(?:[.,]\d+)?)\s*g`),
	"saturated_fats": regexp.MustCompile(`grasas saturadas:?\s*(\d+(?:[.,]\d+)?)\s*g`),
	"carbohydrates":  regexp.MustCompile(`carbohidratos:?\s*(\d+(?:[.,]\d+)?)\s*g`),
	"sugars":         regexp.MustCompile(`azúcares:?\s*(\d+(?:[.,]\d+)?)\s*g`),
	"fiber":          regexp.MustCompile(`fibra:?\s*(\d+(?:[.,]\d+)?)\s*g`),
	"proteins":       regexp.MustCompile(`proteínas:?\s*(\d+(?:[.,]\d+)?)\s*g`),
}

// parseNutrition reads the eight nutrition values. Numbers may be JSON
// numbers or strings with a comma decimal separator. When the answer is not
// JSON, values are pulled out of Spanish prose ("Calorías: 240 kcal").
func parseNutrition(content string) (liora.Nutrition, error) {
	values := make(map[string]float64, len(liora.NutritionKeys))

	raw := make(map[string]any)
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &raw); err == nil {
		var missing []string
		for _, k := range liora.NutritionKeys {
			v, ok := raw[k]
			if !ok {
				missing = append(missing, k)
				continue
			}
			f, err := toFloat(v)
			if err != nil {
				return liora.Nutrition{}, fmt.Errorf("nutrition value %s: %w", k, err)
			}
			values[k] = f
		}
		if len(missing) > 0 {
			return liora.Nutrition{}, &MissingKeysError{Stage: stageNutrition, Keys: missing}
		}
	} else {
		text := strings.ToLower(content)
		for k, re := range nutritionPatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				f, _ := toFloat(m[1])
				values[k] = f
			}
		}
		if len(values) == 0 {
			return liora.Nutrition{}, fmt.Errorf("decode nutrition info: %w", err)
		}
	}

	return liora.Nutrition{
		EnergyKJ:      values["energy_kj"],
		Calories:      values["calories"],
		Fats:          values["fats"],
		SaturatedFats: values["saturated_fats"],
		Carbohydrates: values["carbohydrates"],
		Sugars:        values["sugars"],
		Fiber:         values["fiber"],
		Proteins:      values["proteins"],
	}, nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		fields := strings.Fields(strings.ReplaceAll(t, ",", "."))
		if len(fields) == 0 {
			return 0, errors.New("empty value")
		}
		return strconv.ParseFloat(fields[0], 64)
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
}
