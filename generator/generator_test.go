package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"liora"
	"liora/catalog"
	"liora/llm"
	"liora/reconcile"
	"liora/units"
)

// scriptedCompleter answers each stage from a queue of canned responses.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses map[string][]string
	calls     map[string]int
	requests  []llm.Request
}

func newScripted(responses map[string][]string) *scriptedCompleter {
	return &scriptedCompleter{responses: responses, calls: make(map[string]int)}
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	i := s.calls[req.Stage]
	s.calls[req.Stage]++
	queue := s.responses[req.Stage]
	if len(queue) == 0 {
		return "", fmt.Errorf("no response scripted for stage %s", req.Stage)
	}
	if i >= len(queue) {
		i = len(queue) - 1
	}
	return queue[i], nil
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []liora.AttemptLog
}

func (l *recordingLogger) LogAttempt(a liora.AttemptLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, a)
	return nil
}

const (
	nameJSON = `{"name": "Merluza al ajillo", "side_dish": "con patatas panaderas", ` +
		`"short_description": "Merluza jugosa con un sofrito de ajo dorado.", ` +
		`"meal_type": "Cena", "cuisine_type": "española", "prep_time": "35 min"}`
	ingredientsJSON = "```json\n[" +
		`{"name": "Filetes de merluza", "quantity": 2, "unit": "filetes", "category": "Pescados Blancos"},` +
		`{"name": "Ajos", "quantity": 3, "unit": "dientes", "category": "Verduras Básicas"},` +
		`{"name": "Aceite de oliva", "quantity": "2", "unit": "cucharadas", "category": "Aceites y Grasas"}` +
		"]\n```"
	stepsJSON = `["🐟 Sazona {quantity_1} {unit_1} {ingredient_1} con sal", ` +
		`"🧄 Dora {ingredient_2} en {quantity_3} {unit_3} {ingredient_3}"]`
	dietaryJSON = `{"gluten_free": true, "lactose_free": true, "nut_free": true, "egg_free": true, ` +
		`"shellfish_free": true, "soy_free": true, "yeast_free": true, "sugar_free": true, ` +
		`"vegan": false, "vegetarian": false, "keto": true, "paleo": true}`
	nutritionJSON = `{"energy_kj": 1500, "calories": 360, "fats": "18,5", "saturated_fats": 2.7, ` +
		`"carbohydrates": 12, "sugars": 1.2, "fiber": 1.5, "proteins": 38}`
)

func happyScript() map[string][]string {
	return map[string][]string{
		stageName:        {nameJSON},
		stageIngredients: {ingredientsJSON},
		stageSteps:       {stepsJSON},
		stageDietary:     {dietaryJSON},
		stageNutrition:   {nutritionJSON},
	}
}

func newGenerator(c llm.Completer, r *reconcile.Reconciler, opts Options) *Generator {
	if r == nil {
		r = reconcile.New(catalog.Default())
	}
	return New(c, r, opts)
}

func TestGenerate(t *testing.T) {
	c := newScripted(happyScript())
	logger := &recordingLogger{}
	var progress []string
	g := newGenerator(c, nil, Options{Logger: logger, Progress: func(s string) { progress = append(progress, s) }})

	got, err := g.Generate(context.Background(), "pescados")
	require.NoError(t, err)

	_, err = uuid.Parse(got.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Merluza al ajillo", got.Name)
	assert.Equal(t, "con patatas panaderas", got.SideDish)
	assert.Equal(t, "Pescados", got.Category)
	assert.Equal(t, "cena", got.MealType)
	assert.Equal(t, "española", got.CuisineType)
	assert.Equal(t, "35 min", got.PrepTime)
	assert.Equal(t, Source, got.Source)
	assert.Equal(t, 1, got.Servings)

	assert.Equal(t, []liora.Ingredient{
		{Name: "Merluza", Quantity: units.Number(2), Unit: "filete", Category: "Pescados Blancos"},
		{Name: "Ajo", Quantity: units.Number(3), Unit: "diente", Category: "Verduras Básicas"},
		{Name: "Aceite de oliva", Quantity: units.Number(2), Unit: "cucharada", Category: "Aceites y Grasas"},
	}, got.Ingredients)

	assert.Equal(t, []string{
		"🐟 Sazona {quantity_1} {unit_1} {ingredient_1} con sal",
		"🧄 Dora {quantity_2} {unit_2} {ingredient_2} en {quantity_3} {unit_3} {ingredient_3}",
	}, got.Steps)

	assert.True(t, got.Dietary.GlutenFree)
	assert.False(t, got.Dietary.Vegan)
	assert.True(t, got.Dietary.Keto)
	assert.Equal(t, liora.Nutrition{
		EnergyKJ: 1500, Calories: 360, Fats: 18.5, SaturatedFats: 2.7,
		Carbohydrates: 12, Sugars: 1.2, Fiber: 1.5, Proteins: 38,
	}, got.Nutrition)

	assert.Equal(t, []string{stageName, stageIngredients, stageSteps, stageDietary, stageNutrition}, progress)
	assert.Len(t, logger.entries, 5)
	for _, req := range c.requests {
		assert.NotNil(t, req.Schema, req.Stage)
	}
}

func TestGenerate_UnknownRecipeType(t *testing.T) {
	c := newScripted(happyScript())
	g := newGenerator(c, nil, Options{})

	_, err := g.Generate(context.Background(), "Comida espacial")
	require.Error(t, err)
	assert.Empty(t, c.requests)
}

func TestGenerate_FailClosedOnUnresolvedIngredients(t *testing.T) {
	script := happyScript()
	script[stageIngredients] = []string{`[
		{"name": "Merluza", "quantity": 2, "unit": "unidad", "category": "Pescados Blancos"},
		{"name": "Kriptonita", "quantity": 1, "unit": "unidad", "category": "Minerales"}
	]`}
	c := newScripted(script)
	logger := &recordingLogger{}
	g := newGenerator(c, nil, Options{MaxRetries: 2, Logger: logger})

	got, err := g.Generate(context.Background(), "Pescados")
	require.Error(t, err)
	assert.Nil(t, got)

	var unmatched *reconcile.UnmatchedError
	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, []string{"Kriptonita"}, unmatched.Names)

	assert.Equal(t, 2, c.calls[stageIngredients])
	assert.Zero(t, c.calls[stageSteps])

	var withUnmatched int
	for _, e := range logger.entries {
		if len(e.Unmatched) > 0 {
			withUnmatched++
			assert.Equal(t, []string{"Kriptonita"}, e.Unmatched)
		}
	}
	assert.Equal(t, 2, withUnmatched)
}

func TestGenerate_RetriesWholeRecipe(t *testing.T) {
	script := happyScript()
	script[stageName] = []string{`{"name": "Merluza", "short_description": "x"}`, nameJSON}
	c := newScripted(script)
	g := newGenerator(c, nil, Options{})

	got, err := g.Generate(context.Background(), "Pescados")
	require.NoError(t, err)
	assert.Equal(t, "Merluza al ajillo", got.Name)
	assert.Equal(t, 2, c.calls[stageName])
	assert.Equal(t, 1, c.calls[stageIngredients])
}

func TestGenerate_RetriesStepsOnly(t *testing.T) {
	script := happyScript()
	script[stageSteps] = []string{`["Mezcla {foo} con {ingredient_1}"]`, stepsJSON}
	c := newScripted(script)
	g := newGenerator(c, nil, Options{})

	_, err := g.Generate(context.Background(), "Pescados")
	require.NoError(t, err)
	assert.Equal(t, 2, c.calls[stageSteps])
	assert.Equal(t, 1, c.calls[stageIngredients])
}

func TestGenerate_GivesUpAfterMaxRetries(t *testing.T) {
	script := happyScript()
	script[stageNutrition] = []string{`{"calories": 100}`}
	c := newScripted(script)
	g := newGenerator(c, nil, Options{MaxRetries: 3})

	_, err := g.Generate(context.Background(), "Pescados")
	require.Error(t, err)

	var missing *MissingKeysError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, stageNutrition, missing.Stage)
	assert.Equal(t, 3, c.calls[stageNutrition])
}

func TestGenerate_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := llm.CompleterFunc(func(ctx context.Context, _ llm.Request) (string, error) {
		return "", ctx.Err()
	})
	g := newGenerator(c, nil, Options{MaxRetries: 5})

	_, err := g.Generate(ctx, "Pescados")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerate_EscalatesUnknownIngredient(t *testing.T) {
	script := happyScript()
	script[stageIngredients] = []string{`[
		{"name": "Merluza", "quantity": 2, "unit": "unidad", "category": "Pescados Blancos"},
		{"name": "Tempeh ahumado", "quantity": 100, "unit": "gramos", "category": "Proteínas Vegetales"}
	]`}
	script[stageSteps] = []string{`["Mezcla {quantity_1} {unit_1} {ingredient_1} y {quantity_2} {unit_2} {ingredient_2}"]`}
	script[stageCategorize] = []string{`{"name": "Tempeh ahumado", "category": "Proteínas Vegetales", "aliases": ["tempeh a la brasa"]}`}
	c := newScripted(script)

	cat := catalog.Default()
	r := reconcile.New(cat, reconcile.WithEscalator(reconcile.NewAutoEscalator(NewCategorizer(c, nil), reconcile.DefaultThreshold)))
	g := newGenerator(c, r, Options{})

	got, err := g.Generate(context.Background(), "Pescados")
	require.NoError(t, err)
	assert.Equal(t, "Tempeh ahumado", got.Ingredients[1].Name)
	assert.Equal(t, units.Unit("gramo"), got.Ingredients[1].Unit)
	assert.True(t, cat.Contains("Proteínas Vegetales", "Tempeh ahumado"))
	assert.Equal(t, 1, c.calls[stageCategorize])
}

func TestGenerateFromName(t *testing.T) {
	script := happyScript()
	script[stageRecipeType] = []string{"  \"Pescados.\"  "}
	script[stageDescription] = []string{"  Merluza confitada a 60 °C durante 12 minutos.  "}
	c := newScripted(script)
	g := newGenerator(c, nil, Options{})

	got, err := g.GenerateFromName(context.Background(), "Merluza confitada", "con pil pil")
	require.NoError(t, err)

	assert.Equal(t, "Merluza confitada", got.Name)
	assert.Equal(t, "con pil pil", got.SideDish)
	assert.Equal(t, "Merluza confitada a 60 °C durante 12 minutos.", got.ShortDescription)
	assert.Equal(t, "Pescados", got.Category)
	assert.Zero(t, c.calls[stageName])
}

func TestGenerateFromName_Errors(t *testing.T) {
	tests := []struct {
		name      string
		dish      string
		script    map[string][]string
		wantStage string
	}{
		{
			name:   "empty name",
			dish:   "  ",
			script: happyScript(),
		},
		{
			name:      "unknown recipe type",
			dish:      "Merluza",
			script:    map[string][]string{stageRecipeType: {"Comida espacial"}},
			wantStage: stageRecipeType,
		},
		{
			name:      "empty description",
			dish:      "Merluza",
			script:    map[string][]string{stageRecipeType: {"Pescados"}, stageDescription: {"   "}},
			wantStage: stageDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(newScripted(tt.script), nil, Options{})
			_, err := g.GenerateFromName(context.Background(), tt.dish, "con patatas")
			require.Error(t, err)
			if tt.wantStage != "" {
				assert.Contains(t, err.Error(), tt.wantStage+" stage")
			}
		})
	}
}

func TestGenerate_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	script := happyScript()
	script[stageDietary] = []string{"no sé", dietaryJSON}
	g := newGenerator(newScripted(script), nil, Options{Meter: meter})

	_, err := g.Generate(context.Background(), "Pescados")
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	var histogram bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				histogram = m.Name == "generator_stage_duration_seconds" || histogram
			}
		}
	}
	assert.Equal(t, int64(2), sums["generator_attempts_total"])
	assert.Equal(t, int64(1), sums["generator_failures_total"])
	assert.True(t, histogram)
}
