// Package generator creates recipes with a language model, one stage at a
// time, and only returns recipes whose ingredients all resolve against the
// catalog.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"liora"
	"liora/llm"
	"liora/reconcile"
)

const (
	stageName        = "name"
	stageIngredients = "ingredients"
	stageSteps       = "steps"
	stageDietary     = "dietary"
	stageNutrition   = "nutrition"
	stageRecipeType  = "recipe_type"
	stageDescription = "description"
	stageCategorize  = "categorize"

	defaultMaxRetries = 3

	// Source marks recipes produced by the generator.
	Source = "generated"
)

type Options struct {
	MaxRetries int
	// MaxTokens caps the name, ingredients and description stages.
	MaxTokens int32
	Logger    liora.GenerationLogger
	Tracer    trace.Tracer
	Meter     metric.Meter
	// Progress, when set, is called as each stage starts.
	Progress func(stage string)
}

type Generator struct {
	llm        llm.Completer
	reconciler *reconcile.Reconciler
	opts       Options

	attempts      metric.Int64Counter
	failures      metric.Int64Counter
	stageDuration metric.Float64Histogram
}

func New(c llm.Completer, r *reconcile.Reconciler, opts Options) *Generator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	if opts.Logger == nil {
		opts.Logger = liora.NewNoOpGenerationLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(liora.TracerNameGenerator)
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(liora.TracerNameGenerator)
	}
	if opts.Progress == nil {
		opts.Progress = func(string) {}
	}

	g := &Generator{llm: c, reconciler: r, opts: opts}
	g.attempts, _ = opts.Meter.Int64Counter("generator_attempts_total",
		metric.WithDescription("Total number of recipe generation attempts"))
	g.failures, _ = opts.Meter.Int64Counter("generator_failures_total",
		metric.WithDescription("Total number of failed generation stages"))
	g.stageDuration, _ = opts.Meter.Float64Histogram("generator_stage_duration_seconds",
		metric.WithDescription("Duration of individual generation stages in seconds"))
	return g
}

// Generate creates a recipe of the given type, e.g. "Pescados".
func (g *Generator) Generate(ctx context.Context, recipeType string) (*liora.GeneratedRecipe, error) {
	rt, err := canonicalRecipeType(recipeType)
	if err != nil {
		return nil, err
	}
	return g.run(ctx, rt, nil)
}

// GenerateFromName creates a recipe around a given dish name. The recipe
// type is inferred and the description written by the model.
func (g *Generator) GenerateFromName(ctx context.Context, name, sideDish string) (*liora.GeneratedRecipe, error) {
	ctx, span := g.opts.Tracer.Start(ctx, "Generator.GenerateFromName", trace.WithAttributes(
		attribute.String("name", name),
	))
	defer span.End()

	name, sideDish = strings.TrimSpace(name), strings.TrimSpace(sideDish)
	if name == "" {
		return nil, errors.New("recipe name is required")
	}

	answer, err := g.call(ctx, 1, llm.Request{
		Stage:       stageRecipeType,
		System:      systemRecipeType,
		User:        recipeTypePrompt(name, sideDish),
		Temperature: 0.3,
		MaxTokens:   50,
	})
	if err != nil {
		return nil, g.fail(ctx, span, stageRecipeType, err)
	}
	rt, err := canonicalRecipeType(answer)
	if err != nil {
		return nil, g.fail(ctx, span, stageRecipeType, err)
	}
	slog.Info("GENERATOR: Inferred recipe type", "name", name, "recipe_type", rt)

	description, err := g.call(ctx, 1, llm.Request{
		Stage:       stageDescription,
		System:      systemDescription,
		User:        descriptionPrompt(name, sideDish),
		Temperature: 0.7,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return nil, g.fail(ctx, span, stageDescription, err)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, g.fail(ctx, span, stageDescription, errors.New("empty description"))
	}

	return g.run(ctx, rt, &nameResult{Name: name, SideDish: sideDish, ShortDescription: description})
}

func (g *Generator) run(ctx context.Context, recipeType string, fixed *nameResult) (*liora.GeneratedRecipe, error) {
	ctx, span := g.opts.Tracer.Start(ctx, "Generator.Generate", trace.WithAttributes(
		attribute.String("recipe_type", recipeType),
		attribute.Int("max_retries", g.opts.MaxRetries),
	))
	defer span.End()

	var errs []error
	for attempt := 1; attempt <= g.opts.MaxRetries; attempt++ {
		g.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("recipe_type", recipeType)))
		slog.Info("GENERATOR: Generating recipe", "recipe_type", recipeType, "attempt", attempt, "max_retries", g.opts.MaxRetries)

		recipe, err := g.attempt(ctx, recipeType, fixed, attempt)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt))
			slog.Info("GENERATOR: Recipe generated", "name", recipe.Name, "attempt", attempt)
			return recipe, nil
		}

		slog.Warn("GENERATOR: Attempt failed", "attempt", attempt, "error", err)
		errs = append(errs, fmt.Errorf("attempt %d: %w", attempt, err))
		if ctx.Err() != nil {
			break
		}
	}

	err := fmt.Errorf("generate %s recipe: %w", recipeType, errors.Join(errs...))
	span.SetStatus(codes.Error, "generation failed")
	span.RecordError(err)
	return nil, err
}

func (g *Generator) attempt(ctx context.Context, recipeType string, fixed *nameResult, attempt int) (*liora.GeneratedRecipe, error) {
	var name nameResult
	if fixed != nil {
		name = *fixed
	} else {
		content, err := g.call(ctx, attempt, llm.Request{
			Stage:       stageName,
			System:      systemName,
			User:        namePrompt(recipeType),
			Temperature: 0.7,
			MaxTokens:   g.opts.MaxTokens,
			Schema:      nameSchema(),
		})
		if err != nil {
			return nil, g.failStage(ctx, stageName, err)
		}
		if name, err = parseName(content); err != nil {
			return nil, g.failStage(ctx, stageName, err)
		}
	}
	slog.Info("GENERATOR: Recipe name", "name", name.Name, "side_dish", name.SideDish)

	ingredients, err := g.ingredients(ctx, name, attempt)
	if err != nil {
		return nil, g.failStage(ctx, stageIngredients, err)
	}

	steps, err := g.steps(ctx, ingredients)
	if err != nil {
		return nil, g.failStage(ctx, stageSteps, err)
	}

	content, err := g.call(ctx, attempt, llm.Request{
		Stage:       stageDietary,
		System:      systemDietary,
		User:        dietaryPrompt(ingredients),
		Temperature: 0.3,
		MaxTokens:   200,
		Schema:      dietarySchema(),
	})
	if err != nil {
		return nil, g.failStage(ctx, stageDietary, err)
	}
	dietary, err := parseDietary(content)
	if err != nil {
		return nil, g.failStage(ctx, stageDietary, err)
	}

	content, err = g.call(ctx, attempt, llm.Request{
		Stage:       stageNutrition,
		System:      systemNutrition,
		User:        nutritionPrompt(ingredients),
		Temperature: 0.3,
		MaxTokens:   200,
		Schema:      nutritionSchema(),
	})
	if err != nil {
		return nil, g.failStage(ctx, stageNutrition, err)
	}
	nutrition, err := parseNutrition(content)
	if err != nil {
		return nil, g.failStage(ctx, stageNutrition, err)
	}

	recipe := FormatForOutput(liora.GeneratedRecipe{
		Recipe: liora.Recipe{
			ID:               uuid.NewString(),
			Name:             name.Name,
			SideDish:         name.SideDish,
			ShortDescription: name.ShortDescription,
			MealType:         name.MealType,
			Category:         recipeType,
			Servings:         1,
			Nutrition:        nutrition,
			PrepTime:         name.PrepTime,
			CuisineType:      name.CuisineType,
			Source:           Source,
			Ingredients:      ingredients,
			Steps:            steps,
		},
		Dietary: dietary,
	})
	if !recipe.IsValid() {
		return nil, errors.New("generated recipe is missing required data")
	}
	return &recipe, nil
}

// ingredients asks for the ingredient list and reconciles it. The whole
// list is rejected when any ingredient stays unresolved.
func (g *Generator) ingredients(ctx context.Context, name nameResult, attempt int) ([]liora.Ingredient, error) {
	req := llm.Request{
		Stage:       stageIngredients,
		System:      systemIngredients,
		User:        ingredientsPrompt(name.Name, name.SideDish, g.reconciler.Catalog().Snapshot()),
		Temperature: 0.3,
		MaxTokens:   g.opts.MaxTokens,
		Schema:      ingredientsSchema(),
	}
	content, err := g.call(ctx, attempt, req)
	if err != nil {
		return nil, err
	}
	parsed, err := parseIngredients(content)
	if err != nil {
		return nil, err
	}

	candidates := make([]reconcile.Candidate, 0, len(parsed))
	for _, ing := range parsed {
		c, err := reconcile.FromIngredient(ing)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	report := g.reconciler.Validate(ctx, candidates)
	if report.SaveErr != nil {
		slog.Warn("GENERATOR: Catalog could not be saved", "error", report.SaveErr)
	}
	if err := report.Err(); err != nil {
		var unmatched *reconcile.UnmatchedError
		if errors.As(err, &unmatched) {
			g.logAttempt(liora.AttemptLog{
				Stage:     stageIngredients,
				Attempt:   attempt,
				Timestamp: time.Now(),
				Unmatched: unmatched.Names,
				Error:     err.Error(),
			})
		}
		return nil, err
	}

	out := make([]liora.Ingredient, 0, len(candidates))
	for _, c := range report.Candidates() {
		out = append(out, c.Ingredient())
	}
	return out, nil
}

// steps has its own retry budget so a malformed step list does not throw
// away the ingredients.
func (g *Generator) steps(ctx context.Context, ingredients []liora.Ingredient) ([]string, error) {
	var errs []error
	for attempt := 1; attempt <= g.opts.MaxRetries; attempt++ {
		content, err := g.call(ctx, attempt, llm.Request{
			Stage:       stageSteps,
			System:      systemSteps,
			User:        stepsPrompt(ingredients),
			Temperature: 0.7,
			MaxTokens:   500,
			Schema:      stepsSchema(),
		})
		if err == nil {
			var steps []string
			if steps, err = parseSteps(content); err == nil {
				if steps, err = ValidateSteps(steps, len(ingredients)); err == nil {
					return steps, nil
				}
			}
		}
		slog.Warn("GENERATOR: Steps attempt failed", "attempt", attempt, "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// call runs one LLM round trip inside a span and records it in the
// generation log.
func (g *Generator) call(ctx context.Context, attempt int, req llm.Request) (string, error) {
	g.opts.Progress(req.Stage)

	ctx, span := g.opts.Tracer.Start(ctx, "Generator.Stage."+req.Stage, trace.WithAttributes(
		attribute.String("stage", req.Stage),
		attribute.Int("attempt", attempt),
		attribute.Int("prompt_size_bytes", len(req.System)+len(req.User)),
	))
	defer span.End()

	start := time.Now()
	content, err := g.llm.Complete(ctx, req)
	g.stageDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("stage", req.Stage)))

	entry := liora.AttemptLog{
		Stage:     req.Stage,
		Attempt:   attempt,
		Timestamp: start,
		Prompt:    req.User,
		Response:  content,
	}
	if err != nil {
		entry.Error = err.Error()
		span.SetStatus(codes.Error, "LLM invoke failed")
		span.RecordError(err)
	}
	g.logAttempt(entry)

	span.SetAttributes(attribute.Int("response_content_length", len(content)))
	return content, err
}

func (g *Generator) logAttempt(entry liora.AttemptLog) {
	if err := g.opts.Logger.LogAttempt(entry); err != nil {
		slog.Warn("GENERATOR: Failed to log attempt", "stage", entry.Stage, "error", err)
	}
}

func (g *Generator) failStage(ctx context.Context, stage string, err error) error {
	g.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	return fmt.Errorf("%s stage: %w", stage, err)
}

func (g *Generator) fail(ctx context.Context, span trace.Span, stage string, err error) error {
	err = g.failStage(ctx, stage, err)
	span.SetStatus(codes.Error, stage+" failed")
	span.RecordError(err)
	return err
}
