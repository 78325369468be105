package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"liora"
	"liora/catalog"
	"liora/cmd/internal/setup"
	"liora/generator"
	"liora/reconcile"
)

func main() {
	recipeType := flag.String("type", "", "recipe type, e.g. Pescados (see -list)")
	name := flag.String("name", "", "generate around this dish name instead of a type")
	side := flag.String("side", "", "side dish for -name")
	count := flag.Int("n", 1, "number of recipes")
	list := flag.Bool("list", false, "list recipe types and exit")
	auto := flag.Bool("auto", false, "accept model categorizations without asking")
	notify := flag.Bool("notify", false, "post every generated recipe to Slack")
	debug := flag.Bool("debug", false, "dump every generated recipe")
	flag.Parse()

	if *list {
		for i, g := range generator.RecipeCategories {
			fmt.Printf("%d. %s\n", i+1, g.Name)
			for j, sub := range g.Subcategories {
				fmt.Printf("   %d.%d %s\n", i+1, j+1, sub)
			}
		}
		return
	}
	if *recipeType == "" && *name == "" {
		log.Fatal("one of -type or -name is required")
	}

	setup.LoadEnv()
	ctx := context.Background()
	defer setup.Otel(ctx)()

	var (
		catCfg    liora.CatalogConfig
		model     liora.ModelConfig
		providers liora.ProviderConfig
		cache     liora.CacheConfig
		output    liora.OutputConfig
		notifyCfg liora.NotifyConfig
	)
	if err := setup.Decode(&catCfg, &model, &providers, &cache, &output, &notifyCfg); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	cat, state, err := setup.OpenCatalog(ctx, catCfg)
	if err != nil {
		log.Fatalf("Failed to load catalog: %s", err)
	}

	llm, closeCache, err := setup.Completer(ctx, model, providers, cache)
	if err != nil {
		log.Fatalf("Failed to create model client: %s", err)
	}
	defer closeCache()

	logger, cleanup, err := setup.GenerationLogger(output.LogDir, model.ModelID)
	if err != nil {
		log.Fatalf("Failed to create generation logger: %s", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush generation log", "error", err)
		}
	}()

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Writer = os.Stderr

	categorizer := generator.NewCategorizer(llm, logger)
	var escalator reconcile.Escalator = reconcile.NewAutoEscalator(categorizer, catCfg.FuzzyThreshold)
	if !*auto {
		escalator = &pausingEscalator{next: reconcile.NewConsoleEscalator(categorizer, catCfg.FuzzyThreshold, os.Stdin, os.Stdout), spinner: s}
	}
	r := reconcile.New(cat,
		reconcile.WithThreshold(catCfg.FuzzyThreshold),
		reconcile.WithEscalator(escalator),
		reconcile.WithStore(state),
	)

	gen := generator.New(llm, r, generator.Options{
		MaxRetries: model.MaxRetries,
		MaxTokens:  model.MaxTokens,
		Logger:     logger,
		Progress: func(stage string) {
			s.Lock()
			s.Suffix = " " + stage
			s.Unlock()
		},
	})

	notifier := setup.Notifier(notifyCfg)
	var recipes []liora.GeneratedRecipe
	for i := 0; i < *count; i++ {
		fmt.Fprintf(os.Stderr, "Generando receta %d de %d...\n", i+1, *count)
		s.Start()
		var rec *liora.GeneratedRecipe
		if *name != "" {
			rec, err = gen.GenerateFromName(ctx, *name, *side)
		} else {
			rec, err = gen.Generate(ctx, *recipeType)
		}
		s.Stop()
		if err != nil {
			slog.Error("RESULT: Recipe generation failed", "error", err)
			continue
		}
		fmt.Fprintf(os.Stderr, "Receta generada: %s\n", rec.Name)
		if *debug {
			liora.Dump(rec)
		}
		if *notify && notifier != nil {
			if err := notifier.PostGenerated(ctx, *rec); err != nil {
				slog.Warn("RESULT: Recipe not posted", "error", err)
			}
		}
		recipes = append(recipes, *rec)
	}

	if len(recipes) == 0 {
		log.Fatal("No se pudieron generar recetas")
	}
	label := *recipeType
	if label == "" {
		label = recipes[0].Category
	}
	path, err := save(output.OutDir, label, recipes)
	if err != nil {
		log.Fatalf("Failed to save recipes: %s", err)
	}
	slog.Info("RESULT: Recipes saved", "count", len(recipes), "path", path)
}

func save(dir, recipeType string, recipes []liora.GeneratedRecipe) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("recetas_%s_%s.json",
		strings.ReplaceAll(strings.ToLower(recipeType), " ", "_"),
		time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return path, enc.Encode(recipes)
}

// pausingEscalator stops the spinner while the console prompt is shown.
type pausingEscalator struct {
	next    reconcile.Escalator
	spinner *spinner.Spinner
}

func (p *pausingEscalator) Resolve(ctx context.Context, c reconcile.Candidate, categories []string) (catalog.Entry, bool, error) {
	p.spinner.Stop()
	defer p.spinner.Start()
	return p.next.Resolve(ctx, c, categories)
}
