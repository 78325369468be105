package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"liora"
	"liora/cmd/internal/setup"
	"liora/store"
)

func main() {
	in := flag.String("in", "", "recipe sheet (CSV) or csv2json output (.json)")
	headers := flag.String("headers", "auto", "CSV column layout: es, en or auto")
	reset := flag.Bool("reset", false, "empty the recipe tables first")
	migrate := flag.Bool("migrate", false, "create or update the tables first")
	servings := flag.Int("servings", 0, "servings for recipes that carry none")
	gate := flag.Bool("reconcile", true, "drop recipes with ingredients missing from the catalog")
	notify := flag.Bool("notify", false, "post rejected recipes to Slack")
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}
	setup.LoadEnv()
	ctx := context.Background()
	defer setup.Otel(ctx)()

	var dbCfg liora.DatabaseConfig
	if err := setup.Decode(&dbCfg); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	recipes, err := setup.ReadRecipes(*in, *headers)
	if err != nil {
		log.Fatalf("Failed to read %s: %s", *in, err)
	}
	if *gate {
		recipes, err = setup.Gate(ctx, recipes, setup.GateOptions{Notify: *notify, Source: *in, Report: os.Stderr})
		if err != nil {
			log.Fatalf("Failed to reconcile: %s", err)
		}
	}

	s, err := store.Open(dbCfg.Driver, dbCfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect: %s", err)
	}
	defer s.Close()

	if *migrate {
		if err := s.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate: %s", err)
		}
	}

	res, err := s.Seed(ctx, recipes, store.SeedOptions{Reset: *reset, Servings: *servings})
	if err != nil {
		log.Fatalf("Failed to seed: %s", err)
	}
	slog.Info("RESULT: Database seeded", "recipes", res.Recipes, "ingredients", res.Ingredients, "links", res.Links)
}
