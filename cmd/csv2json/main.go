package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"liora/cmd/internal/setup"
	"liora/convert"
)

func main() {
	in := flag.String("in", "", "recipe sheet (CSV)")
	out := flag.String("out", "-", "output JSON file")
	headers := flag.String("headers", "auto", "column layout: es, en or auto")
	servings := flag.Int("servings", 2, "servings written for every recipe")
	gate := flag.Bool("reconcile", false, "drop recipes with ingredients missing from the catalog")
	escalate := flag.Bool("escalate", false, "ask the model about unknown ingredients (with -reconcile)")
	notify := flag.Bool("notify", false, "post rejected recipes to Slack (with -reconcile)")
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}
	setup.LoadEnv()
	ctx := context.Background()
	defer setup.Otel(ctx)()

	recipes, err := setup.ReadRecipes(*in, *headers)
	if err != nil {
		log.Fatalf("Failed to read %s: %s", *in, err)
	}
	for i := range recipes {
		recipes[i].Servings = *servings
	}

	if *gate {
		recipes, err = setup.Gate(ctx, recipes, setup.GateOptions{
			Escalate: *escalate,
			Notify:   *notify,
			Source:   *in,
			Report:   os.Stderr,
		})
		if err != nil {
			log.Fatalf("Failed to reconcile: %s", err)
		}
	}

	w, err := setup.Output(*out)
	if err != nil {
		log.Fatalf("Failed to open %s: %s", *out, err)
	}
	if err := convert.WriteJSON(w, recipes); err != nil {
		log.Fatalf("Failed to write JSON: %s", err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("Failed to close %s: %s", *out, err)
	}
	slog.Info("RESULT: JSON written", "recipes", len(recipes), "out", *out)
}
