package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"liora/cmd/internal/setup"
	"liora/convert"
)

func main() {
	in := flag.String("in", "", "recipe sheet (CSV)")
	out := flag.String("out", "output/output_migration.sql", "output SQL file")
	headers := flag.String("headers", "auto", "column layout: es, en or auto")
	servings := flag.Int("servings", convert.DefaultServings, "servings for recipes that carry none")
	keep := flag.Bool("keep", false, "do not empty the tables first")
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

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Suffix = " Procesando recetas"
	s.Writer = os.Stderr
	s.Start()
	recipes, err := setup.ReadRecipes(*in, *headers)
	s.Stop()
	if err != nil {
		log.Fatalf("Failed to read %s: %s", *in, err)
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
	if err := convert.WriteSQL(w, recipes, convert.SQLOptions{Servings: *servings, KeepExisting: *keep}); err != nil {
		log.Fatalf("Failed to write SQL: %s", err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("Failed to close %s: %s", *out, err)
	}
	slog.Info("RESULT: SQL migration written", "recipes", len(recipes), "out", *out)
}
