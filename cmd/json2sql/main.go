package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"liora/convert"
)

func main() {
	in := flag.String("in", "recipes.json", "recipes written by csv2json")
	out := flag.String("out", "output_migration.sql", "output SQL file")
	servings := flag.Int("servings", convert.DefaultServings, "servings for recipes that carry none")
	keep := flag.Bool("keep", false, "do not empty the tables first")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("Failed to open %s: %s", *in, err)
	}
	recipes, err := convert.ReadJSON(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read %s: %s", *in, err)
	}

	w, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %s", *out, err)
	}
	defer w.Close()

	if err := convert.WriteSQL(w, recipes, convert.SQLOptions{Servings: *servings, KeepExisting: *keep}); err != nil {
		log.Fatalf("Failed to write SQL: %s", err)
	}
	slog.Info("RESULT: SQL migration written", "recipes", len(recipes), "out", *out)
}
