package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"liora/cmd/internal/setup"
	"liora/reconcile"
	"liora/units"
)

type candidateJSON struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity string `json:"quantity"`
}

func main() {
	in := flag.String("in", "-", "JSON list of {name, category, quantity}")
	escalate := flag.Bool("escalate", false, "ask the model about unknown ingredients and confirm on the console")
	flag.Parse()

	setup.LoadEnv()
	ctx := context.Background()
	defer setup.Otel(ctx)()

	var r io.Reader = os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("Failed to open %s: %s", *in, err)
		}
		defer f.Close()
		r = f
	}
	var raw []candidateJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		log.Fatalf("Failed to decode candidates: %s", err)
	}

	candidates := make([]reconcile.Candidate, 0, len(raw))
	for _, c := range raw {
		cand, err := reconcile.NewCandidate(c.Name, c.Category, units.Parse(c.Quantity))
		if err != nil {
			log.Fatalf("Invalid candidate %+v: %s", c, err)
		}
		candidates = append(candidates, cand)
	}

	rec, cleanup, err := setup.Reconciler(ctx, *escalate)
	if err != nil {
		log.Fatalf("Failed to set up reconciler: %s", err)
	}
	defer cleanup()

	report := rec.Validate(ctx, candidates)
	for _, o := range report.Outcomes {
		fmt.Printf("%-30s -> %-30s %-20s %s\n", o.Original.Name, o.Candidate.Name, o.Candidate.Category, o.State)
	}
	if report.SaveErr != nil {
		fmt.Fprintf(os.Stderr, "catalog not saved: %s\n", report.SaveErr)
	}
	if err := report.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
