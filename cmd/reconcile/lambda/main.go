package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"liora"
	"liora/catalog"
	"liora/catalog/storage"
	"liora/reconcile"
)

type Params struct {
	Recipe      string             `json:"recipe"`
	Ingredients []liora.Ingredient `json:"ingredients"`
}

type Outcome struct {
	Original string  `json:"original"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	State    string  `json:"state"`
	Score    float64 `json:"score,omitempty"`
}

type Results struct {
	Recipe      string             `json:"recipe"`
	OK          bool               `json:"ok"`
	Ingredients []liora.Ingredient `json:"ingredients,omitempty"`
	Outcomes    []Outcome          `json:"outcomes"`
	Unresolved  []string           `json:"unresolved,omitempty"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var catCfg liora.CatalogConfig
		if err := envdecode.Decode(&catCfg); err != nil {
			return Results{}, fmt.Errorf("failed to decode: %w", err)
		}
		if catCfg.S3Bucket == "" {
			return Results{}, errors.New("missing S3 config: CATALOG_S3_BUCKET must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		state := storage.NewS3State(s3.NewFromConfig(awsCfg), catCfg.S3Bucket, catCfg.S3Key)

		cat, err := catalog.Open(ctx, state)
		if err != nil {
			slog.Error("SETUP: Failed to load catalog from S3", "error", err)
			return Results{}, err
		}
		slog.Info("SETUP: Catalog loaded from S3", "categories", len(cat.Categories()))

		candidates := make([]reconcile.Candidate, 0, len(params.Ingredients))
		for _, ing := range params.Ingredients {
			c, err := reconcile.FromIngredient(ing)
			if err != nil {
				return Results{}, err
			}
			candidates = append(candidates, c)
		}

		report := reconcile.New(cat, reconcile.WithThreshold(catCfg.FuzzyThreshold)).Validate(ctx, candidates)
		return results(params.Recipe, report), nil
	}

	lambda.Start(fn)
}

func results(recipe string, report reconcile.Report) Results {
	res := Results{Recipe: recipe, OK: report.OK()}
	for _, o := range report.Outcomes {
		res.Outcomes = append(res.Outcomes, Outcome{
			Original: o.Original.Name,
			Name:     o.Candidate.Name,
			Category: o.Candidate.Category,
			State:    o.State.String(),
			Score:    o.Match.Score,
		})
	}
	if !res.OK {
		var unmatched *reconcile.UnmatchedError
		if errors.As(report.Err(), &unmatched) {
			res.Unresolved = unmatched.Names
		}
		slog.Warn("RESULT: Recipe has unresolved ingredients", "recipe", recipe, "unresolved", res.Unresolved)
		return res
	}
	for _, c := range report.Candidates() {
		res.Ingredients = append(res.Ingredients, c.Ingredient())
	}
	return res
}
