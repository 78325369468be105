package setup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"liora"
	"liora/convert"
	"liora/generator"
	"liora/reconcile"
)

// GateOptions control the reconciliation step of the converters.
type GateOptions struct {
	// Escalate asks the configured model to categorize unknown ingredients
	// and prompts on the console before adding them.
	Escalate bool
	// Notify posts the rejections to Slack when a webhook is configured.
	Notify bool
	Source string
	Report io.Writer
}

// Reconciler builds a reconciler over the configured catalog, persisting
// accepted escalations.
func Reconciler(ctx context.Context, escalate bool) (*reconcile.Reconciler, func() error, error) {
	var catCfg liora.CatalogConfig
	if err := Decode(&catCfg); err != nil {
		return nil, nil, err
	}
	cat, state, err := OpenCatalog(ctx, catCfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []reconcile.Option{reconcile.WithThreshold(catCfg.FuzzyThreshold), reconcile.WithStore(state)}
	cleanup := func() error { return nil }

	if escalate {
		var (
			model     liora.ModelConfig
			providers liora.ProviderConfig
			cache     liora.CacheConfig
		)
		if err := Decode(&model, &providers, &cache); err != nil {
			return nil, nil, err
		}
		c, closeCache, err := Completer(ctx, model, providers, cache)
		if err != nil {
			return nil, closeCache, err
		}
		cleanup = closeCache
		categorizer := generator.NewCategorizer(c, nil)
		opts = append(opts, reconcile.WithEscalator(
			reconcile.NewConsoleEscalator(categorizer, catCfg.FuzzyThreshold, os.Stdin, os.Stdout)))
	}

	return reconcile.New(cat, opts...), cleanup, nil
}

// Gate drops the recipes whose ingredients do not all resolve, reporting
// every rejection at once.
func Gate(ctx context.Context, recipes []liora.Recipe, opts GateOptions) ([]liora.Recipe, error) {
	r, cleanup, err := Reconciler(ctx, opts.Escalate)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Warn("SETUP: Cleanup failed", "error", err)
		}
	}()

	kept, rejected := convert.NewConverter(r).Reconcile(ctx, recipes)
	if len(rejected) == 0 {
		return kept, nil
	}

	if opts.Report != nil {
		fmt.Fprintf(opts.Report, "%d receta(s) descartada(s):\n", len(rejected))
		for _, rej := range rejected {
			fmt.Fprintf(opts.Report, "  - %s\n", rej)
		}
	}
	if opts.Notify {
		var notifyCfg liora.NotifyConfig
		if err := Decode(&notifyCfg); err != nil {
			return kept, err
		}
		if n := Notifier(notifyCfg); n != nil {
			if err := n.PostRejections(ctx, opts.Source, rejected); err != nil {
				slog.Warn("SETUP: Rejections not posted", "error", err)
			}
		} else {
			slog.Warn("SETUP: SLACK_WEBHOOK_URL not set, rejections not posted")
		}
	}
	return kept, nil
}
