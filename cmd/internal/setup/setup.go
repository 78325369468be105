// Package setup holds the wiring shared by the liora binaries.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"liora"
	"liora/catalog"
	"liora/catalog/storage"
	"liora/llm"
	"liora/llm/backends"
	"liora/slack"
)

// LoadEnv reads .env when present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("SETUP: Failed to read .env", "error", err)
	}
}

// Decode fills every target from the environment.
func Decode(targets ...any) error {
	for _, t := range targets {
		if err := envdecode.Decode(t); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return fmt.Errorf("decode %T: %w", t, err)
		}
	}
	return nil
}

// CatalogState returns the S3 object when a bucket is configured, the local
// file otherwise.
func CatalogState(ctx context.Context, cfg liora.CatalogConfig) (storage.State, error) {
	if cfg.S3Bucket == "" {
		return storage.NewFileState(cfg.Path), nil
	}
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return storage.NewS3State(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Key), nil
}

func OpenCatalog(ctx context.Context, cfg liora.CatalogConfig) (*catalog.Catalog, storage.State, error) {
	state, err := CatalogState(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Open(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("SETUP: Catalog loaded", "categories", len(cat.Categories()), "ingredients", len(cat.Items()))
	return cat, state, nil
}

// Notifier returns nil when no webhook is configured.
func Notifier(cfg liora.NotifyConfig) *slack.Notifier {
	if cfg.SlackWebhookURL == "" {
		return nil
	}
	return slack.NewNotifier(slack.NewClient(cfg.SlackWebhookURL, http.DefaultClient), cfg.SlackChannel)
}

// Completer builds the configured model client, cached in Redis when
// REDIS_ADDR is set. The returned func releases the Redis connection.
func Completer(ctx context.Context, model liora.ModelConfig, providers liora.ProviderConfig, cache liora.CacheConfig) (llm.Completer, func() error, error) {
	opts := llm.Options{CacheTTL: cache.TTL}
	cleanup := func() error { return nil }

	if cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cache.RedisAddr, Password: cache.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("SETUP: Redis unreachable, completions will not be cached", "addr", cache.RedisAddr, "error", err)
			_ = rdb.Close()
		} else {
			opts.Cache = llm.NewRedisCache(rdb)
			cleanup = rdb.Close
		}
	}

	c, err := backends.Registry().Build(ctx, model, providers, opts)
	if err != nil {
		return nil, cleanup, err
	}
	slog.Info("SETUP: Model client ready", "provider", model.Provider, "model", model.ModelID, "cached", opts.Cache != nil)
	return c, cleanup, nil
}

// GenerationLogger opens a per-run attempt log under dir.
func GenerationLogger(dir, modelID string) (*liora.FileGenerationLogger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	path := liora.NewGenerationLogFilePath(dir, modelID)
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := liora.NewFileGenerationLogger(f)
	cleanup := func() error {
		return errors.Join(logger.Flush(), f.Close())
	}
	return logger, cleanup, nil
}

// Otel starts the exporters when an endpoint is configured. The returned
// func is always safe to call.
func Otel(ctx context.Context) func() {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func() {}
	}
	_, _, shutdown, err := liora.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}
}
