package liora

import "time"

type CatalogConfig struct {
	Path           string  `env:"CATALOG_PATH,default=artifacts/catalog.json"`
	S3Bucket       string  `env:"CATALOG_S3_BUCKET"`
	S3Key          string  `env:"CATALOG_S3_KEY,default=catalog.json"`
	FuzzyThreshold float64 `env:"FUZZY_THRESHOLD,default=0.8"`
}

type ModelConfig struct {
	Provider      string        `env:"LLM_PROVIDER,default=openai"`
	ModelID       string        `env:"MODEL_ID,default=gpt-3.5-turbo"`
	MaxTokens     int32         `env:"MAX_TOKENS,default=2000"`
	Temperature   float32       `env:"TEMPERATURE,default=0.7"`
	TopP          float32       `env:"TOP_P,default=0.9"`
	Timeout       time.Duration `env:"LLM_TIMEOUT,default=30s"`
	RatePerSecond float64       `env:"LLM_RATE_PER_SECOND,default=1"`
	MaxRetries    int           `env:"MAX_RETRIES,default=3"`
}

type ProviderConfig struct {
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL"`
	OpenAIStructured   bool   `env:"OPENAI_STRUCTURED_OUTPUT,default=false"`
	BaseOllamaEndpoint string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
}

type CacheConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	TTL           time.Duration `env:"CACHE_TTL,default=24h"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER,default=postgres"`
	DSN    string `env:"DB_DSN,default=host=localhost user=postgres dbname=liora sslmode=disable"`
}

type NotifyConfig struct {
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL,default=#recipes"`
}

type OutputConfig struct {
	LogDir string `env:"GENERATION_LOG_DIR,default=./logs"`
	OutDir string `env:"RECIPES_OUT_DIR,default=./recipes"`
}
