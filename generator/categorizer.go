package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"liora"
	"liora/catalog"
	"liora/llm"
	"liora/reconcile"
)

// PastaCategory is the only category a pasta ingredient may be filed under.
const PastaCategory = "Pastas"

var ErrPastaCategory = fmt.Errorf("pasta ingredients must use category %q", PastaCategory)

// Categorizer asks the model where an unknown ingredient belongs.
type Categorizer struct {
	llm    llm.Completer
	logger liora.GenerationLogger
}

func NewCategorizer(c llm.Completer, logger liora.GenerationLogger) *Categorizer {
	if logger == nil {
		logger = liora.NewNoOpGenerationLogger()
	}
	return &Categorizer{llm: c, logger: logger}
}

// Suggest returns the model's proposed entry for name. The entry is not
// checked against the catalog; the reconciler does that.
func (c *Categorizer) Suggest(ctx context.Context, name string, categories []string) (catalog.Entry, error) {
	req := llm.Request{
		Stage:       stageCategorize,
		System:      systemCategorize,
		User:        categorizePrompt(name, categories),
		Temperature: 0.3,
		MaxTokens:   150,
		Schema:      categorizationSchema(),
	}

	content, err := c.llm.Complete(ctx, req)
	entry, perr := parseCategorization(name, content)
	if err == nil {
		err = perr
	}

	logEntry := liora.AttemptLog{Stage: stageCategorize, Attempt: 1, Timestamp: time.Now(), Prompt: req.User, Response: content}
	if err != nil {
		logEntry.Error = err.Error()
	}
	if lerr := c.logger.LogAttempt(logEntry); lerr != nil {
		slog.Warn("GENERATOR: Failed to log attempt", "error", lerr)
	}
	if err != nil {
		return catalog.Entry{}, err
	}

	slog.Info("GENERATOR: Categorization suggested", "ingredient", name, "name", entry.Name, "category", entry.Category)
	return entry, nil
}

func parseCategorization(name, content string) (catalog.Entry, error) {
	var entry catalog.Entry
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &entry); err != nil {
		return catalog.Entry{}, fmt.Errorf("decode categorization: %w", err)
	}
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Category = strings.TrimSpace(entry.Category)
	var missing []string
	if entry.Name == "" {
		missing = append(missing, "name")
	}
	if entry.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return catalog.Entry{}, errors.Join(reconcile.ErrNoSuggestion, &MissingKeysError{Stage: stageCategorize, Keys: missing})
	}
	if strings.Contains(strings.ToLower(name), "pasta") && entry.Category != PastaCategory {
		return catalog.Entry{}, ErrPastaCategory
	}
	return entry, nil
}
