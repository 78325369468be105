package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liora/catalog"
	"liora/llm"
	"liora/reconcile"
)

func TestCategorizer_Suggest(t *testing.T) {
	tests := []struct {
		name       string
		ingredient string
		response   string
		llmErr     error
		want       catalog.Entry
		wantErr    error
	}{
		{
			name:       "suggestion",
			ingredient: "tempeh ahumado",
			response:   "```json\n{\"name\": \"Tempeh ahumado\", \"category\": \"Proteínas Vegetales\", \"aliases\": [\"tempeh a la brasa\"]}\n```",
			want:       catalog.Entry{Name: "Tempeh ahumado", Category: "Proteínas Vegetales", Aliases: []string{"tempeh a la brasa"}},
		},
		{
			name:       "pasta must use the pasta category",
			ingredient: "pasta fresca al huevo",
			response:   `{"name": "Pasta fresca", "category": "Harinas y Masas"}`,
			wantErr:    ErrPastaCategory,
		},
		{
			name:       "pasta in the pasta category",
			ingredient: "pasta larga",
			response:   `{"name": "Espagueti", "category": "Pastas", "aliases": ["spaghetti"]}`,
			want:       catalog.Entry{Name: "Espagueti", Category: "Pastas", Aliases: []string{"spaghetti"}},
		},
		{
			name:       "empty category",
			ingredient: "kombu",
			response:   `{"name": "Alga kombu", "category": ""}`,
			wantErr:    reconcile.ErrNoSuggestion,
		},
		{
			name:       "llm failure",
			ingredient: "kombu",
			llmErr:     errors.New("timeout"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got llm.Request
			c := llm.CompleterFunc(func(_ context.Context, req llm.Request) (string, error) {
				got = req
				return tt.response, tt.llmErr
			})
			logger := &recordingLogger{}

			entry, err := NewCategorizer(c, logger).Suggest(context.Background(), tt.ingredient, []string{"Proteínas Vegetales", "Pastas"})

			require.Len(t, logger.entries, 1)
			assert.Equal(t, stageCategorize, got.Stage)
			assert.Contains(t, got.User, tt.ingredient)
			assert.Contains(t, got.User, "Proteínas Vegetales")
			assert.NotNil(t, got.Schema)
			assert.Equal(t, int32(150), got.MaxTokens)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.llmErr != nil:
				assert.ErrorIs(t, err, tt.llmErr)
				assert.Equal(t, "timeout", logger.entries[0].Error)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, entry)
			}
		})
	}
}

func TestCategorizer_PastaRuleRejectedByCatalog(t *testing.T) {
	c := llm.CompleterFunc(func(context.Context, llm.Request) (string, error) {
		return `{"name": "Pasta larga", "category": "Pastas"}`, nil
	})
	cat := catalog.Default()
	r := reconcile.New(cat, reconcile.WithEscalator(reconcile.NewAutoEscalator(NewCategorizer(c, nil), reconcile.DefaultThreshold)))

	report := r.Validate(context.Background(), []reconcile.Candidate{{Name: "Pasta larga", Category: "Pastas"}})

	assert.False(t, report.OK())
	assert.False(t, cat.HasCategory(PastaCategory))
}
