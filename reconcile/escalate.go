package reconcile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"liora/catalog"
	"liora/normalize"
)

var (
	ErrNoSuggestion          = errors.New("no suggestion for ingredient")
	ErrImplausibleSuggestion = errors.New("suggestion differs too much from the ingredient")
)

// Escalator decides what to do with an ingredient the catalog does not
// know. Returning accepted=false leaves the ingredient rejected.
type Escalator interface {
	Resolve(ctx context.Context, c Candidate, categories []string) (entry catalog.Entry, accepted bool, err error)
}

// Suggester proposes a catalog entry for an unknown ingredient.
type Suggester interface {
	Suggest(ctx context.Context, name string, categories []string) (catalog.Entry, error)
}

// Plausible reports whether suggested still names the same ingredient as
// original: one contains the other, or they are at least threshold alike.
func Plausible(original, suggested string, threshold float64) bool {
	o := strings.ToLower(strings.TrimSpace(original))
	s := strings.ToLower(strings.TrimSpace(suggested))
	if o == "" || s == "" {
		return false
	}
	if strings.Contains(s, o) || strings.Contains(o, s) {
		return true
	}
	return normalize.Ratio(o, s) >= threshold
}

func suggest(ctx context.Context, s Suggester, name string, categories []string, threshold float64) (catalog.Entry, error) {
	entry, err := s.Suggest(ctx, name, categories)
	if err != nil {
		return catalog.Entry{}, err
	}
	if !Plausible(name, entry.Name, threshold) {
		return entry, fmt.Errorf("%w: %q -> %q", ErrImplausibleSuggestion, name, entry.Name)
	}
	return entry, nil
}

// AutoEscalator accepts every plausible suggestion whose category exists.
type AutoEscalator struct {
	suggester Suggester
	threshold float64
}

func NewAutoEscalator(s Suggester, threshold float64) *AutoEscalator {
	return &AutoEscalator{suggester: s, threshold: threshold}
}

func (a *AutoEscalator) Resolve(ctx context.Context, c Candidate, categories []string) (catalog.Entry, bool, error) {
	entry, err := suggest(ctx, a.suggester, c.Name, categories, a.threshold)
	if err != nil {
		return catalog.Entry{}, false, err
	}
	if !slices.Contains(categories, entry.Category) {
		slog.Warn("RECONCILE: Suggested category does not exist", "name", entry.Name, "category", entry.Category)
		return entry, false, nil
	}
	return entry, true, nil
}

// ConsoleEscalator shows the suggestion and asks for confirmation.
type ConsoleEscalator struct {
	suggester Suggester
	threshold float64
	in        *bufio.Reader
	out       io.Writer
}

func NewConsoleEscalator(s Suggester, threshold float64, in io.Reader, out io.Writer) *ConsoleEscalator {
	return &ConsoleEscalator{
		suggester: s,
		threshold: threshold,
		in:        bufio.NewReader(in),
		out:       out,
	}
}

func (e *ConsoleEscalator) Resolve(ctx context.Context, c Candidate, categories []string) (catalog.Entry, bool, error) {
	fmt.Fprintf(e.out, "Ingrediente '%s' no encontrado. Consultando categorización...\n", c.Name)

	entry, err := suggest(ctx, e.suggester, c.Name, categories, e.threshold)
	if err != nil {
		return catalog.Entry{}, false, err
	}

	fmt.Fprintf(e.out, "  nombre:    %s\n", entry.Name)
	fmt.Fprintf(e.out, "  categoría: %s\n", entry.Category)
	if len(entry.Aliases) > 0 {
		fmt.Fprintf(e.out, "  alias:     %s\n", strings.Join(entry.Aliases, ", "))
	}
	fmt.Fprint(e.out, "¿Deseas usar esta categorización? (s/n): ")

	line, err := e.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return catalog.Entry{}, false, fmt.Errorf("read confirmation: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(line)) != "s" {
		return entry, false, nil
	}
	return entry, true, nil
}

// StaticSuggester answers from a fixed table keyed by lowercase name.
type StaticSuggester map[string]catalog.Entry

func (s StaticSuggester) Suggest(_ context.Context, name string, _ []string) (catalog.Entry, error) {
	entry, ok := s[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return catalog.Entry{}, fmt.Errorf("%w: %q", ErrNoSuggestion, name)
	}
	return entry, nil
}
