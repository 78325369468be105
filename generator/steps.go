package generator

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{[^}]+\}`)

// InvalidPlaceholderError reports a step referencing a variable that does
// not belong to any listed ingredient.
type InvalidPlaceholderError struct {
	Step        int
	Placeholder string
}

func (e *InvalidPlaceholderError) Error() string {
	return fmt.Sprintf("step %d uses unknown placeholder %s", e.Step, e.Placeholder)
}

func placeholders(i int) []string {
	return []string{
		fmt.Sprintf("{quantity_%d}", i),
		fmt.Sprintf("{unit_%d}", i),
		fmt.Sprintf("{ingredient_%d}", i),
	}
}

// ValidateSteps checks the ingredient placeholders of every step against n
// numbered ingredients and returns corrected copies.
//
// A step that uses some but not all of {quantity_i}, {unit_i} and
// {ingredient_i} gets the missing ones inserted before the first one it
// does use. Any other {var} is an error.
func ValidateSteps(steps []string, n int) ([]string, error) {
	expected := make(map[string]bool, 3*n)
	for i := 1; i <= n; i++ {
		for _, p := range placeholders(i) {
			expected[p] = true
		}
	}

	out := make([]string, len(steps))
	for s, step := range steps {
		for i := 1; i <= n; i++ {
			step = completePlaceholders(step, placeholders(i))
		}
		for _, v := range placeholderPattern.FindAllString(step, -1) {
			if !expected[v] {
				return nil, &InvalidPlaceholderError{Step: s + 1, Placeholder: v}
			}
		}
		out[s] = strings.TrimSpace(step)
	}
	return out, nil
}

func completePlaceholders(step string, group []string) string {
	first := -1
	var missing []string
	for _, p := range group {
		pos := strings.Index(step, p)
		if pos < 0 {
			missing = append(missing, p)
			continue
		}
		if first < 0 || pos < first {
			first = pos
		}
	}
	if first < 0 || len(missing) == 0 {
		return step
	}
	return step[:first] + strings.Join(missing, " ") + " " + step[first:]
}
