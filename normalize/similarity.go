package normalize

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio scores how alike two names are, in [0, 1], using the matching-blocks
// ratio 2*M/T over characters. Case is ignored.
func Ratio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
