// Package normalize turns free-text ingredient names into the canonical
// spelling used by the catalog.
package normalize

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"liora/catalog"
)

// AliasSource is the read side of the alias table.
type AliasSource interface {
	Lookup(alias string) (string, bool)
	Aliases() []catalog.Alias
	IsAliasTarget(name string) bool
}

var prepWords = []string{
	"rallado", "picado", "cortado", "troceado", "molido",
	"fresco", "fresca", "frescos", "frescas",
}

var prepPhrases = [][]string{
	{"en", "rodajas"},
	{"en", "trozos"},
	{"en", "dados"},
	{"en", "juliana"},
}

var prefixes = []string{"rodajas de ", "filetes de ", "trozos de ", "picado de ", "rallado de "}

// Normalizer is safe for concurrent use as long as its AliasSource is.
type Normalizer struct {
	aliases AliasSource
}

func New(aliases AliasSource) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Normalize returns the canonical, capitalized form of name. Applying it to
// its own output returns the same string.
func (n *Normalizer) Normalize(name string) string {
	text := n.fold(name)
	if text == "" {
		return ""
	}
	if n.aliases.IsAliasTarget(text) {
		return Capitalize(text)
	}

	for {
		next := strip(text)
		if next == text {
			break
		}
		text = next
	}

	if n.aliases.IsAliasTarget(text) {
		return Capitalize(text)
	}
	if target, ok := n.resolveAlias(text); ok {
		text = n.fold(target)
	}
	return Capitalize(text)
}

func (n *Normalizer) fold(s string) string {
	// A Caser keeps state between calls, so each fold gets its own.
	s = cases.Lower(language.Spanish).String(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

func (n *Normalizer) resolveAlias(text string) (string, bool) {
	if target, ok := n.aliases.Lookup(text); ok && strings.TrimSpace(target) != "" {
		return target, true
	}
	if text == "" {
		return "", false
	}
	for _, a := range n.aliases.Aliases() {
		if strings.TrimSpace(a.Name) == "" || a.Alias == "" {
			continue
		}
		if strings.Contains(a.Alias, text) || strings.Contains(text, a.Alias) {
			return a.Name, true
		}
	}
	return "", false
}

// strip runs one pass of the prep-word, prefix and plural rules.
func strip(text string) string {
	words := strings.Fields(text)
	words = slices.DeleteFunc(words, func(w string) bool {
		return slices.Contains(prepWords, w)
	})
	words = dropPhrases(words)
	text = strings.Join(words, " ")

	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(text, p); ok {
			text = rest
		}
	}

	if strings.HasSuffix(text, "s") && !strings.HasSuffix(text, "as") && !strings.HasSuffix(text, "ss") {
		text = strings.TrimSpace(text[:len(text)-1])
	}
	return text
}

func dropPhrases(words []string) []string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		skipped := false
		for _, ph := range prepPhrases {
			if i+len(ph) <= len(words) && slices.Equal(words[i:i+len(ph)], ph) {
				i += len(ph) - 1
				skipped = true
				break
			}
		}
		if !skipped {
			out = append(out, words[i])
		}
	}
	return out
}

// Capitalize upper-cases the first rune and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
