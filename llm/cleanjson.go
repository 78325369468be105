package llm

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("```\\w*\\s*")
	fenceClose = regexp.MustCompile("\\s*```")
	spaces     = regexp.MustCompile(`\s+`)

	typographicQuotes = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`)
)

// CleanJSON repairs the usual damage in model output so that it can be
// decoded: markdown fences, control characters, leading prose, typographic
// quotes and backslashes that are not valid JSON escapes.
func CleanJSON(content string) string {
	if content == "" {
		return ""
	}

	content = fenceOpen.ReplaceAllString(content, "")
	content = fenceClose.ReplaceAllString(content, "")

	content = strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' {
			return -1
		}
		return r
	}, content)
	content = spaces.ReplaceAllString(content, " ")
	content = strings.TrimSpace(strings.Trim(content, `"`))

	if start := strings.IndexAny(content, "{["); start > 0 {
		content = content[start:]
	}

	content = typographicQuotes.Replace(content)
	return escapeBackslashes(content)
}

// escapeBackslashes doubles every backslash that does not start a valid
// JSON escape sequence.
func escapeBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && strings.IndexByte(`"\/bfnrt`, s[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if i+5 < len(s) && s[i+1] == 'u' && isHex(s[i+2:i+6]) {
			b.WriteByte(c)
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
