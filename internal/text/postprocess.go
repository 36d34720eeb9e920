package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Bullets a model sometimes puts in front of a line.
var bulletRegex = regexp.MustCompile(`^[-*•]\s+`)

// Postprocess tidies a translated sentence returned by a model.
func Postprocess(s string) string {
	s = bulletRegex.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.TrimSpace(strings.Trim(s, "\"“”「」"))
	return capitalize(whitespaceRegex.ReplaceAllString(s, " "))
}

// capitalize upper-cases the first letter. Hangul has no case and passes
// through unchanged.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
