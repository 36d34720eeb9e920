// Package text provides language code handling and text cleanup for
// transcripts and translations.
package text

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Hesitation sounds transcribers keep verbatim. Hangul and Vietnamese fillers
// only match as whole words; 그 and à are real words and are left alone.
var fillerRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(uh|um|er|ah|hmm|erm)\b`),
	regexp.MustCompile(`(^|\s)(음+|으음+|어+)(\s|$)`),
	regexp.MustCompile(`(?i)(^|\s)(ờ+|ừm+)(\s|$)`),
}

var repeatedPunctRegex = regexp.MustCompile(`\.{2,}|!{2,}|\?{2,}|,{2,}`)

// Preprocess cleans a sentence before it is sent for translation: fillers
// go, whitespace collapses and runs of one punctuation mark shrink to one.
func Preprocess(s string) string {
	for _, re := range fillerRegexes {
		s = re.ReplaceAllString(s, " ")
	}
	s = strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
	return repeatedPunctRegex.ReplaceAllStringFunc(s, func(run string) string {
		return run[:1]
	})
}
