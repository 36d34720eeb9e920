package text

import (
	"strings"
	"unicode"
)

// SplitByDelimiter splits text by a delimiter and returns cleaned, non-empty parts.
// This is useful for parsing batch translation results that use delimiters.
func SplitByDelimiter(text, delimiter string) []string {
	parts := strings.Split(text, delimiter)
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '」', '』':
		return true
	}
	return false
}

// SplitSentences breaks a transcript into sentences. A sentence ends at
// terminal punctuation (plus any closing quotes) followed by whitespace, or at
// a line break. Whitespace between sentences is dropped and empty sentences
// are skipped.
func SplitSentences(transcript string) []string {
	runes := []rune(transcript)
	var sentences []string
	var cur strings.Builder

	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, whitespaceRegex.ReplaceAllString(s, " "))
		}
		cur.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' || r == '\r' {
			flush()
			continue
		}
		cur.WriteRune(r)
		if !isSentenceEnd(r) {
			continue
		}
		for i+1 < len(runes) && (isSentenceEnd(runes[i+1]) || isClosing(runes[i+1])) {
			i++
			cur.WriteRune(runes[i])
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}
