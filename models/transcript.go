package models

import "strings"

// LanguageDetection is what a language detector reports for an audio file.
type LanguageDetection struct {
	LanguageCode string  `json:"languageCode"`
	Confidence   float64 `json:"confidence"`
}

// Transcript is a transcription of an audio file, whole and split into sentences.
type Transcript struct {
	Transcript string   `json:"transcript"`
	Sentences  []string `json:"sentences"`
}

// HasSentences reports whether any sentence carries text.
func (t Transcript) HasSentences() bool {
	for _, s := range t.Sentences {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// TranslationRow pairs a segment with its translation for side-by-side display.
type TranslationRow struct {
	SegmentID   int    `json:"segmentId"`
	Original    string `json:"original"`
	Translation string `json:"translation"`
}
