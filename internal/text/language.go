package text

import (
	"sort"
	"strings"
)

// Supported language codes.
const (
	Vietnamese = "vi"
	Korean     = "ko"
)

// LanguageNames maps ISO 639-1 language codes to human-readable names.
// Only vi and ko are supported for processing; the rest label what a
// detector reported before it was rejected.
var LanguageNames = map[string]string{
	"vi": "Vietnamese",
	"ko": "Korean",
	"en": "English",
	"ja": "Japanese",
	"zh": "Chinese",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"ru": "Russian",
	"th": "Thai",
}

// SupportedLanguages maps the codes the pipeline accepts to their names.
var SupportedLanguages = map[string]string{
	Vietnamese: "Vietnamese",
	Korean:     "Korean",
}

// languageAliases maps full names, as some detectors report them, to codes.
var languageAliases = map[string]string{
	"vietnamese": Vietnamese,
	"tiếng việt": Vietnamese,
	"korean":     Korean,
	"한국어":        Korean,
	"english":    "en",
	"japanese":   "ja",
	"chinese":    "zh",
}

// NormalizeLanguageCode reduces a detector result to a bare lower-case code:
// "ko-KR" and "ko_KR" become "ko", "Korean" becomes "ko".
func NormalizeLanguageCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if alias, ok := languageAliases[code]; ok {
		return alias
	}
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

// IsSupported reports whether code, after normalisation, can be processed.
func IsSupported(code string) bool {
	_, ok := SupportedLanguages[NormalizeLanguageCode(code)]
	return ok
}

// OtherLanguage returns the translation target for a supported source
// language: ko for vi and vi for ko. Other codes return "".
func OtherLanguage(code string) string {
	switch NormalizeLanguageCode(code) {
	case Vietnamese:
		return Korean
	case Korean:
		return Vietnamese
	default:
		return ""
	}
}

// GetLanguageName returns the human-readable name for a language code.
// If the code is not found, it returns the code itself.
func GetLanguageName(code string) string {
	if name, ok := LanguageNames[NormalizeLanguageCode(code)]; ok {
		return name
	}
	return code
}

// SupportedLanguageCodes returns the supported codes in sorted order.
func SupportedLanguageCodes() []string {
	codes := make([]string, 0, len(SupportedLanguages))
	for code := range SupportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
