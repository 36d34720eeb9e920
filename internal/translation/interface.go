// Package translation defines the translation collaborator of the pipeline
// and the batching helpers providers share.
package translation

import (
	"context"
	"errors"
	"fmt"
)

// ErrCountMismatch is returned when a provider's reply does not hold exactly
// one translation per input sentence.
var ErrCountMismatch = errors.New("translated sentence count mismatch")

// Translator translates sentences between languages. The result has the same
// length and order as sentences.
type Translator interface {
	TranslateSentences(ctx context.Context, sentences []string, sourceLang, targetLang string) ([]string, error)
}

// ProviderType identifies a translation provider.
type ProviderType string

const (
	ProviderGemini   ProviderType = "gemini"
	ProviderDeepSeek ProviderType = "deepseek"
	ProviderOpenAI   ProviderType = "openai"
	ProviderOllama   ProviderType = "ollama"
)

// Providers returns the supported provider names.
func Providers() []ProviderType {
	return []ProviderType{ProviderGemini, ProviderDeepSeek, ProviderOpenAI, ProviderOllama}
}

// BatchJob is a contiguous run of sentences translated in one request.
type BatchJob struct {
	Index int
	Start int
	Texts []string
}

// Batches splits sentences into chunks of at most size.
func Batches(sentences []string, size int) []BatchJob {
	if size <= 0 {
		size = len(sentences)
	}
	var jobs []BatchJob
	for start := 0; start < len(sentences); start += size {
		end := min(start+size, len(sentences))
		jobs = append(jobs, BatchJob{Index: len(jobs), Start: start, Texts: sentences[start:end]})
	}
	return jobs
}

// Flatten joins batch results back into one slice and checks the total.
func Flatten(results [][]string, want int) ([]string, error) {
	out := make([]string, 0, want)
	for _, r := range results {
		out = append(out, r...)
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrCountMismatch, want, len(out))
	}
	return out, nil
}

// CheckCount returns ErrCountMismatch unless got == want.
func CheckCount(got, want int) error {
	if got != want {
		return fmt.Errorf("%w: sent %d, got %d", ErrCountMismatch, want, got)
	}
	return nil
}
