package services

import (
	"context"
	"fmt"

	"verbum-lector/internal/transcription"
	"verbum-lector/internal/translation"
	"verbum-lector/models"
)

// providerSet builds providers on demand and shares one Gemini client
// between the roles that use it.
type providerSet struct {
	ctx    context.Context
	config *models.Config
	gemini *GeminiService
	groq   *GroqTranscriptionService
}

func newProviderSet(ctx context.Context, config *models.Config) *providerSet {
	return &providerSet{ctx: ctx, config: config}
}

func (p *providerSet) geminiService() (*GeminiService, error) {
	if p.gemini == nil {
		svc, err := NewGeminiService(p.ctx, p.config.GeminiAPIKey, p.config.GeminiModel, p.config.PreprocessSentences)
		if err != nil {
			return nil, err
		}
		p.gemini = svc
	}
	return p.gemini, nil
}

func (p *providerSet) transcriptionService(name string) (transcription.Service, error) {
	switch transcription.ProviderType(name) {
	case transcription.ProviderGemini, "":
		return p.geminiService()
	case transcription.ProviderGroq:
		if p.groq == nil {
			p.groq = NewGroqTranscriptionService(p.config.GroqAPIKey)
		}
		if err := p.groq.CheckInstalled(); err != nil {
			return nil, err
		}
		return p.groq, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want one of %v)", name, transcription.Providers())
	}
}

func (p *providerSet) translationService(name string) (translation.Translator, error) {
	switch translation.ProviderType(name) {
	case translation.ProviderGemini, "":
		return p.geminiService()
	case translation.ProviderDeepSeek:
		svc := NewDeepSeekTranslationService(p.config.DeepSeekKey, p.config.PreprocessSentences)
		return svc, svc.CheckAPIKey()
	case translation.ProviderOpenAI:
		svc := NewOpenAITranslationService(p.config.OpenAIKey, p.config.PreprocessSentences)
		return svc, svc.CheckAPIKey()
	case translation.ProviderOllama:
		return NewOllamaTranslationService(p.config.OllamaHost, p.config.OllamaModel, p.config.PreprocessSentences), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want one of %v)", name, translation.Providers())
	}
}
