package services

import (
	"context"
	"fmt"

	"verbum-lector/internal/config"
	"verbum-lector/internal/editor"
	"verbum-lector/internal/limiter"
	"verbum-lector/internal/logger"
	"verbum-lector/internal/transcription"
	"verbum-lector/internal/translation"
	"verbum-lector/models"
)

// ProgressCallback receives every stage change of a session.
type ProgressCallback func(stage models.Stage, percent int, message string)

// Pipeline holds the external collaborators and the settings new sessions
// are created with.
type Pipeline struct {
	config *models.Config

	detector    transcription.LanguageDetector
	transcriber transcription.Transcriber
	translator  translation.Translator

	// calls caps provider requests in flight across all sessions.
	calls *limiter.Slots

	log *logger.Logger
}

// NewPipeline creates a pipeline over the given collaborators. A nil config
// means DefaultConfig.
func NewPipeline(cfg *models.Config, detector transcription.LanguageDetector, transcriber transcription.Transcriber, translator translation.Translator) *Pipeline {
	if cfg == nil {
		cfg = models.DefaultConfig()
	}
	return &Pipeline{
		config:      cfg,
		detector:    detector,
		transcriber: transcriber,
		translator:  translator,
		calls:       limiter.New(config.MaxConcurrentProviderCalls),
		log:         logger.With("pipeline"),
	}
}

// NewPipelineFromConfig builds the providers named in cfg.
func NewPipelineFromConfig(ctx context.Context, cfg *models.Config) (*Pipeline, error) {
	providers := newProviderSet(ctx, cfg)

	detector, err := providers.transcriptionService(cfg.EffectiveDetectionProvider())
	if err != nil {
		return nil, fmt.Errorf("language detection: %w", err)
	}
	transcriber, err := providers.transcriptionService(cfg.TranscriptionProvider)
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	translator, err := providers.translationService(cfg.TranslationProvider)
	if err != nil {
		return nil, fmt.Errorf("translation: %w", err)
	}

	logger.Info("Providers: detect=%s transcribe=%s translate=%s",
		cfg.EffectiveDetectionProvider(), cfg.TranscriptionProvider, cfg.TranslationProvider)
	return NewPipeline(cfg, detector, transcriber, translator), nil
}

// Config returns the settings the pipeline was built with.
func (p *Pipeline) Config() *models.Config {
	return p.config
}

// NewSession starts an empty session. Its background work stops when ctx
// ends or the session is closed.
func (p *Pipeline) NewSession(ctx context.Context) *Session {
	return newSession(ctx, p, editor.StoreOptions{
		FirstID:    p.config.FirstSegmentID,
		LineBreaks: editor.ParseLineBreakPolicy(p.config.LineBreakPolicy),
	})
}
