// Package transcription defines the speech-side collaborators of the
// pipeline: language detection and speech-to-text.
package transcription

import (
	"context"

	"verbum-lector/models"
)

// LanguageDetector identifies the spoken language of an audio data URI.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, audioDataURI string) (models.LanguageDetection, error)
}

// Transcriber converts an audio data URI into a transcript and its sentences.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audioDataURI string) (models.Transcript, error)
}

// Service is a provider that can do both.
type Service interface {
	LanguageDetector
	Transcriber
}

// ProviderType identifies a transcription provider.
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderGroq   ProviderType = "groq"
)

// Providers returns the supported provider names.
func Providers() []ProviderType {
	return []ProviderType{ProviderGemini, ProviderGroq}
}
