package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage is where a session's pipeline currently is.
type Stage string

const (
	StageIdle              Stage = "idle"
	StageDetectingLanguage Stage = "detecting_language"
	StageTranscribing      Stage = "transcribing"
	StageReady             Stage = "ready"
	StageTranslating       Stage = "translating"
	StageTranslated        Stage = "translated"
	StageError             Stage = "error"
)

// Busy reports whether an external call is in flight in this stage.
func (s Stage) Busy() bool {
	switch s {
	case StageDetectingLanguage, StageTranscribing, StageTranslating:
		return true
	}
	return false
}

// StatusText returns a short description for display.
func (s Stage) StatusText() string {
	switch s {
	case StageIdle:
		return "Upload an audio or video file"
	case StageDetectingLanguage:
		return "Detecting language..."
	case StageTranscribing:
		return "Transcribing..."
	case StageReady:
		return "Ready to translate"
	case StageTranslating:
		return "Translating..."
	case StageTranslated:
		return "Translated"
	case StageError:
		return "Failed"
	default:
		return string(s)
	}
}

// StatusIcon returns an emoji icon representing the stage
func (s Stage) StatusIcon() string {
	switch s {
	case StageIdle:
		return "⏳"
	case StageDetectingLanguage, StageTranscribing, StageTranslating:
		return "🔄"
	case StageReady:
		return "📝"
	case StageTranslated:
		return "✅"
	case StageError:
		return "❌"
	default:
		return "📄"
	}
}

// SessionStatus is a point-in-time view of a session's pipeline.
type SessionStatus struct {
	SessionID      string             `json:"sessionId"`
	Stage          Stage              `json:"stage"`
	Fallback       Stage              `json:"fallback,omitempty"`
	Message        string             `json:"message"`
	Progress       int                `json:"progress"`
	Error          string             `json:"error,omitempty"`
	Detected       *LanguageDetection `json:"detected,omitempty"`
	SourceLanguage string             `json:"sourceLanguage,omitempty"`
	TargetLanguage string             `json:"targetLanguage,omitempty"`
	FileName       string             `json:"fileName,omitempty"`
	Epoch          uint64             `json:"epoch"`
	SegmentCount   int                `json:"segmentCount"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// StatusText describes the status, including the error message on failure.
func (s SessionStatus) StatusText() string {
	if s.Stage == StageError && s.Error != "" {
		return "Failed: " + s.Error
	}
	return s.Stage.StatusText()
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.New().String()
}
