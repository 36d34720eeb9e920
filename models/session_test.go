package models

import (
	"testing"
)

func TestStage_Busy(t *testing.T) {
	tests := []struct {
		stage Stage
		want  bool
	}{
		{StageIdle, false},
		{StageDetectingLanguage, true},
		{StageTranscribing, true},
		{StageReady, false},
		{StageTranslating, true},
		{StageTranslated, false},
		{StageError, false},
	}
	for _, tt := range tests {
		if got := tt.stage.Busy(); got != tt.want {
			t.Errorf("%s.Busy() = %v, want %v", tt.stage, got, tt.want)
		}
	}
}

func TestStage_StatusText(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected string
	}{
		{StageIdle, "Upload an audio or video file"},
		{StageDetectingLanguage, "Detecting language..."},
		{StageTranscribing, "Transcribing..."},
		{StageReady, "Ready to translate"},
		{StageTranslating, "Translating..."},
		{StageTranslated, "Translated"},
		{StageError, "Failed"},
		{Stage("custom"), "custom"},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.StatusText(); got != tt.expected {
				t.Errorf("StatusText() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStage_StatusIcon(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected string
	}{
		{StageIdle, "⏳"},
		{StageTranscribing, "🔄"},
		{StageReady, "📝"},
		{StageTranslated, "✅"},
		{StageError, "❌"},
		{Stage("unknown"), "📄"},
	}

	for _, tt := range tests {
		if got := tt.stage.StatusIcon(); got != tt.expected {
			t.Errorf("%s.StatusIcon() = %q, want %q", tt.stage, got, tt.expected)
		}
	}
}

func TestSessionStatus_StatusText(t *testing.T) {
	st := SessionStatus{Stage: StageError, Error: "unsupported language: en"}
	if got := st.StatusText(); got != "Failed: unsupported language: en" {
		t.Errorf("StatusText() = %q", got)
	}
	st = SessionStatus{Stage: StageReady}
	if got := st.StatusText(); got != "Ready to translate" {
		t.Errorf("StatusText() = %q", got)
	}
}

func TestNewSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == "" || a == b {
		t.Errorf("NewSessionID() returned %q and %q", a, b)
	}
}

func TestTranscript_HasSentences(t *testing.T) {
	if (Transcript{Sentences: []string{" ", ""}}).HasSentences() {
		t.Error("blank sentences reported as present")
	}
	if !(Transcript{Sentences: []string{"Xin chào."}}).HasSentences() {
		t.Error("sentence not reported")
	}
}
