package datauri

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeParse(t *testing.T) {
	data := []byte("RIFF fake wav bytes")
	s := Encode("audio/wav", data)

	if s[:21] != "data:audio/wav;base64" {
		t.Errorf("Encode prefix = %q", s[:21])
	}

	u, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if u.MIMEType != "audio/wav" || !bytes.Equal(u.Data, data) {
		t.Errorf("Parse = %+v", u)
	}
	if u.String() != s {
		t.Errorf("String() = %q, want %q", u.String(), s)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no prefix", "audio/wav;base64,AAAA"},
		{"no comma", "data:audio/wav;base64"},
		{"not base64", "data:audio/wav,hello"},
		{"no mime", "data:;base64,AAAA"},
		{"bad payload", "data:audio/wav;base64,!!!"},
		{"empty payload", "data:audio/wav;base64,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.in); !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse(%q) error = %v, want ErrMalformed", tt.in, err)
			}
		})
	}
}

func TestParse_WithParameters(t *testing.T) {
	u, err := Parse("data:Audio/OGG;codecs=opus;base64,AAEC")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if u.MIMEType != "audio/ogg" {
		t.Errorf("MIMEType = %q, want audio/ogg", u.MIMEType)
	}
}

func TestValidateMedia(t *testing.T) {
	if _, err := ValidateMedia(Encode("video/mp4", []byte{1, 2, 3})); err != nil {
		t.Errorf("video/mp4 rejected: %v", err)
	}
	if _, err := ValidateMedia(Encode("text/plain", []byte("hi"))); !errors.Is(err, ErrNotMedia) {
		t.Errorf("text/plain error = %v, want ErrNotMedia", err)
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"sermon.mp3", "audio/mpeg"},
		{"clip.M4A", "audio/mp4"},
		{"talk.webm", "video/webm"},
	}
	for _, tt := range tests {
		if got := DetectMIMEType(tt.name, []byte{0}); got != tt.want {
			t.Errorf("DetectMIMEType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDetectMIMEType_Sniffs(t *testing.T) {
	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 24)...)
	if got := DetectMIMEType("upload", wav); got != "audio/wav" {
		t.Errorf("DetectMIMEType(wav bytes) = %q, want audio/wav", got)
	}
	if got := DetectMIMEType("upload", []byte{0}); got != "application/octet-stream" {
		t.Errorf("DetectMIMEType(unknown) = %q, want application/octet-stream", got)
	}
}

func TestExtension(t *testing.T) {
	if got := (URI{MIMEType: "audio/mpeg"}).Extension(); got != ".mp3" {
		t.Errorf("Extension() = %q, want .mp3", got)
	}
	if got := (URI{MIMEType: "audio/ogg"}).Extension(); got != ".ogg" {
		t.Errorf("Extension() = %q, want .ogg", got)
	}
}
