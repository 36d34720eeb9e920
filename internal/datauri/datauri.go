// Package datauri encodes and decodes the base64 data URIs used to hand audio
// to the transcription collaborators: data:<mime>;base64,<payload>.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrMalformed is returned for strings that are not base64 data URIs.
	ErrMalformed = errors.New("malformed data URI")
	// ErrNotMedia is returned when the MIME type is not audio or video.
	ErrNotMedia = errors.New("data URI is not audio or video")
)

const prefix = "data:"

// URI is a decoded data URI.
type URI struct {
	MIMEType string
	Data     []byte
}

// String encodes the URI back to its textual form.
func (u URI) String() string {
	return Encode(u.MIMEType, u.Data)
}

// Encode builds a data URI from a MIME type and raw bytes.
func Encode(mimeType string, data []byte) string {
	return prefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Parse decodes a data URI. Only base64 payloads are accepted.
func Parse(s string) (URI, error) {
	if !strings.HasPrefix(s, prefix) {
		return URI{}, fmt.Errorf("%w: missing %q prefix", ErrMalformed, prefix)
	}
	header, payload, ok := strings.Cut(s[len(prefix):], ",")
	if !ok {
		return URI{}, fmt.Errorf("%w: missing payload separator", ErrMalformed)
	}

	params := strings.Split(header, ";")
	if params[len(params)-1] != "base64" {
		return URI{}, fmt.Errorf("%w: payload is not base64", ErrMalformed)
	}
	mimeType := strings.TrimSpace(params[0])
	if mimeType == "" {
		return URI{}, fmt.Errorf("%w: missing MIME type", ErrMalformed)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return URI{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(data) == 0 {
		return URI{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	return URI{MIMEType: strings.ToLower(mimeType), Data: data}, nil
}

// IsMedia reports whether mimeType is an audio or video type.
func IsMedia(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/") || strings.HasPrefix(mimeType, "video/")
}

// ValidateMedia parses s and checks that it carries audio or video.
func ValidateMedia(s string) (URI, error) {
	u, err := Parse(s)
	if err != nil {
		return URI{}, err
	}
	if !IsMedia(u.MIMEType) {
		return URI{}, fmt.Errorf("%w: %s", ErrNotMedia, u.MIMEType)
	}
	return u, nil
}

// DetectMIMEType picks a MIME type for a file from its extension, falling
// back to sniffing the content.
func DetectMIMEType(filename string, data []byte) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if t, ok := mediaExtensions[ext]; ok {
			return t
		}
		if t := mime.TypeByExtension(ext); t != "" {
			if mt, _, err := mime.ParseMediaType(t); err == nil {
				return mt
			}
		}
	}
	if mt, _, err := mime.ParseMediaType(mimetype.Detect(data).String()); err == nil {
		return mt
	}
	return "application/octet-stream"
}

// FromFile builds a data URI from a file's name and content.
func FromFile(filename string, data []byte) string {
	return Encode(DetectMIMEType(filename, data), data)
}

// Media extensions, checked before the system MIME table since those disagree
// across platforms.
var mediaExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".flac": "audio/flac",
	".webm": "video/webm",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
}

// Extension returns a file extension for the URI's MIME type, used when a
// provider wants a filename for an upload.
func (u URI) Extension() string {
	for ext, t := range mediaExtensions {
		if t == u.MIMEType && ext != ".opus" {
			return ext
		}
	}
	if exts, err := mime.ExtensionsByType(u.MIMEType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
