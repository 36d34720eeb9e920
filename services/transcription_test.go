package services

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"

	"verbum-lector/internal/config"
	"verbum-lector/internal/datauri"
	"verbum-lector/internal/translation"
)

func newTestGroq(t *testing.T, handler http.HandlerFunc) (*GroqTranscriptionService, *int32) {
	t.Helper()
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	svc := NewGroqTranscriptionService("groq-key")
	svc.endpoint = srv.URL
	svc.retry.InitialDelay = time.Millisecond
	return svc, &requests
}

func TestGroqTranscriptionService_DetectThenTranscribe(t *testing.T) {
	svc, requests := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer groq-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		if got := r.FormValue("model"); got != config.GroqWhisperModel {
			t.Errorf("model = %q, want %q", got, config.GroqWhisperModel)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		data, _ := io.ReadAll(file)
		if string(data) != "RIFFdata" || header.Filename != "audio.wav" {
			t.Errorf("upload = %q as %q", data, header.Filename)
		}
		w.Write([]byte(`{"language":"korean","duration":3.5,"text":" 안녕하세요. 반갑습니다. ",
			"segments":[{"text":"안녕하세요.","avg_logprob":-0.1},{"text":"반갑습니다.","avg_logprob":-0.3}]}`))
	})
	audio := datauri.Encode("audio/wav", []byte("RIFFdata"))

	det, err := svc.DetectLanguage(context.Background(), audio)
	if err != nil {
		t.Fatalf("DetectLanguage() error = %v", err)
	}
	if det.LanguageCode != "ko" {
		t.Errorf("LanguageCode = %q, want ko", det.LanguageCode)
	}
	if want := math.Exp(-0.2); math.Abs(det.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", det.Confidence, want)
	}

	tr, err := svc.TranscribeAudio(context.Background(), audio)
	if err != nil {
		t.Fatalf("TranscribeAudio() error = %v", err)
	}
	if want := []string{"안녕하세요.", "반갑습니다."}; !reflect.DeepEqual(tr.Sentences, want) {
		t.Errorf("Sentences = %q, want %q", tr.Sentences, want)
	}
	if n := atomic.LoadInt32(requests); n != 1 {
		t.Errorf("requests = %d, want 1 (cached)", n)
	}
}

func TestGroqTranscriptionService_APIError(t *testing.T) {
	svc, _ := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"file is too short"}}`))
	})
	_, err := svc.TranscribeAudio(context.Background(), testAudio("x"))
	if err == nil || !strings.Contains(err.Error(), "file is too short") {
		t.Errorf("error = %v", err)
	}
}

func TestGroqTranscriptionService_Validation(t *testing.T) {
	if err := NewGroqTranscriptionService("").CheckInstalled(); err == nil {
		t.Error("CheckInstalled() without key should fail")
	}
	svc, requests := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := svc.TranscribeAudio(context.Background(), "data:text/plain;base64,eA=="); !errors.Is(err, datauri.ErrNotMedia) {
		t.Errorf("error = %v, want ErrNotMedia", err)
	}
	if n := atomic.LoadInt32(requests); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

// fakeGenerator replays canned JSON answers and records the prompts.
type fakeGenerator struct {
	replies []string
	err     error
	calls   []*genai.GenerateContentConfig
	parts   [][]*genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, cfg)
	f.parts = append(f.parts, contents[0].Parts)
	if f.err != nil {
		return nil, f.err
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(reply, genai.RoleModel)}},
	}, nil
}

func TestGeminiService_DetectLanguage(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"```json\n{\"languageCode\":\"vi\",\"confidence\":0.93}\n```"}}
	svc := newGeminiService(gen, "", false)

	det, err := svc.DetectLanguage(context.Background(), testAudio("mp3"))
	if err != nil {
		t.Fatalf("DetectLanguage() error = %v", err)
	}
	if det.LanguageCode != "vi" || det.Confidence != 0.93 {
		t.Errorf("DetectLanguage() = %+v", det)
	}
	if gen.calls[0].ResponseSchema != detectSchema || gen.calls[0].ResponseMIMEType != "application/json" {
		t.Error("detection did not request the detection schema")
	}
	inline := gen.parts[0][1].InlineData
	if inline == nil || inline.MIMEType != "audio/mpeg" || string(inline.Data) != "mp3" {
		t.Errorf("audio part = %+v", inline)
	}
}

func TestGeminiService_TranscribeAudio(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{"transcript":"Xin chào. Tạm biệt.","sentences":["Xin chào.","Tạm biệt."]}`}}
	svc := newGeminiService(gen, "gemini-test", false)

	tr, err := svc.TranscribeAudio(context.Background(), testAudio("mp3"))
	if err != nil {
		t.Fatalf("TranscribeAudio() error = %v", err)
	}
	if len(tr.Sentences) != 2 || tr.Transcript != "Xin chào. Tạm biệt." {
		t.Errorf("TranscribeAudio() = %+v", tr)
	}
}

func TestGeminiService_TranslateSentences(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{"translatedSentences":["안녕하세요","감사합니다"]}`}}
	svc := newGeminiService(gen, "", false)

	got, err := svc.TranslateSentences(context.Background(), []string{"Xin chào", "", "Cảm ơn", "Xin chào"}, "vi", "ko")
	if err != nil {
		t.Fatalf("TranslateSentences() error = %v", err)
	}
	if want := []string{"안녕하세요", "", "감사합니다", "안녕하세요"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TranslateSentences() = %q, want %q", got, want)
	}
	prompt := gen.parts[0][0].Text
	if !strings.Contains(prompt, "Vietnamese") || !strings.Contains(prompt, "Korean") {
		t.Errorf("prompt does not name the languages: %q", prompt)
	}
}

func TestGeminiService_Errors(t *testing.T) {
	mismatch := newGeminiService(&fakeGenerator{replies: []string{`{"translatedSentences":["one"]}`}}, "", false)
	if _, err := mismatch.TranslateSentences(context.Background(), []string{"a", "b"}, "vi", "ko"); !errors.Is(err, translation.ErrCountMismatch) {
		t.Errorf("mismatch error = %v, want ErrCountMismatch", err)
	}

	garbage := newGeminiService(&fakeGenerator{replies: []string{"not json"}}, "", false)
	if _, err := garbage.DetectLanguage(context.Background(), testAudio("x")); err == nil {
		t.Error("expected parse error")
	}

	failing := newGeminiService(&fakeGenerator{err: errors.New("quota exceeded")}, "", false)
	if _, err := failing.TranscribeAudio(context.Background(), testAudio("x")); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error = %v", err)
	}

	if _, err := NewGeminiService(context.Background(), "", "", false); err == nil {
		t.Error("NewGeminiService() without key should fail")
	}
}
