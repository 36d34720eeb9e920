package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"verbum-lector/internal/config"
	"verbum-lector/internal/datauri"
	internalhttp "verbum-lector/internal/http"
	"verbum-lector/internal/logger"
	"verbum-lector/internal/text"
	"verbum-lector/models"
)

// Groq limits uploads to 25MB.
const groqMaxUploadBytes = 25 * 1024 * 1024

// GroqTranscriptionService transcribes audio with Groq's Whisper API. Whisper
// reports the spoken language alongside the text, so the same upload serves
// language detection; the last response is cached so detect followed by
// transcribe costs one request.
type GroqTranscriptionService struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	retry    internalhttp.RetryConfig
	log      *logger.Logger

	mu        sync.Mutex
	cacheKey  [32]byte
	cacheResp *groqVerboseResponse
}

// NewGroqTranscriptionService creates a new Groq transcription service.
func NewGroqTranscriptionService(apiKey string) *GroqTranscriptionService {
	return &GroqTranscriptionService{
		apiKey:   apiKey,
		endpoint: config.GroqWhisperEndpoint,
		model:    config.GroqWhisperModel,
		client:   internalhttp.TranscriptionClient,
		retry:    internalhttp.DefaultRetryConfig(),
		log:      logger.With("transcriber.groq"),
	}
}

// CheckInstalled verifies the API key is set.
func (s *GroqTranscriptionService) CheckInstalled() error {
	if s.apiKey == "" {
		return fmt.Errorf("Groq API key is required. Get one at https://console.groq.com")
	}
	return nil
}

type groqVerboseResponse struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// DetectLanguage uploads the audio and reports the language Whisper heard.
// Whisper gives no language probability, so confidence is derived from the
// mean segment log probability.
func (s *GroqTranscriptionService) DetectLanguage(ctx context.Context, audioDataURI string) (models.LanguageDetection, error) {
	resp, err := s.transcribe(ctx, audioDataURI)
	if err != nil {
		return models.LanguageDetection{}, err
	}
	return models.LanguageDetection{
		LanguageCode: text.NormalizeLanguageCode(resp.Language),
		Confidence:   resp.confidence(),
	}, nil
}

// TranscribeAudio returns the transcript, split into sentences.
func (s *GroqTranscriptionService) TranscribeAudio(ctx context.Context, audioDataURI string) (models.Transcript, error) {
	resp, err := s.transcribe(ctx, audioDataURI)
	if err != nil {
		return models.Transcript{}, err
	}

	full := strings.TrimSpace(resp.Text)
	if full == "" {
		parts := make([]string, 0, len(resp.Segments))
		for _, seg := range resp.Segments {
			parts = append(parts, strings.TrimSpace(seg.Text))
		}
		full = strings.Join(parts, " ")
	}
	sentences := text.SplitSentences(full)
	s.log.Info("transcribed %.0fs of audio into %d sentences", resp.Duration, len(sentences))

	return models.Transcript{Transcript: full, Sentences: sentences}, nil
}

func (r *groqVerboseResponse) confidence() float64 {
	if len(r.Segments) == 0 {
		return 0
	}
	var sum float64
	for _, seg := range r.Segments {
		sum += seg.AvgLogprob
	}
	return math.Max(0, math.Min(1, math.Exp(sum/float64(len(r.Segments)))))
}

func (s *GroqTranscriptionService) transcribe(ctx context.Context, audioDataURI string) (*groqVerboseResponse, error) {
	if err := s.CheckInstalled(); err != nil {
		return nil, err
	}

	key := sha256.Sum256([]byte(audioDataURI))
	s.mu.Lock()
	if s.cacheResp != nil && s.cacheKey == key {
		resp := s.cacheResp
		s.mu.Unlock()
		return resp, nil
	}
	s.mu.Unlock()

	audio, err := datauri.ValidateMedia(audioDataURI)
	if err != nil {
		return nil, err
	}
	if len(audio.Data) > groqMaxUploadBytes {
		return nil, fmt.Errorf("audio is %d bytes, Groq accepts at most %d", len(audio.Data), groqMaxUploadBytes)
	}

	s.log.Info("Groq Whisper API: model=%s size=%d type=%s", s.model, len(audio.Data), audio.MIMEType)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "audio"+audio.Extension())
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, fmt.Errorf("failed to write audio: %w", err)
	}
	if err := writer.WriteField("model", s.model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("failed to write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := internalhttp.DoWithRetryContext(ctx, s.client, req, s.retry)
	if err != nil {
		return nil, fmt.Errorf("Groq API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("Groq API error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("Groq API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed groqVerboseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse Groq response: %w", err)
	}

	s.mu.Lock()
	s.cacheKey = key
	s.cacheResp = &parsed
	s.mu.Unlock()

	return &parsed, nil
}
