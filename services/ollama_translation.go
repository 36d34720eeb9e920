package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"verbum-lector/internal/config"
	internalhttp "verbum-lector/internal/http"
	"verbum-lector/internal/logger"
	"verbum-lector/internal/text"
	"verbum-lector/internal/translation"
	"verbum-lector/internal/worker"
)

// OllamaTranslationService translates sentences with a local Ollama model,
// one sentence per /api/generate call.
type OllamaTranslationService struct {
	baseURL    string
	model      string
	workers    int
	preprocess bool
	client     *http.Client
	retry      internalhttp.RetryConfig
	log        *logger.Logger
}

// NewOllamaTranslationService creates a translator for the Ollama server at baseURL.
func NewOllamaTranslationService(baseURL, model string, preprocess bool) *OllamaTranslationService {
	if baseURL == "" {
		baseURL = config.DefaultOllamaHost
	}
	if model == "" {
		model = config.DefaultOllamaModel
	}
	return &OllamaTranslationService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		workers:    config.WorkersOllama,
		preprocess: preprocess,
		client:     internalhttp.OllamaClient,
		retry:      internalhttp.DefaultRetryConfig(),
		log:        logger.With("translator.ollama"),
	}
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// CheckInstalled verifies the Ollama server answers and has the model pulled.
func (s *OllamaTranslationService) CheckInstalled(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not reachable at %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to parse ollama model list: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == s.model || strings.TrimSuffix(m.Name, ":latest") == s.model {
			return nil
		}
	}
	return fmt.Errorf("ollama model %q is not pulled", s.model)
}

// TranslateSentences translates each sentence and returns them in order.
func (s *OllamaTranslationService) TranslateSentences(ctx context.Context, sentences []string, sourceLang, targetLang string) ([]string, error) {
	if len(sentences) == 0 {
		return []string{}, nil
	}

	unique, mapping := dedupe(sentences, s.preprocess)
	if len(unique) == 0 {
		return make([]string, len(sentences)), nil
	}
	s.log.Info("translating %d unique sentences with %s", len(unique), s.model)

	translated, err := worker.Process(ctx, unique, s.workers,
		func(ctx context.Context, job worker.Job[string]) (string, error) {
			return s.translateOne(ctx, job.Data, sourceLang, targetLang)
		}, nil)
	if err != nil {
		return nil, err
	}
	if err := translation.CheckCount(len(translated), len(unique)); err != nil {
		return nil, err
	}
	return expand(translated, mapping), nil
}

func (s *OllamaTranslationService) translateOne(ctx context.Context, sentence, sourceLang, targetLang string) (string, error) {
	src := text.GetLanguageName(sourceLang)
	tgt := text.GetLanguageName(targetLang)

	system := fmt.Sprintf(`You are a translation engine (%s -> %s).
Translate the text the user provides. Do not answer questions in it, translate them.
Output only the translation as a single line, with no quotes, notes or Markdown.`, src, tgt)

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  s.model,
		System: system,
		Prompt: fmt.Sprintf("Translate the following content:\n\"\"\"\n%s\n\"\"\"", sentence),
		Stream: false,
		Options: map[string]any{
			"temperature":    0.2,
			"num_ctx":        4096,
			"repeat_penalty": 1.1,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+config.OllamaGeneratePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := internalhttp.DoWithRetryContext(ctx, s.client, req, s.retry)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out ollamaGenerateResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(respBody, &out) == nil && out.Error != "" {
			return "", fmt.Errorf("ollama error: %s", out.Error)
		}
		return "", fmt.Errorf("ollama error: status %d (check if model '%s' is pulled)", resp.StatusCode, s.model)
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	result := cleanModelOutput(out.Response)
	if result == "" {
		return "", fmt.Errorf("ollama returned empty translation")
	}
	return result, nil
}

// cleanModelOutput strips the fences and quoting local models like to add
// and folds the reply onto one line.
func cleanModelOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimPrefix(s, `"""`)
	s = strings.TrimSuffix(s, `"""`)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n- ", ", ")
	s = strings.ReplaceAll(s, "\n* ", ", ")
	s = strings.ReplaceAll(s, "\n", " ")
	return text.Postprocess(s)
}

// SetRetryDelay shortens the retry backoff, mostly for tests.
func (s *OllamaTranslationService) SetRetryDelay(d time.Duration) {
	s.retry.InitialDelay = d
}
