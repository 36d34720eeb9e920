package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"verbum-lector/internal/config"
	internalhttp "verbum-lector/internal/http"
	"verbum-lector/internal/logger"
	"verbum-lector/internal/text"
	"verbum-lector/internal/translation"
	"verbum-lector/internal/worker"
)

// ChatOptions configures a ChatTranslationService.
type ChatOptions struct {
	Name       string // provider name for logs and errors
	APIKey     string
	BaseURL    string // OpenAI-compatible API root, e.g. https://api.deepseek.com/v1
	Model      string
	Workers    int
	ChunkSize  int
	Preprocess bool
	HTTPClient *http.Client
	RetryDelay time.Duration
}

// ChatTranslationService translates sentences through an OpenAI-compatible
// chat completions API. Sentences are deduplicated, batched with a delimiter
// and translated in parallel.
type ChatTranslationService struct {
	opts   ChatOptions
	client *openai.Client
	log    *logger.Logger
}

// NewChatTranslationService creates a chat translation service.
func NewChatTranslationService(opts ChatOptions) *ChatTranslationService {
	if opts.Workers <= 0 {
		opts.Workers = config.WorkersChat
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = config.ChunkSizeChat
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = internalhttp.ChatClient
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = config.DefaultRetryDelayBase
	}
	if opts.Name == "" {
		opts.Name = "chat"
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	cfg.HTTPClient = opts.HTTPClient

	return &ChatTranslationService{
		opts:   opts,
		client: openai.NewClientWithConfig(cfg),
		log:    logger.With("translator." + opts.Name),
	}
}

// NewDeepSeekTranslationService uses the DeepSeek chat API.
func NewDeepSeekTranslationService(apiKey string, preprocess bool) *ChatTranslationService {
	return NewChatTranslationService(ChatOptions{
		Name:       "deepseek",
		APIKey:     apiKey,
		BaseURL:    strings.TrimSuffix(config.DeepSeekAPIEndpoint, "/chat/completions"),
		Model:      config.DeepSeekModel,
		Preprocess: preprocess,
	})
}

// NewOpenAITranslationService uses the OpenAI chat API.
func NewOpenAITranslationService(apiKey string, preprocess bool) *ChatTranslationService {
	return NewChatTranslationService(ChatOptions{
		Name:       "openai",
		APIKey:     apiKey,
		BaseURL:    strings.TrimSuffix(config.OpenAIChatEndpoint, "/chat/completions"),
		Model:      config.OpenAIChatModel,
		Preprocess: preprocess,
	})
}

// CheckAPIKey validates that the API key is set
func (s *ChatTranslationService) CheckAPIKey() error {
	if s.opts.APIKey == "" {
		return fmt.Errorf("%s API key is not configured", s.opts.Name)
	}
	return nil
}

// TranslateSentences translates sentences and returns one translation per
// input, in order. Blank sentences translate to "".
func (s *ChatTranslationService) TranslateSentences(ctx context.Context, sentences []string, sourceLang, targetLang string) ([]string, error) {
	if err := s.CheckAPIKey(); err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return []string{}, nil
	}

	unique, mapping := dedupe(sentences, s.opts.Preprocess)
	total := len(sentences)
	if len(unique) == 0 {
		return make([]string, total), nil
	}
	s.log.Info("%d sentences → %d unique texts, %d workers", total, len(unique), min(s.opts.Workers, len(unique)))

	batches := translation.Batches(unique, s.opts.ChunkSize)
	results, err := worker.Process(ctx, batches, s.opts.Workers,
		func(ctx context.Context, job worker.Job[translation.BatchJob]) ([]string, error) {
			out, err := s.translateBatchWithRetry(ctx, job.Data.Texts, sourceLang, targetLang)
			if err != nil {
				return nil, fmt.Errorf("%s translation batch %d failed: %w", s.opts.Name, job.Data.Index, err)
			}
			return out, nil
		},
		func(completed, total int) {
			s.log.Debug("batches %d/%d", completed, total)
		})
	if err != nil {
		return nil, err
	}

	translated, err := translation.Flatten(results, len(unique))
	if err != nil {
		return nil, err
	}
	return expand(translated, mapping), nil
}

func (s *ChatTranslationService) translateBatchWithRetry(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	return internalhttp.RetryWithContext(ctx, func() ([]string, error) {
		out, err := s.translateBatch(ctx, texts, sourceLang, targetLang)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && !retryableStatus(apiErr.HTTPStatusCode) {
			return nil, internalhttp.Permanent(err)
		}
		return out, err
	}, config.DefaultMaxRetries, s.opts.RetryDelay)
}

func (s *ChatTranslationService) translateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	srcName := text.GetLanguageName(sourceLang)
	tgtName := text.GetLanguageName(targetLang)
	delim := config.TranslationDelimiter

	prompt := fmt.Sprintf(`Translate the following sentences from %s to %s.
The sentences are separated by "%s".
Return ONLY the translations, separated by "%s", in the same order and the same count.
Keep each translation faithful to the meaning and register of the original.
Do not add any explanations or extra text.

%s`, srcName, tgtName, delim, delim, strings.Join(texts, "\n"+delim+"\n"))

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: config.TranslationTemperature,
		MaxTokens:   config.ChatMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s API request failed: %w", s.opts.Name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", s.opts.Name)
	}

	parts := text.SplitByDelimiter(resp.Choices[0].Message.Content, delim)
	if err := translation.CheckCount(len(parts), len(texts)); err != nil {
		return nil, err
	}
	for i := range parts {
		parts[i] = text.Postprocess(parts[i])
	}
	return parts, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500 || status == 0
}

// dedupe returns the distinct non-blank sentences and, for each input, the
// index of its unique text or -1 when blank.
func dedupe(sentences []string, preprocess bool) ([]string, []int) {
	index := make(map[string]int)
	var unique []string
	mapping := make([]int, len(sentences))

	for i, s := range sentences {
		t := strings.TrimSpace(s)
		if preprocess {
			t = text.Preprocess(t)
		}
		if t == "" {
			mapping[i] = -1
			continue
		}
		if idx, ok := index[t]; ok {
			mapping[i] = idx
			continue
		}
		index[t] = len(unique)
		mapping[i] = len(unique)
		unique = append(unique, t)
	}
	return unique, mapping
}

func expand(translated []string, mapping []int) []string {
	out := make([]string, len(mapping))
	for i, idx := range mapping {
		if idx >= 0 && idx < len(translated) {
			out[i] = translated[idx]
		}
	}
	return out
}
