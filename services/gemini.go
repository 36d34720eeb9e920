package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"verbum-lector/internal/config"
	"verbum-lector/internal/datauri"
	internalhttp "verbum-lector/internal/http"
	"verbum-lector/internal/logger"
	"verbum-lector/internal/text"
	"verbum-lector/internal/translation"
	"verbum-lector/models"
)

// contentGenerator is the part of genai.Models the service uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiService detects, transcribes and translates with a Gemini model.
// Audio is sent inline and every answer is constrained by a JSON schema.
type GeminiService struct {
	models     contentGenerator
	model      string
	preprocess bool
	log        *logger.Logger
}

// NewGeminiService creates a Gemini API client.
func NewGeminiService(ctx context.Context, apiKey, model string, preprocess bool) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: internalhttp.TranscriptionClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiService(client.Models, model, preprocess), nil
}

func newGeminiService(models contentGenerator, model string, preprocess bool) *GeminiService {
	if model == "" {
		model = config.DefaultGeminiModel
	}
	return &GeminiService{
		models:     models,
		model:      model,
		preprocess: preprocess,
		log:        logger.With("gemini"),
	}
}

var detectSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"languageCode": {Type: genai.TypeString, Description: "ISO 639-1 code of the spoken language, e.g. vi or ko"},
		"confidence":   {Type: genai.TypeNumber, Description: "confidence between 0 and 1"},
	},
	Required: []string{"languageCode", "confidence"},
}

var transcriptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"transcript": {Type: genai.TypeString},
		"sentences":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"transcript", "sentences"},
}

var translateSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"translatedSentences": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"translatedSentences"},
}

// DetectLanguage asks the model which language is spoken in the audio.
func (s *GeminiService) DetectLanguage(ctx context.Context, audioDataURI string) (models.LanguageDetection, error) {
	audio, err := datauri.ValidateMedia(audioDataURI)
	if err != nil {
		return models.LanguageDetection{}, err
	}

	var out models.LanguageDetection
	prompt := `Identify the spoken language of this recording.
Answer with its ISO 639-1 code in "languageCode" and your confidence from 0 to 1 in "confidence".`
	if err := s.generate(ctx, detectSchema, &out, genai.NewPartFromText(prompt), genai.NewPartFromBytes(audio.Data, audio.MIMEType)); err != nil {
		return models.LanguageDetection{}, fmt.Errorf("language detection failed: %w", err)
	}
	s.log.Info("detected %s (%.2f)", out.LanguageCode, out.Confidence)
	return out, nil
}

// TranscribeAudio transcribes the recording and splits it into sentences.
func (s *GeminiService) TranscribeAudio(ctx context.Context, audioDataURI string) (models.Transcript, error) {
	audio, err := datauri.ValidateMedia(audioDataURI)
	if err != nil {
		return models.Transcript{}, err
	}

	var out models.Transcript
	prompt := `Transcribe this recording verbatim in its original language.
Put the full text in "transcript" and the same text split into sentences, in order, in "sentences".`
	if err := s.generate(ctx, transcriptSchema, &out, genai.NewPartFromText(prompt), genai.NewPartFromBytes(audio.Data, audio.MIMEType)); err != nil {
		return models.Transcript{}, fmt.Errorf("transcription failed: %w", err)
	}
	s.log.Info("transcribed %d sentences", len(out.Sentences))
	return out, nil
}

// TranslateSentences translates sentences in one request.
func (s *GeminiService) TranslateSentences(ctx context.Context, sentences []string, sourceLang, targetLang string) ([]string, error) {
	if len(sentences) == 0 {
		return []string{}, nil
	}

	unique, mapping := dedupe(sentences, s.preprocess)
	if len(unique) == 0 {
		return make([]string, len(sentences)), nil
	}

	payload, err := json.Marshal(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sentences: %w", err)
	}
	prompt := fmt.Sprintf(`Translate each sentence of this JSON array from %s to %s.
Return "translatedSentences" with exactly %d entries, one per input sentence, in the same order.

%s`, text.GetLanguageName(sourceLang), text.GetLanguageName(targetLang), len(unique), payload)

	var out struct {
		TranslatedSentences []string `json:"translatedSentences"`
	}
	if err := s.generate(ctx, translateSchema, &out, genai.NewPartFromText(prompt)); err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if err := translation.CheckCount(len(out.TranslatedSentences), len(unique)); err != nil {
		return nil, err
	}
	for i := range out.TranslatedSentences {
		out.TranslatedSentences[i] = text.Postprocess(out.TranslatedSentences[i])
	}
	return expand(out.TranslatedSentences, mapping), nil
}

func (s *GeminiService) generate(ctx context.Context, schema *genai.Schema, out any, parts ...*genai.Part) error {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr[float32](0.2),
	}

	result, err := s.models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return err
	}
	raw := strings.TrimSpace(result.Text())
	if raw == "" {
		return fmt.Errorf("empty response from %s", s.model)
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "```"), "```")
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to parse model output: %w", err)
	}
	return nil
}
