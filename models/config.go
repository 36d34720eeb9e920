package models

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"verbum-lector/internal/config"
)

// Provider names accepted in Config.
const (
	ProviderGemini   = "gemini"
	ProviderGroq     = "groq"
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// Config holds application settings shared by the desktop app and the server.
type Config struct {
	// Provider selection (gemini, groq)
	TranscriptionProvider string `json:"transcription_provider"`
	// Provider selection (gemini, groq); empty means same as transcription
	DetectionProvider string `json:"detection_provider"`
	// Provider selection (gemini, deepseek, openai, ollama)
	TranslationProvider string `json:"translation_provider"`

	// Gemini API settings (detection, transcription and translation)
	GeminiAPIKey string `json:"gemini_api_key"`
	GeminiModel  string `json:"gemini_model"`

	// Groq API settings (Whisper transcription)
	GroqAPIKey string `json:"groq_api_key"`

	// OpenAI-compatible chat translation
	DeepSeekKey string `json:"deepseek_key"`
	OpenAIKey   string `json:"openai_key"`

	// Ollama settings (local translation)
	OllamaHost  string `json:"ollama_host"`
	OllamaModel string `json:"ollama_model"`

	// Editor settings
	LineBreakPolicy     string `json:"line_break_policy"` // reject, accept, split
	FirstSegmentID      int    `json:"first_segment_id"`
	PreprocessSentences bool   `json:"preprocess_sentences"`

	// Server settings
	ServerAddr string `json:"server_addr"`

	// Logging
	LogLevel  string `json:"log_level"`  // debug, info, warn, error
	LogFormat string `json:"log_format"` // text, json
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		TranscriptionProvider: ProviderGemini,
		TranslationProvider:   ProviderGemini,

		GeminiModel: config.DefaultGeminiModel,

		OllamaHost:  config.DefaultOllamaHost,
		OllamaModel: config.DefaultOllamaModel,

		LineBreakPolicy:     "reject",
		FirstSegmentID:      config.FirstSegmentID,
		PreprocessSentences: false,

		ServerAddr: config.DefaultServerAddr,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// ConfigPath returns where the config file lives. VERBUM_CONFIG overrides it.
func (c *Config) ConfigPath() string {
	if p := os.Getenv("VERBUM_CONFIG"); p != "" {
		return p
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", config.AppName, "config.json")
}

// LoadConfig reads the config file, then a .env file in the working
// directory, then environment overrides.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.loadFile(cfg.ConfigPath()); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg.ApplyEnv()

	return cfg, nil
}

// LoadConfigFrom reads the config file at path without consulting the
// environment. A missing file yields the defaults.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, c)
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	setString(&c.GeminiAPIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	setString(&c.GroqAPIKey, "GROQ_API_KEY")
	setString(&c.DeepSeekKey, "DEEPSEEK_API_KEY")
	setString(&c.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.OllamaHost, "OLLAMA_HOST")
	setString(&c.OllamaModel, "OLLAMA_MODEL")
	setString(&c.GeminiModel, "VERBUM_GEMINI_MODEL")
	setString(&c.TranscriptionProvider, "VERBUM_TRANSCRIPTION_PROVIDER")
	setString(&c.DetectionProvider, "VERBUM_DETECTION_PROVIDER")
	setString(&c.TranslationProvider, "VERBUM_TRANSLATION_PROVIDER")
	setString(&c.LineBreakPolicy, "VERBUM_LINE_BREAKS")
	setString(&c.ServerAddr, "VERBUM_ADDR")
	setString(&c.LogLevel, "VERBUM_LOG_LEVEL")
	setString(&c.LogFormat, "VERBUM_LOG_FORMAT")

	if v := os.Getenv("VERBUM_FIRST_SEGMENT_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.FirstSegmentID = n
		}
	}
	if v := os.Getenv("VERBUM_PREPROCESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.PreprocessSentences = b
		}
	}
}

// EffectiveDetectionProvider returns the provider used for language detection.
func (c *Config) EffectiveDetectionProvider() string {
	if c.DetectionProvider != "" {
		return c.DetectionProvider
	}
	return c.TranscriptionProvider
}

// Save writes the config file, creating its directory.
func (c *Config) Save() error {
	return c.SaveTo(c.ConfigPath())
}

// SaveTo writes the config to path.
func (c *Config) SaveTo(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600) // holds API keys
}
