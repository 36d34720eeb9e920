// Package config holds the constants shared across verbum-lector: endpoints,
// model names, timeouts and pool sizes.
package config

import "time"

// AppName is used for the config directory and window title.
const AppName = "verbum-lector"

// AppID identifies the desktop app to the OS.
const AppID = "io.github.verbum-lector"

// Progress shown for each pipeline stage (0-100%)
const (
	ProgressDetectStart     = 0
	ProgressDetectEnd       = 20
	ProgressTranscribeStart = 20
	ProgressTranscribeEnd   = 70
	ProgressTranslateStart  = 70
	ProgressTranslateEnd    = 100
)

// Segment ids handed out after a bulk load start here.
const FirstSegmentID = 1000

// Worker pool sizes
const (
	WorkersChat   = 8 // OpenAI-compatible chat APIs
	WorkersOllama = 2 // local model, one GPU
)

// ChunkSizeChat is how many sentences go into one chat translation request.
const ChunkSizeChat = 20

// MaxConcurrentProviderCalls caps provider requests in flight across all
// sessions of a pipeline.
const MaxConcurrentProviderCalls = 4

// Retry settings
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelayBase = time.Second
)

// HTTP client settings
const (
	HTTPTimeout             = 2 * time.Minute
	HTTPMaxIdleConns        = 10
	HTTPMaxIdleConnsPerHost = 10
	HTTPIdleConnTimeout     = 90 * time.Second
)

// API endpoints
const (
	DeepSeekAPIEndpoint = "https://api.deepseek.com/v1/chat/completions"
	OpenAIChatEndpoint  = "https://api.openai.com/v1/chat/completions"
	GroqWhisperEndpoint = "https://api.groq.com/openai/v1/audio/transcriptions"
	DefaultOllamaHost   = "http://localhost:11434"
	OllamaGeneratePath  = "/api/generate"
)

// API models
const (
	DeepSeekModel      = "deepseek-chat"
	OpenAIChatModel    = "gpt-4o-mini"
	GroqWhisperModel   = "whisper-large-v3"
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOllamaModel = "qwen2.5:7b"
)

// TranslationDelimiter separates sentences in a batched chat request.
const TranslationDelimiter = "|||SENTENCE|||"

// Temperature settings for LLM calls
const (
	TranslationTemperature = 0.3
	ChatMaxTokens          = 8192
)

// Processing timeouts
const (
	DetectTimeout      = 2 * time.Minute
	TranscribeTimeout  = 10 * time.Minute
	TranslateTimeout   = 5 * time.Minute
	OllamaCheckTimeout = 5 * time.Second
)

// HTTP server defaults
const (
	DefaultServerAddr   = ":8080"
	MaxUploadBytes      = 64 << 20
	ShutdownTimeout     = 10 * time.Second
	WebSocketWriteWait  = 10 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	SessionEventBuffer  = 64
)
