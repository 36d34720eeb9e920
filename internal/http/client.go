// Package http holds the pooled clients and retry helpers shared by the
// provider services.
package http

import (
	"net/http"
	"time"

	"verbum-lector/internal/config"
)

// Provider clients. Each keeps its own idle pool so a slow transcription
// upload never starves translation requests of connections.
var (
	// ChatClient backs the OpenAI-compatible translation providers.
	ChatClient = pooled(config.HTTPTimeout, config.HTTPMaxIdleConnsPerHost)

	// TranscriptionClient uploads whole audio files and waits longer.
	TranscriptionClient = pooled(config.TranscribeTimeout, config.HTTPMaxIdleConnsPerHost)

	// OllamaClient talks to a model server on the local machine.
	OllamaClient = pooled(config.TranslateTimeout, 4)
)

func pooled(timeout time.Duration, perHost int) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        config.HTTPMaxIdleConns,
			MaxIdleConnsPerHost: perHost,
			IdleConnTimeout:     config.HTTPIdleConnTimeout,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
