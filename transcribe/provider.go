package transcribe

import (
	"context"
	"fmt"

	"voxtype/audio"
	"voxtype/config"
)

// Provider defines the interface for speech-to-text transcription.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, seg audio.Segment) (string, error)
}

// NewProvider creates a transcription provider based on configuration.
func NewProvider(cfg config.TranscriptionConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai_api_key is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model, cfg.Language), nil
	case "whisper-server":
		if cfg.ServerURL == "" {
			return nil, fmt.Errorf("server_url is required for the whisper-server provider")
		}
		return NewServerProvider(cfg.ServerURL, cfg.Language), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider)
	}
}
