package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"voxtype/audio"
)

const openAIEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// OpenAIProvider implements transcription using OpenAI's Whisper API.
type OpenAIProvider struct {
	apiKey   string
	model    string
	language string
	client   *http.Client
}

// NewOpenAIProvider creates a new OpenAI transcription provider.
func NewOpenAIProvider(apiKey, model, language string) *OpenAIProvider {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAIProvider{
		apiKey:   apiKey,
		model:    model,
		language: language,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Transcribe sends the segment to OpenAI's Whisper API.
func (p *OpenAIProvider) Transcribe(ctx context.Context, seg audio.Segment) (string, error) {
	wavData, err := seg.ToWAV()
	if err != nil {
		return "", fmt.Errorf("encoding WAV: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return "", fmt.Errorf("writing audio data: %w", err)
	}
	if err := writer.WriteField("model", p.model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}
	if p.language != "" {
		if err := writer.WriteField("language", p.language); err != nil {
			return "", fmt.Errorf("writing language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing form writer: %w", err)
	}

	slog.Debug("sending audio to openai",
		"bytes", len(wavData),
		"duration", seg.Duration(),
		"model", p.model,
		"language", p.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	return result.Text, nil
}
