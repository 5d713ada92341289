package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voxtype/audio"
)

// ServerProvider transcribes against a local whisper.cpp server
// (`whisper-server`), which accepts a WAV upload on POST /inference.
type ServerProvider struct {
	baseURL  string
	language string
	client   *http.Client
}

// NewServerProvider creates a whisper.cpp server provider.
func NewServerProvider(baseURL, language string) *ServerProvider {
	return &ServerProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// Name returns the provider name.
func (p *ServerProvider) Name() string {
	return "whisper-server"
}

// Transcribe uploads the segment and returns the recognized text.
func (p *ServerProvider) Transcribe(ctx context.Context, seg audio.Segment) (string, error) {
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
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("writing response_format field: %w", err)
	}
	if p.language != "" {
		if err := writer.WriteField("language", p.language); err != nil {
			return "", fmt.Errorf("writing language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing form writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/inference", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
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
		return "", fmt.Errorf("whisper-server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	return result.Text, nil
}
