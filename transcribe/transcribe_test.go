package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voxtype/audio"
	"voxtype/config"
)

func testSegment() audio.Segment {
	return audio.Segment{
		Samples:    make([]float32, 1600),
		SampleRate: 16000,
	}
}

func TestServerProviderTranscribe(t *testing.T) {
	var gotPath, gotLanguage string
	var gotWAVHeader []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotLanguage = r.FormValue("language")

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			header := make([]byte, 4)
			file.Read(header)
			gotWAVHeader = header
			file.Close()
		}

		json.NewEncoder(w).Encode(map[string]string{"text": " hello world "})
	}))
	defer srv.Close()

	p := NewServerProvider(srv.URL+"/", "en")
	text, err := p.Transcribe(context.Background(), testSegment())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if text != " hello world " {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/inference" {
		t.Errorf("path = %q, want /inference", gotPath)
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q, want en", gotLanguage)
	}
	if !bytes.Equal(gotWAVHeader, []byte("RIFF")) {
		t.Errorf("upload does not start with a RIFF header: %q", gotWAVHeader)
	}
}

func TestServerProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewServerProvider(srv.URL, "")
	if _, err := p.Transcribe(context.Background(), testSegment()); err == nil {
		t.Fatal("expected error on 500 response")
	} else if !strings.Contains(err.Error(), "500") {
		t.Errorf("error does not mention status: %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TranscriptionConfig
		want    string
		wantErr bool
	}{
		{
			name: "whisper-server",
			cfg:  config.TranscriptionConfig{Provider: "whisper-server", ServerURL: "http://127.0.0.1:8080"},
			want: "whisper-server",
		},
		{
			name: "openai",
			cfg:  config.TranscriptionConfig{Provider: "openai", OpenAIAPIKey: "sk-test"},
			want: "openai",
		},
		{
			name:    "openai without key",
			cfg:     config.TranscriptionConfig{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "whisper-server without url",
			cfg:     config.TranscriptionConfig{Provider: "whisper-server"},
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     config.TranscriptionConfig{Provider: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}
