package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}

	if cfg.Hotkey.Combo != "ctrl+period" {
		t.Errorf("default combo = %q", cfg.Hotkey.Combo)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.MaxRecordMs != 30000 {
		t.Errorf("default audio = %+v", cfg.Audio)
	}
	if cfg.VAD.SilenceMs != 1500 {
		t.Errorf("default silence_ms = %d", cfg.VAD.SilenceMs)
	}
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[hotkey]
combo = "super+v"
push_to_talk = true

[vad]
silence_ms = 800
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Hotkey.Combo != "super+v" || !cfg.Hotkey.PushToTalk {
		t.Errorf("hotkey = %+v", cfg.Hotkey)
	}
	if cfg.VAD.SilenceMs != 800 {
		t.Errorf("silence_ms = %d, want 800", cfg.VAD.SilenceMs)
	}
	// Unset sections keep their defaults.
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample_rate = %d, want default 16000", cfg.Audio.SampleRate)
	}
	if cfg.Inject.Mode != "clipboard" {
		t.Errorf("inject mode = %q, want default clipboard", cfg.Inject.Mode)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	first, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	if *first != *second {
		t.Errorf("reloaded config differs:\n%+v\n%+v", first, second)
	}
}
