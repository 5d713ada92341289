package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Hotkey        HotkeyConfig        `toml:"hotkey"`
	Audio         AudioConfig         `toml:"audio"`
	VAD           VADConfig           `toml:"vad"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Inject        InjectConfig        `toml:"inject"`
	Storage       StorageConfig       `toml:"storage"`
	Web           WebConfig           `toml:"web"`
	Tray          TrayConfig          `toml:"tray"`
}

type HotkeyConfig struct {
	Combo      string `toml:"combo"`
	PushToTalk bool   `toml:"push_to_talk"`
}

type AudioConfig struct {
	SampleRate  int `toml:"sample_rate"`
	MaxRecordMs int `toml:"max_record_ms"`
}

type VADConfig struct {
	EnergyThreshold float32 `toml:"energy_threshold"`
	FreqThreshold   float32 `toml:"freq_threshold"`
	SilenceMs       int     `toml:"silence_ms"`
}

type TranscriptionConfig struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	Language     string `toml:"language"`
	OpenAIAPIKey string `toml:"openai_api_key"`
	ServerURL    string `toml:"server_url"`
}

type InjectConfig struct {
	Mode        string `toml:"mode"` // "clipboard" or "type"
	TypeDelayMs int    `toml:"type_delay_ms"`
}

type StorageConfig struct {
	Enabled bool `toml:"enabled"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

func defaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Combo:      "ctrl+period",
			PushToTalk: false,
		},
		Audio: AudioConfig{
			SampleRate:  16000,
			MaxRecordMs: 30000,
		},
		VAD: VADConfig{
			EnergyThreshold: 0.6,
			FreqThreshold:   100.0,
			SilenceMs:       1500,
		},
		Transcription: TranscriptionConfig{
			Provider:  "whisper-server",
			Model:     "whisper-1",
			Language:  "en",
			ServerURL: "http://127.0.0.1:8080",
		},
		Inject: InjectConfig{
			Mode:        "clipboard",
			TypeDelayMs: 12,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Web: WebConfig{
			Enabled: false,
			Port:    8808,
		},
		Tray: TrayConfig{
			Enabled: false,
		},
	}
}

// Dir returns the voxtype configuration directory, creating it if needed.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, "voxtype")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Path returns the path of the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration, creating the file with defaults on first
// run. Missing keys fall back to their defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(path, cfg); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		return cfg, nil
	}

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
