package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	Audio         AudioConfig     `json:"audio"`
	Transcription ProviderConfig  `json:"transcription"`
	Completion    ProviderConfig  `json:"completion"`
	Dictation     DictationConfig `json:"dictation"`
	LogLevel      string          `json:"log_level"`
}

type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BufferSize int    `json:"buffer_size"`
	Backend    string `json:"backend"` // "portaudio" or "miniaudio"
}

type ProviderConfig struct {
	Endpoint       string `json:"endpoint"`
	Model          string `json:"model"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`
}

type DictationConfig struct {
	AdaptTone bool   `json:"adapt_tone"`
	Language  string `json:"language"` // "auto", "en", etc.
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	return loadFrom(configPath())
}

func loadFrom(path string) (*Config, error) {
	cfg := Defaults()

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			BufferSize: 4096,
			Backend:    "portaudio",
		},
		Transcription: ProviderConfig{
			Endpoint:       "https://api.openai.com/v1/audio/transcriptions",
			Model:          "whisper-1",
			TimeoutSeconds: 30,
			MaxRetries:     2,
		},
		Completion: ProviderConfig{
			Endpoint:       "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 30,
			MaxRetries:     2,
		},
		Dictation: DictationConfig{
			AdaptTone: false,
			Language:  "auto",
		},
		LogLevel: "info",
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// API keys live in here
	return os.WriteFile(path, data, 0600)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "flowwhispr", "config.json")
}
