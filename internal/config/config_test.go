package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Errorf("expected default channels 1, got %d", cfg.Audio.Channels)
	}
	if cfg.Audio.Backend != "portaudio" {
		t.Errorf("expected default backend portaudio, got %q", cfg.Audio.Backend)
	}
	if cfg.Transcription.Model != "whisper-1" {
		t.Errorf("expected default transcription model whisper-1, got %q", cfg.Transcription.Model)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := loadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("expected defaults for missing file, got rate %d", cfg.Audio.SampleRate)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := map[string]any{
		"audio": map[string]any{
			"sample_rate": 48000,
			"channels":    2,
			"backend":     "miniaudio",
		},
		"log_level": "debug",
	}
	data, _ := json.Marshal(raw)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}

	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("expected file rate 48000, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Backend != "miniaudio" {
		t.Errorf("expected file backend miniaudio, got %q", cfg.Audio.Backend)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected file log level debug, got %q", cfg.LogLevel)
	}
	// Untouched sections keep their defaults.
	if cfg.Transcription.Endpoint == "" {
		t.Error("expected transcription defaults to survive overlay")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadFrom(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
