package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"dictate/internal/correct"
)

// Config holds all startup parameters. The pipeline treats it as immutable
// once loaded.
type Config struct {
	APIEndpoint    string  `json:"api_endpoint" env:"DICTATE_API_ENDPOINT"`
	APIKey         string  `json:"api_key" env:"OPENAI_API_KEY"`
	Model          string  `json:"model" env:"DICTATE_MODEL"`
	Language       string  `json:"language" env:"DICTATE_LANGUAGE"`
	Temperature    float64 `json:"temperature"`
	ResponseFormat string  `json:"response_format"`
	Prompt         string  `json:"prompt" env:"DICTATE_PROMPT"`

	Hotkey string `json:"hotkey" env:"DICTATE_HOTKEY"`

	SampleRate     int     `json:"sample_rate"`
	Channels       int     `json:"channels"`
	MinDurationSec float64 `json:"min_duration_sec"`

	ConnectTimeoutSec int  `json:"connect_timeout_sec"`
	RequestTimeoutSec int  `json:"request_timeout_sec"`
	EnableHTTP2       bool `json:"enable_http2"`
	VerifySSL         bool `json:"verify_ssl"`

	Notification bool `json:"notification"`
	Debug        bool `json:"debug" env:"DICTATE_DEBUG"`

	Rules []correct.Rule `json:"regex_rules"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIEndpoint:       "https://api.openai.com/v1/audio/transcriptions",
		Model:             "whisper-1",
		Language:          "zh",
		Temperature:       0,
		ResponseFormat:    "json",
		Hotkey:            "f9",
		SampleRate:        16000,
		Channels:          1,
		MinDurationSec:    0.5,
		ConnectTimeoutSec: 10,
		RequestTimeoutSec: 30,
		EnableHTTP2:       true,
		VerifySSL:         true,
		Notification:      true,
	}
}

// Load layers a JSON config file (optional) over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv loads a local credentials file if present, then applies
// environment overrides. The environment wins over the config file.
func ApplyEnv(cfg *Config) error {
	for _, name := range []string{"env.local", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
			break
		}
	}
	return env.Parse(cfg)
}

// SaveDefault writes a default config JSON to path.
func SaveDefault(path string) error {
	b, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

// Validate checks field ranges before anything is wired up.
func Validate(cfg *Config) error {
	if cfg.APIEndpoint == "" {
		return fmt.Errorf("api_endpoint must not be empty")
	}
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate: %d (must be > 0)", cfg.SampleRate)
	}
	if cfg.Channels != 1 {
		return fmt.Errorf("invalid channels: %d (capture is mono only)", cfg.Channels)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return fmt.Errorf("invalid temperature: %v (allowed 0..1)", cfg.Temperature)
	}
	if cfg.MinDurationSec < 0 {
		return fmt.Errorf("invalid min_duration_sec: %v (must be >= 0)", cfg.MinDurationSec)
	}
	if cfg.ConnectTimeoutSec <= 0 || cfg.RequestTimeoutSec <= 0 {
		return fmt.Errorf("timeouts must be > 0")
	}
	if cfg.Hotkey == "" {
		return fmt.Errorf("hotkey must not be empty")
	}
	return nil
}

// MinDuration returns the minimum take length.
func (c Config) MinDuration() time.Duration {
	return time.Duration(c.MinDurationSec * float64(time.Second))
}

// ConnectTimeout returns the connection-phase deadline.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSec) * time.Second
}

// RequestTimeout returns the whole-request deadline.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
