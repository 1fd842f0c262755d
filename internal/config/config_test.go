package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.SampleRate != 16000 || cfg.Channels != 1 {
		t.Fatalf("unexpected audio defaults: rate=%d chans=%d", cfg.SampleRate, cfg.Channels)
	}
	if cfg.MinDuration() != 500*time.Millisecond {
		t.Fatalf("default min duration %v, want 500ms", cfg.MinDuration())
	}
	if cfg.ConnectTimeout() != 10*time.Second || cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout defaults: %v / %v", cfg.ConnectTimeout(), cfg.RequestTimeout())
	}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"model": "whisper-large",
		"hotkey": "ctrl+shift+space",
		"min_duration_sec": 1.5,
		"regex_rules": [{"pattern": "N8n|N 8 n", "replacement": "n8n"}]
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "whisper-large" {
		t.Fatalf("model %q not overridden", cfg.Model)
	}
	if cfg.Hotkey != "ctrl+shift+space" {
		t.Fatalf("hotkey %q not overridden", cfg.Hotkey)
	}
	if cfg.MinDuration() != 1500*time.Millisecond {
		t.Fatalf("min duration %v, want 1.5s", cfg.MinDuration())
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Replacement != "n8n" {
		t.Fatalf("rules not loaded: %+v", cfg.Rules)
	}
	// Untouched fields keep their defaults.
	if cfg.SampleRate != 16000 {
		t.Fatalf("sample rate clobbered: %d", cfg.SampleRate)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("DICTATE_HOTKEY", "f10")

	cfg := Default()
	cfg.APIKey = "sk-from-file"
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.APIKey != "sk-from-env" {
		t.Fatalf("environment must win, got %q", cfg.APIKey)
	}
	if cfg.Hotkey != "f10" {
		t.Fatalf("hotkey override missing, got %q", cfg.Hotkey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.APIEndpoint = "" },
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.Channels = 2 },
		func(c *Config) { c.Temperature = 1.5 },
		func(c *Config) { c.MinDurationSec = -1 },
		func(c *Config) { c.RequestTimeoutSec = 0 },
		func(c *Config) { c.Hotkey = "" },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := Validate(&cfg); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestSaveDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := SaveDefault(path); err != nil {
		t.Fatalf("SaveDefault failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("saved default must validate: %v", err)
	}
}
