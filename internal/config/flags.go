package config

import "flag"

// FlagValues holds parsed command-line values. Only flags the user actually
// passed override the loaded config.
type FlagValues struct {
	ConfigPath string
	InitConfig bool
	InputPath  string
	OutputPath string

	set map[string]bool

	apiEndpoint string
	apiKey      string
	model       string
	language    string
	prompt      string
	hotkey      string
	minDuration float64
	notify      bool
	debug       bool
}

// ParseFlags defines and parses the command line.
func ParseFlags() *FlagValues {
	fv := &FlagValues{set: make(map[string]bool)}

	flag.StringVar(&fv.ConfigPath, "config", "", "path to config JSON")
	flag.BoolVar(&fv.InitConfig, "init-config", false, "write a default config.json and exit")
	flag.StringVar(&fv.InputPath, "file", "", "transcribe an existing WAV file instead of recording")
	flag.StringVar(&fv.OutputPath, "o", "", "output path for -file mode (default <input>.txt)")

	flag.StringVar(&fv.apiEndpoint, "endpoint", "", "transcription endpoint URL")
	flag.StringVar(&fv.apiKey, "key", "", "API key")
	flag.StringVar(&fv.model, "model", "", "model identifier")
	flag.StringVar(&fv.language, "language", "", "language hint")
	flag.StringVar(&fv.prompt, "prompt", "", "vocabulary prompt")
	flag.StringVar(&fv.hotkey, "hotkey", "", "push-to-talk key, e.g. f9 or ctrl+shift+space")
	flag.Float64Var(&fv.minDuration, "min-duration", 0, "minimum recording length in seconds")
	flag.BoolVar(&fv.notify, "notify", true, "show desktop notifications")
	flag.BoolVar(&fv.debug, "debug", false, "debug logging")

	flag.Parse()
	flag.Visit(func(f *flag.Flag) { fv.set[f.Name] = true })
	return fv
}

// Apply overlays the explicitly-set flags onto cfg.
func (fv *FlagValues) Apply(cfg *Config) {
	if fv.set["endpoint"] {
		cfg.APIEndpoint = fv.apiEndpoint
	}
	if fv.set["key"] {
		cfg.APIKey = fv.apiKey
	}
	if fv.set["model"] {
		cfg.Model = fv.model
	}
	if fv.set["language"] {
		cfg.Language = fv.language
	}
	if fv.set["prompt"] {
		cfg.Prompt = fv.prompt
	}
	if fv.set["hotkey"] {
		cfg.Hotkey = fv.hotkey
	}
	if fv.set["min-duration"] {
		cfg.MinDurationSec = fv.minDuration
	}
	if fv.set["notify"] {
		cfg.Notification = fv.notify
	}
	if fv.set["debug"] {
		cfg.Debug = fv.debug
	}
}
