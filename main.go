package main

import (
	"fmt"
	"log/slog"
	"os"

	"dictate/internal/app"
	"dictate/internal/config"
)

func main() {
	fv := config.ParseFlags()

	if fv.InitConfig {
		path := fv.ConfigPath
		if path == "" {
			path = "config.json"
		}
		if err := config.SaveDefault(path); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote default config to %s\n", path)
		return
	}

	cfg, err := config.Load(fv.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "apply environment: %v\n", err)
		os.Exit(1)
	}
	fv.Apply(&cfg)
	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if fv.InputPath != "" {
		err = app.RunFileMode(cfg, fv.InputPath, fv.OutputPath, logger)
	} else {
		err = app.RunRecordMode(cfg, logger)
	}
	if err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}
