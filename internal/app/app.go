package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"dictate/internal/capture"
	"dictate/internal/clipboard"
	"dictate/internal/config"
	"dictate/internal/correct"
	"dictate/internal/hotkey"
	"dictate/internal/notify"
	"dictate/internal/session"
	"dictate/internal/transcribe"
	"dictate/internal/tray"
)

// RunRecordMode wires the push-to-talk pipeline and blocks until the user
// quits from the tray or the process receives a signal.
func RunRecordMode(cfg config.Config, logger *slog.Logger) error {
	if cfg.APIKey == "" {
		return errors.New("API key is not set; put OPENAI_API_KEY in env.local or set api_key in the config")
	}

	corrector := correct.New(cfg.Rules, logger.With("component", "correct"))
	httpClient := transcribe.NewHTTPClient(cfg.ConnectTimeout(), cfg.RequestTimeout(), cfg.EnableHTTP2, cfg.VerifySSL)
	client, err := transcribe.New(cfg.APIEndpoint, cfg.APIKey, httpClient, logger.With("component", "transcribe"))
	if err != nil {
		return err
	}
	capturer := capture.New(capture.Config{
		SampleRate:  cfg.SampleRate,
		Channels:    cfg.Channels,
		MinDuration: cfg.MinDuration(),
	}, logger.With("component", "capture"))
	desktop := notify.New(cfg.Notification)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	trayDone := make(chan struct{})
	hotkeyErr := make(chan error, 1)

	go tray.Run(cfg.Hotkey, func(t *tray.Tray) {
		notifier := &statusNotifier{tray: t, desktop: desktop, logger: logger.With("component", "notify")}
		ctrl := session.New(
			capturer,
			&recognizer{client: client, cfg: cfg},
			corrector,
			pasteGateway{},
			notifier,
			logger.With("component", "session"),
		)
		go func() {
			hotkeyErr <- hotkey.Listen(context.Background(), cfg.Hotkey, ctrl.KeyDown, ctrl.KeyUp)
		}()
		logger.Info("ready", "hotkey", cfg.Hotkey, "model", cfg.Model, "rules", corrector.Len())
	}, func() {
		close(trayDone)
	})

	select {
	case <-quit:
		return nil
	case <-trayDone:
		return nil
	case err := <-hotkeyErr:
		return err
	}
}

// RunFileMode transcribes an existing WAV file and writes the corrected text
// next to it (or to outputPath).
func RunFileMode(cfg config.Config, inputPath, outputPath string, logger *slog.Logger) error {
	if cfg.APIKey == "" {
		return errors.New("API key is not set; put OPENAI_API_KEY in env.local or set api_key in the config")
	}

	audio, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	httpClient := transcribe.NewHTTPClient(cfg.ConnectTimeout(), cfg.RequestTimeout(), cfg.EnableHTTP2, cfg.VerifySSL)
	client, err := transcribe.New(cfg.APIEndpoint, cfg.APIKey, httpClient, logger.With("component", "transcribe"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	raw, err := client.Transcribe(ctx, transcribe.Request{
		Audio:          audio,
		Model:          cfg.Model,
		Language:       cfg.Language,
		Temperature:    cfg.Temperature,
		Prompt:         cfg.Prompt,
		ResponseFormat: cfg.ResponseFormat,
	})
	if err != nil {
		return err
	}

	text := correct.New(cfg.Rules, logger.With("component", "correct")).Apply(raw)

	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outputPath = base + ".txt"
	}
	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	logger.Info("transcript written", "path", outputPath, "chars", len(text))
	return nil
}

// recognizer binds the configured recognition parameters to each upload.
type recognizer struct {
	client *transcribe.Client
	cfg    config.Config
}

func (r *recognizer) Transcribe(ctx context.Context, wavPayload []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout())
	defer cancel()
	return r.client.Transcribe(ctx, transcribe.Request{
		Audio:          wavPayload,
		Model:          r.cfg.Model,
		Language:       r.cfg.Language,
		Temperature:    r.cfg.Temperature,
		Prompt:         r.cfg.Prompt,
		ResponseFormat: r.cfg.ResponseFormat,
	})
}

// pasteGateway delivers final text through the clipboard.
type pasteGateway struct{}

func (pasteGateway) Deliver(text string) error {
	return clipboard.Paste(text)
}

// statusNotifier fans session statuses out to the tray, desktop
// notifications, and the log.
type statusNotifier struct {
	tray    *tray.Tray
	desktop *notify.Desktop
	logger  *slog.Logger
}

func (n *statusNotifier) Status(s session.Status, detail string) {
	n.logger.Debug("status", "status", s, "detail", detail)
	switch s {
	case session.StatusRecording:
		n.tray.SetState(tray.StateRecording)
	case session.StatusTranscribing:
		n.tray.SetState(tray.StateTranscribing)
	case session.StatusDelivered:
		n.tray.SetState(tray.StateIdle)
	case session.StatusTooShort:
		n.tray.SetState(tray.StateIdle)
		n.desktop.Notify("Dictate", "Recording too short, ignored")
	case session.StatusEmpty:
		n.tray.SetState(tray.StateIdle)
		n.desktop.Notify("Dictate", "Nothing recognized")
	case session.StatusFailed:
		n.tray.SetState(tray.StateError)
		n.desktop.Notify("Dictate", detail)
	}
}
