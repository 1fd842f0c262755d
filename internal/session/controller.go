package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"dictate/internal/capture"
)

// State is the controller's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
)

// Status identifies one lifecycle notification. Every transition emits
// exactly one, and they are delivered in transition order.
type Status int

const (
	StatusRecording Status = iota
	StatusTranscribing
	StatusDelivered
	StatusTooShort
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRecording:
		return "recording"
	case StatusTranscribing:
		return "transcribing"
	case StatusDelivered:
		return "delivered"
	case StatusTooShort:
		return "too_short"
	case StatusEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// Recorder captures microphone audio into one finished take.
type Recorder interface {
	Start() error
	Stop() (capture.Take, error)
}

// Transcriber turns a WAV payload into raw text. An empty string with a nil
// error is a legitimate result.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPayload []byte) (string, error)
}

// Corrector rewrites raw transcripts deterministically.
type Corrector interface {
	Apply(text string) string
}

// Deliverer places final text at the cursor. Never invoked with an empty
// string.
type Deliverer interface {
	Deliver(text string) error
}

// Notifier receives status events for transient user feedback.
type Notifier interface {
	Status(s Status, detail string)
}

// Controller is the state machine tying capture, transcription, correction
// and delivery together. At most one session is ever active; the state guard
// is the only synchronization the pipeline needs, because the hotkey's
// physical down/up semantics already serialize sessions.
type Controller struct {
	rec     Recorder
	tr      Transcriber
	corr    Corrector
	deliver Deliverer
	notify  Notifier
	logger  *slog.Logger

	mu    sync.Mutex
	state State
	id    string
}

// New assembles a controller in the Idle state.
func New(rec Recorder, tr Transcriber, corr Corrector, deliver Deliverer, notify Notifier, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		rec:     rec,
		tr:      tr,
		corr:    corr,
		deliver: deliver,
		notify:  notify,
		logger:  logger,
	}
}

// State reports the current lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// KeyDown starts a session. Down events arriving while a session is active
// (including OS key repeat) are no-ops; the guard here is the debounce.
func (c *Controller) KeyDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return
	}
	if err := c.rec.Start(); err != nil {
		c.logger.Error("capture start failed", "error", err)
		c.notify.Status(StatusFailed, "microphone unavailable")
		return
	}
	c.state = StateRecording
	c.id = uuid.NewString()
	c.logger.Info("recording started", "session", c.id)
	c.notify.Status(StatusRecording, "")
}

// KeyUp stops capture and, if the take is long enough, hands it to
// transcription. The upload runs off the event path so new key events are
// still consumed (and rejected by the guard) while it is in flight.
func (c *Controller) KeyUp() {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return
	}
	take, err := c.rec.Stop()
	if err != nil {
		c.state = StateIdle
		id := c.id
		c.mu.Unlock()
		if errors.Is(err, capture.ErrTooShort) {
			c.logger.Info("take discarded", "session", id, "reason", err)
			c.notify.Status(StatusTooShort, "")
			return
		}
		c.logger.Error("capture stop failed", "session", id, "error", err)
		c.notify.Status(StatusFailed, err.Error())
		return
	}
	c.state = StateTranscribing
	id := c.id
	c.mu.Unlock()

	c.logger.Info("transcribing", "session", id, "duration", take.Duration, "bytes", len(take.WAV))
	c.notify.Status(StatusTranscribing, "")
	go c.finish(id, take)
}

// finish runs the transcribe/correct/deliver tail of a session and always
// returns the controller to Idle, whatever the outcome.
func (c *Controller) finish(id string, take capture.Take) {
	text, err := c.tr.Transcribe(context.Background(), take.WAV)
	if err != nil {
		c.logger.Error("transcription failed", "session", id, "error", err)
		c.terminal(StatusFailed, err.Error())
		return
	}

	final := c.corr.Apply(text)
	if final == "" {
		c.logger.Info("empty transcript", "session", id)
		c.terminal(StatusEmpty, "")
		return
	}

	if err := c.deliver.Deliver(final); err != nil {
		c.logger.Error("delivery failed", "session", id, "error", err)
		c.terminal(StatusFailed, "paste failed")
		return
	}
	c.logger.Info("delivered", "session", id, "chars", len(final))
	c.terminal(StatusDelivered, final)
}

// terminal restores Idle and emits the session's single terminal status.
func (c *Controller) terminal(s Status, detail string) {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	c.notify.Status(s, detail)
}
