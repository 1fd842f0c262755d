package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/gordonklaus/portaudio"
)

var (
	// ErrDeviceUnavailable means no usable audio input device could be opened.
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
	// ErrTooShort means the take was below the configured minimum duration.
	// It is a policy rejection, not a device fault.
	ErrTooShort = errors.New("recording too short")
)

// Config holds capture parameters.
type Config struct {
	SampleRate  int
	Channels    int
	MinDuration time.Duration

	// ReadyCue fires once the stream has demonstrably delivered samples,
	// after the device warm-up. Nil selects the default beep tone.
	ReadyCue func()
}

// Take is one finished recording.
type Take struct {
	WAV      []byte
	Samples  int
	Duration time.Duration
}

// Capturer owns a PortAudio input stream and buffers samples in memory.
// The WAV payload is only built at Stop, so a caller can never observe a
// speculative or truncated header.
type Capturer struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	recording bool
	samples   []int16
	stop      chan struct{}
	done      chan struct{}
}

// New creates a capturer. The zero MinDuration disables the length policy.
func New(cfg Config, logger *slog.Logger) *Capturer {
	if cfg.ReadyCue == nil {
		cfg.ReadyCue = defaultCue
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{cfg: cfg, logger: logger}
}

// defaultCue plays a short 1 kHz tone so the user knows the microphone is
// actually delivering samples. Opening the device takes a noticeable moment;
// speech before the cue may be lost.
func defaultCue() {
	_ = beeep.Beep(1000, 200)
}

// Start opens the input stream and begins buffering. The device is opened
// synchronously so an unusable microphone surfaces here, not mid-take.
func (c *Capturer) Start() error {
	c.mu.Lock()
	if c.recording {
		c.mu.Unlock()
		return fmt.Errorf("capture already running")
	}
	c.recording = true
	c.samples = nil
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		c.reset()
		return fmt.Errorf("%w: portaudio init: %v", ErrDeviceUnavailable, err)
	}
	in := make([]int16, 1024)
	stream, err := portaudio.OpenDefaultStream(c.cfg.Channels, 0, float64(c.cfg.SampleRate), len(in), in)
	if err != nil {
		_ = portaudio.Terminate()
		c.reset()
		return fmt.Errorf("%w: open stream: %v", ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		c.reset()
		return fmt.Errorf("%w: start stream: %v", ErrDeviceUnavailable, err)
	}

	go c.recordLoop(stream, in)
	go c.waitReady()
	return nil
}

// Stop halts the stream and returns the finished WAV payload. Ownership of
// the sample buffer transfers out; the capturer keeps no reference.
func (c *Capturer) Stop() (Take, error) {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return Take{}, fmt.Errorf("capture not running")
	}
	c.recording = false
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	<-done

	c.mu.Lock()
	samples := c.samples
	c.samples = nil
	c.mu.Unlock()

	dur := Duration(len(samples), c.cfg.SampleRate)
	if dur < c.cfg.MinDuration {
		return Take{}, fmt.Errorf("captured %v: %w", dur.Round(10*time.Millisecond), ErrTooShort)
	}

	payload, err := EncodeWAV(samples, c.cfg.SampleRate, c.cfg.Channels)
	if err != nil {
		return Take{}, fmt.Errorf("encode wav: %w", err)
	}
	return Take{WAV: payload, Samples: len(samples), Duration: dur}, nil
}

func (c *Capturer) recordLoop(stream *portaudio.Stream, in []int16) {
	defer close(c.done)
	defer func() {
		_ = stream.Stop()
		_ = stream.Close()
		_ = portaudio.Terminate()
	}()

	for {
		select {
		case <-c.stop:
			return
		default:
		}
		if err := stream.Read(); err != nil {
			// Overflow on a slow scheduler tick is routine; keep reading.
			c.logger.Debug("stream read error", "error", err)
			continue
		}
		chunk := make([]int16, len(in))
		copy(chunk, in)
		c.mu.Lock()
		c.samples = append(c.samples, chunk...)
		c.mu.Unlock()
	}
}

// waitReady polls the buffer until roughly a quarter second of audio has
// arrived, then fires the ready cue. Gives up quietly if the take ends first.
func (c *Capturer) waitReady() {
	warmup := c.cfg.SampleRate / 4 * c.cfg.Channels
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-deadline:
			return
		case <-tick.C:
			if c.buffered() > warmup {
				c.cfg.ReadyCue()
				return
			}
		}
	}
}

func (c *Capturer) buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

func (c *Capturer) reset() {
	c.mu.Lock()
	c.recording = false
	c.mu.Unlock()
}

// Duration converts a buffered sample count to captured audio time. This is
// the canonical length measure: it is exactly what the WAV header commits
// to, and it does not drift with scheduler or disk timing.
func Duration(sampleCount, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(sampleCount) * time.Second / time.Duration(sampleRate)
}
