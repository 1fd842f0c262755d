package tray

import (
	"sync"
	"time"

	"github.com/getlantern/systray"
)

// State mirrors the session lifecycle for the tray indicator.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateError
)

func title(s State) string {
	switch s {
	case StateRecording:
		return "● Recording"
	case StateTranscribing:
		return "… Transcribing"
	case StateError:
		return "✕ Error"
	default:
		return "Dictate"
	}
}

// Tray drives the systray indicator. An error state clears itself back to
// idle after a few seconds; any newer state supersedes the pending clear, so
// a later session can never be stomped by an earlier session's timer.
type Tray struct {
	mu           sync.Mutex
	clear        *time.Timer
	errorTimeout time.Duration
}

// Run starts the systray loop and blocks until quit. onReady receives the
// live tray; onExit runs when the user quits from the menu.
func Run(hotkeySpec string, onReady func(*Tray), onExit func()) {
	systray.Run(func() {
		t := &Tray{errorTimeout: 4 * time.Second}
		systray.SetTitle(title(StateIdle))
		systray.SetTooltip("Hold " + hotkeySpec + " to dictate")
		mQuit := systray.AddMenuItem("Quit", "Quit dictate")
		go func() {
			<-mQuit.ClickedCh
			systray.Quit()
		}()
		onReady(t)
	}, onExit)
}

// SetState updates the tray indicator.
func (t *Tray) SetState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clear != nil {
		t.clear.Stop()
		t.clear = nil
	}
	systray.SetTitle(title(s))
	if s == StateError {
		t.clear = time.AfterFunc(t.errorTimeout, func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.clear = nil
			systray.SetTitle(title(StateIdle))
		})
	}
}
