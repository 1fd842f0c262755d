package notify

import "github.com/gen2brain/beeep"

// Desktop sends transient desktop notifications. Disabled instances swallow
// everything, so call sites never branch.
type Desktop struct {
	enabled bool
}

// New creates a notifier.
func New(enabled bool) *Desktop {
	return &Desktop{enabled: enabled}
}

// Notify shows a desktop notification.
func (d *Desktop) Notify(title, message string) {
	if !d.enabled {
		return
	}
	_ = beeep.Notify(title, message, "")
}
