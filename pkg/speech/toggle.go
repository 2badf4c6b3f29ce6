package speech

import (
	"context"
	"sync/atomic"
)

// Toggle wraps a Speaker with an on/off switch. While disabled,
// announcements are dropped silently.
type Toggle struct {
	next    Speaker
	enabled atomic.Bool
}

// NewToggle returns an enabled Toggle around next.
func NewToggle(next Speaker) *Toggle {
	t := &Toggle{next: next}
	t.enabled.Store(true)
	return t
}

// Speak forwards a to the wrapped speaker when enabled.
func (t *Toggle) Speak(ctx context.Context, a Announcement) error {
	if a.Text == "" {
		return ErrEmptyAnnouncement
	}
	if !t.enabled.Load() {
		return nil
	}
	return t.next.Speak(ctx, a)
}

// SetEnabled turns voice output on or off.
func (t *Toggle) SetEnabled(on bool) {
	t.enabled.Store(on)
}

// Enabled reports whether voice output is on.
func (t *Toggle) Enabled() bool {
	return t.enabled.Load()
}

// Flip inverts the switch and returns the new state.
func (t *Toggle) Flip() bool {
	for {
		cur := t.enabled.Load()
		if t.enabled.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

var _ Speaker = (*Toggle)(nil)
