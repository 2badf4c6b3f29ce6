package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/teslashibe/plank-coach/pkg/speech"
)

// TimerState is a snapshot of a Timer.
type TimerState struct {
	StartInstant                   time.Time     `json:"startInstant"`
	Frozen                         time.Duration `json:"frozen"`
	Running                        bool          `json:"running"`
	LastAnnouncementElapsedSeconds int           `json:"lastAnnouncementElapsedSeconds"`
}

// Timer measures hold time with pause and resume. Every method takes the
// current instant so the timer never reads a clock itself.
//
// Resuming recomputes the start instant as now minus the elapsed time frozen
// at pause, so paused intervals never count.
type Timer struct {
	interval time.Duration
	minGap   time.Duration

	start   time.Time
	frozen  time.Duration
	running bool
	high    time.Duration // elapsed never reported below this while running

	lastAnnounced int
}

// NewTimer creates a stopped timer that announces checkpoints every interval,
// never closer together than minGap.
func NewTimer(interval, minGap time.Duration) *Timer {
	return &Timer{interval: interval, minGap: minGap}
}

// Start begins timing at now. It returns false if the timer already started.
func (t *Timer) Start(now time.Time) bool {
	if !t.start.IsZero() {
		return false
	}
	t.start = now
	t.running = true
	t.frozen = 0
	t.high = 0
	t.lastAnnounced = 0
	return true
}

// Started reports whether Start has been called.
func (t *Timer) Started() bool {
	return !t.start.IsZero()
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool {
	return t.running
}

// Elapsed returns the timed duration at now, excluding paused intervals.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	if t.start.IsZero() {
		return 0
	}
	if !t.running {
		return t.frozen
	}
	d := now.Sub(t.start)
	if d < t.high {
		d = t.high
	}
	t.high = d
	return d
}

// Pause freezes the elapsed time. It returns false if the timer was not running.
func (t *Timer) Pause(now time.Time) bool {
	if !t.running {
		return false
	}
	t.frozen = t.Elapsed(now)
	t.running = false
	return true
}

// Resume continues counting from the frozen elapsed time. It returns false if
// the timer was never started or is already running.
func (t *Timer) Resume(now time.Time) bool {
	if t.start.IsZero() || t.running {
		return false
	}
	t.start = now.Add(-t.frozen)
	t.high = t.frozen
	t.running = true
	return true
}

// Checkpoint returns a spoken time checkpoint when the whole elapsed seconds
// at now land on a checkpoint interval and enough time has passed since the
// previous one.
func (t *Timer) Checkpoint(now time.Time) (speech.Announcement, bool) {
	if !t.running || t.interval < time.Second {
		return speech.Announcement{}, false
	}
	secs := int(t.Elapsed(now) / time.Second)
	every := int(t.interval / time.Second)
	gap := int(t.minGap / time.Second)

	if secs <= 0 || secs%every != 0 || secs-t.lastAnnounced < gap || secs == t.lastAnnounced {
		return speech.Announcement{}, false
	}
	t.lastAnnounced = secs
	return speech.Medium(CheckpointText(secs)), true
}

// State returns a snapshot of the timer.
func (t *Timer) State() TimerState {
	return TimerState{
		StartInstant:                   t.start,
		Frozen:                         t.frozen,
		Running:                        t.running,
		LastAnnouncementElapsedSeconds: t.lastAnnounced,
	}
}

// CheckpointText formats the checkpoint announcement for secs of hold time.
func CheckpointText(secs int) string {
	return FormatSpoken(secs) + " completed. Keep holding!"
}

// FormatSpoken renders secs as spoken minutes and seconds, for example
// "1 minute 30 seconds" or "20 seconds".
func FormatSpoken(secs int) string {
	if secs < 0 {
		secs = 0
	}
	minutes, seconds := secs/60, secs%60

	var parts []string
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || minutes == 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	return strings.Join(parts, " ")
}

// FormatClock renders d as MM:SS.
func FormatClock(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
