package session

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/teslashibe/plank-coach/pkg/plank"
	"github.com/teslashibe/plank-coach/pkg/speech"
)

// FeedbackThrottle turns a stream of analysis results into occasional spoken
// corrections. Only results below the good-form score that carry feedback
// are eligible, and at most one is spoken per interval.
type FeedbackThrottle struct {
	interval time.Duration
	good     int

	last    time.Time
	spoken  bool
	dropped int
}

// NewFeedbackThrottle creates a throttle speaking at most once per interval
// for results scoring below good.
func NewFeedbackThrottle(interval time.Duration, good int) *FeedbackThrottle {
	return &FeedbackThrottle{interval: interval, good: good}
}

// Offer returns the correction to speak for res at now, if any. The most
// critical feedback entry is spoken.
func (t *FeedbackThrottle) Offer(res plank.AnalysisResult, now time.Time) (speech.Announcement, bool) {
	if len(res.Feedback) == 0 || res.OverallScore >= t.good {
		return speech.Announcement{}, false
	}
	if t.spoken && now.Sub(t.last) < t.interval {
		t.dropped++
		return speech.Announcement{}, false
	}
	t.last = now
	t.spoken = true
	return speech.Medium(res.TopFeedback()), true
}

// Dropped returns how many eligible corrections were suppressed.
func (t *FeedbackThrottle) Dropped() int {
	return t.dropped
}

// Reset forgets the last spoken correction.
func (t *FeedbackThrottle) Reset() {
	t.last = time.Time{}
	t.spoken = false
	t.dropped = 0
}

// Gate limits how often frames are analyzed. Frames arriving sooner than the
// analysis interval after the last accepted one are dropped, not queued.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate admitting one frame per interval. A zero interval
// admits every frame.
func NewGate(interval time.Duration) *Gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{limiter: rate.NewLimiter(limit, 1)}
}

// Allow reports whether a frame arriving at now should be analyzed.
func (g *Gate) Allow(now time.Time) bool {
	return g.limiter.AllowN(now, 1)
}
