// Package session turns a stream of analyzed frames into a coached plank
// session: it debounces detection, runs the hold timer, and decides what to
// announce and when.
//
// Every operation takes the current instant, so sessions can be replayed or
// tested without real clocks. A Coach is not safe for concurrent use;
// callers serialize access.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/plank-coach/pkg/plank"
	"github.com/teslashibe/plank-coach/pkg/pose"
	"github.com/teslashibe/plank-coach/pkg/speech"
)

// Announcement texts.
const (
	TextBodyConfirmed = "Full body identified"
	TextTimerStarted  = "Timer started"
	TextPaused        = "Session paused"
	TextResumed       = "Session resumed"
	TextCompleted     = "Session completed"
)

// stopWord in a transcript ends the session.
const stopWord = "stop"

// Update is the outcome of one accepted frame.
type Update struct {
	Result        plank.AnalysisResult
	Phase         Phase
	Variant       plank.Variant
	Elapsed       time.Duration
	Running       bool
	Events        []Event
	Announcements []speech.Announcement

	// FeedbackSuppressed is set when a correction was due but the feedback
	// interval had not yet passed.
	FeedbackSuppressed bool
}

// Status is a point-in-time view of the session for display.
type Status struct {
	Phase   Phase         `json:"phase"`
	Variant plank.Variant `json:"variant"`
	Elapsed time.Duration `json:"elapsed"`
	Clock   string        `json:"clock"`
	Running bool          `json:"running"`
}

// Option configures a Coach.
type Option func(*Coach)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coach) {
		c.logger = logger
	}
}

// WithAnalyzer replaces the frame analyzer built from Config.Plank.
func WithAnalyzer(a *plank.Analyzer) Option {
	return func(c *Coach) {
		c.analyzer = a
	}
}

// Coach drives one coaching session.
type Coach struct {
	cfg      Config
	analyzer *plank.Analyzer
	stab     Stabilizer
	logger   *slog.Logger

	state    State
	timer    *Timer
	throttle *FeedbackThrottle
	gate     *Gate
	window   *scoreWindow
}

// NewCoach creates a coach in the idle phase.
func NewCoach(cfg Config, opts ...Option) *Coach {
	c := &Coach{
		cfg:      cfg,
		analyzer: plank.NewAnalyzer(cfg.Plank),
		stab:     NewStabilizer(cfg),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset discards all session state and starts over from idle.
func (c *Coach) Reset() {
	c.state = NewState()
	c.timer = NewTimer(c.cfg.CheckpointInterval, c.cfg.CheckpointMinGap)
	c.throttle = NewFeedbackThrottle(c.cfg.FeedbackInterval, c.cfg.Plank.GoodScore)
	c.gate = NewGate(c.cfg.AnalysisInterval)
	c.window = newScoreWindow(c.cfg.SummaryWindow)
}

// Config returns the coach configuration.
func (c *Coach) Config() Config {
	return c.cfg
}

// State returns the detection state.
func (c *Coach) State() State {
	return c.state
}

// Phase returns the current lifecycle phase.
func (c *Coach) Phase() Phase {
	return c.state.Phase()
}

// HandleFrame analyzes one frame received at now. ok is false when the
// estimator produced no landmarks; such frames still count as breaking a
// detection dwell. The second return is false when the frame arrived too
// soon after the previous one and was dropped.
func (c *Coach) HandleFrame(now time.Time, frame *pose.Frame, ok bool) (Update, bool) {
	if !c.gate.Allow(now) {
		c.logger.Debug("frame dropped", "interval", c.cfg.AnalysisInterval)
		return Update{}, false
	}
	if !ok || frame == nil {
		frame = &pose.Frame{}
	}

	res := c.analyzer.Analyze(frame)

	var events []Event
	c.state, events = c.stab.Step(c.state, ObservationOf(now, res))
	announcements := c.apply(events)

	if a, ok := c.timer.Checkpoint(now); ok {
		announcements = append(announcements, a)
	}
	suppressed := false
	if c.timer.Running() && !c.state.Completed {
		before := c.throttle.Dropped()
		if a, ok := c.throttle.Offer(res, now); ok {
			announcements = append(announcements, a)
		}
		suppressed = c.throttle.Dropped() > before
		c.window.add(res)
	}

	return Update{
		Result:             res,
		Phase:              c.state.Phase(),
		Variant:            c.state.Variant,
		Elapsed:            c.timer.Elapsed(now),
		Running:            c.timer.Running(),
		Events:             events,
		Announcements:      announcements,
		FeedbackSuppressed: suppressed,
	}, true
}

// Tick advances time without a frame: it starts timing once the grace delay
// has passed and emits due checkpoints.
func (c *Coach) Tick(now time.Time) []speech.Announcement {
	var events []Event
	c.state, events = c.stab.Advance(c.state, now)
	announcements := c.apply(events)
	if a, ok := c.timer.Checkpoint(now); ok {
		announcements = append(announcements, a)
	}
	return announcements
}

// Pause freezes the hold timer. It only has an effect while timing.
func (c *Coach) Pause(now time.Time) []speech.Announcement {
	if c.state.Phase() != PhaseTimingActive || !c.timer.Pause(now) {
		return nil
	}
	c.logger.Info("session paused", "elapsed", c.timer.Elapsed(now))
	return []speech.Announcement{speech.High(TextPaused)}
}

// Resume continues a paused hold timer.
func (c *Coach) Resume(now time.Time) []speech.Announcement {
	if c.state.Phase() != PhaseTimingActive || !c.timer.Resume(now) {
		return nil
	}
	c.logger.Info("session resumed", "elapsed", c.timer.Elapsed(now))
	return []speech.Announcement{speech.High(TextResumed)}
}

// Stop completes a timed session. Outside of timing it does nothing.
func (c *Coach) Stop(now time.Time) []speech.Announcement {
	var events []Event
	c.state, events = c.stab.Stop(c.state, now)
	if len(events) > 0 {
		c.timer.Pause(now)
	}
	return c.apply(events)
}

// HandleTranscript stops the session when the recognized speech contains
// the stop word.
func (c *Coach) HandleTranscript(now time.Time, text string) []speech.Announcement {
	if !strings.Contains(strings.ToLower(strings.TrimSpace(text)), stopWord) {
		return nil
	}
	c.logger.Debug("stop word recognized", "transcript", text)
	return c.Stop(now)
}

// Status returns the display state at now.
func (c *Coach) Status(now time.Time) Status {
	elapsed := c.timer.Elapsed(now)
	return Status{
		Phase:   c.state.Phase(),
		Variant: c.state.Variant,
		Elapsed: elapsed,
		Clock:   FormatClock(elapsed),
		Running: c.timer.Running(),
	}
}

// Summary reports averages over the results recorded while timing.
func (c *Coach) Summary(now time.Time) Summary {
	body, knee, stack, overall := c.window.averages()
	return Summary{
		DurationSeconds:    int(c.timer.Elapsed(now) / time.Second),
		PlankType:          c.state.Variant,
		AverageScore:       overall,
		BodyAlignmentScore: body,
		KneePositionScore:  knee,
		ShoulderStackScore: stack,
		Frames:             c.window.len(),
		Rating:             c.cfg.Plank.Rating(overall),
	}
}

// apply performs the side effects of lifecycle events and returns their
// announcements.
func (c *Coach) apply(events []Event) []speech.Announcement {
	var out []speech.Announcement
	for _, ev := range events {
		switch ev.Kind {
		case EventBodyConfirmed:
			c.logger.Info("body confirmed", "variant", ev.Variant)
			out = append(out, speech.High(TextBodyConfirmed))
		case EventVariantConfirmed:
			out = append(out, speech.High(fmt.Sprintf("%s detected", ev.Variant.Label())))
		case EventTimingStarted:
			c.timer.Start(ev.At)
			c.throttle.Reset()
			c.logger.Info("timing started", "variant", ev.Variant)
			out = append(out, speech.High(TextTimerStarted))
		case EventCompleted:
			c.logger.Info("session completed",
				"variant", ev.Variant,
				"elapsed", c.timer.Elapsed(ev.At),
				"frames", c.window.len())
			out = append(out, speech.High(TextCompleted))
		}
	}
	return out
}
