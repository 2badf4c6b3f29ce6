package session

import (
	"time"

	"github.com/teslashibe/plank-coach/pkg/plank"
)

// Phase is the lifecycle position of a coaching session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseBodyConfirmed
	PhaseVariantConfirmed
	PhaseTimingActive
	PhaseCompleted
)

var phaseNames = map[Phase]string{
	PhaseIdle:             "idle",
	PhaseBodyConfirmed:    "body_confirmed",
	PhaseVariantConfirmed: "variant_confirmed",
	PhaseTimingActive:     "timing_active",
	PhaseCompleted:        "completed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "invalid"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the detection state of one session. The confirmation flags only
// ever move from false to true; a fresh State is the only way back.
type State struct {
	// CandidateVariant is the last non-unknown variant seen.
	CandidateVariant plank.Variant
	// CandidateSince starts the current unbroken dwell on CandidateVariant.
	// It is zero while no plausible frame is being held.
	CandidateSince time.Time

	BodyConfirmed    bool
	VariantConfirmed bool
	TimingStarted    bool
	Completed        bool

	// Variant is frozen at confirmation for the rest of the session.
	Variant         plank.Variant
	ConfirmedAt     time.Time
	TimingStartedAt time.Time
	CompletedAt     time.Time
}

// NewState returns the state of a session that has seen nothing yet.
func NewState() State {
	return State{
		CandidateVariant: plank.Unknown,
		Variant:          plank.Unknown,
	}
}

// Phase derives the lifecycle phase from the flags.
func (s State) Phase() Phase {
	switch {
	case s.Completed:
		return PhaseCompleted
	case s.TimingStarted:
		return PhaseTimingActive
	case s.VariantConfirmed:
		return PhaseVariantConfirmed
	case s.BodyConfirmed:
		return PhaseBodyConfirmed
	default:
		return PhaseIdle
	}
}

// EventKind identifies a lifecycle transition.
type EventKind string

const (
	EventBodyConfirmed    EventKind = "body_confirmed"
	EventVariantConfirmed EventKind = "variant_confirmed"
	EventTimingStarted    EventKind = "timing_started"
	EventCompleted        EventKind = "completed"
)

// Event is emitted once per transition.
type Event struct {
	Kind    EventKind     `json:"kind"`
	At      time.Time     `json:"at"`
	Variant plank.Variant `json:"variant"`
}

// Observation is the part of a frame analysis the stabilizer consumes.
type Observation struct {
	At                 time.Time
	Variant            plank.Variant
	BodyAlignmentScore int
	KneePositionScore  int
	ShoulderStackScore int
}

// ObservationOf extracts an Observation from an analysis result.
func ObservationOf(at time.Time, res plank.AnalysisResult) Observation {
	return Observation{
		At:                 at,
		Variant:            res.PlankType,
		BodyAlignmentScore: res.BodyAlignmentScore,
		KneePositionScore:  res.KneePositionScore,
		ShoulderStackScore: res.ShoulderStackScore,
	}
}

// Stabilizer debounces per-frame observations into lifecycle events.
// It is stateless itself: every method takes a State and returns the next
// one, so the machine can be driven and tested without clocks or UI.
type Stabilizer struct {
	scoreFloor int
	dwell      time.Duration
	grace      time.Duration
}

// NewStabilizer creates a stabilizer from the detection part of cfg.
func NewStabilizer(cfg Config) Stabilizer {
	return Stabilizer{
		scoreFloor: cfg.ScoreFloor,
		dwell:      cfg.Dwell,
		grace:      cfg.Grace,
	}
}

// Step feeds one observation. Before confirmation it tracks the dwell on the
// candidate variant; afterwards the observation only advances time.
func (z Stabilizer) Step(s State, obs Observation) (State, []Event) {
	var events []Event
	if !s.BodyConfirmed {
		s, events = z.dwellOn(s, obs)
	}
	s, more := z.Advance(s, obs.At)
	return s, append(events, more...)
}

func (z Stabilizer) dwellOn(s State, obs Observation) (State, []Event) {
	if obs.Variant != plank.Unknown && obs.Variant != s.CandidateVariant {
		// A new candidate restarts the clock; nothing carries over.
		s.CandidateVariant = obs.Variant
		s.CandidateSince = time.Time{}
	}

	if !z.plausible(obs) {
		s.CandidateSince = time.Time{}
		return s, nil
	}

	if s.CandidateSince.IsZero() {
		s.CandidateSince = obs.At
	}
	if obs.At.Sub(s.CandidateSince) < z.dwell {
		return s, nil
	}

	s.BodyConfirmed = true
	s.VariantConfirmed = true
	s.Variant = s.CandidateVariant
	s.ConfirmedAt = obs.At

	return s, []Event{
		{Kind: EventBodyConfirmed, At: obs.At, Variant: s.Variant},
		{Kind: EventVariantConfirmed, At: obs.At, Variant: s.Variant},
	}
}

func (z Stabilizer) plausible(obs Observation) bool {
	return obs.Variant != plank.Unknown &&
		obs.BodyAlignmentScore > z.scoreFloor &&
		obs.KneePositionScore > z.scoreFloor &&
		obs.ShoulderStackScore > z.scoreFloor
}

// Advance moves a confirmed session into timing once the grace delay has
// passed. The timing start is stamped with now, not the confirmation time.
func (z Stabilizer) Advance(s State, now time.Time) (State, []Event) {
	if !s.VariantConfirmed || s.TimingStarted {
		return s, nil
	}
	if now.Sub(s.ConfirmedAt) < z.grace {
		return s, nil
	}
	s.TimingStarted = true
	s.TimingStartedAt = now
	return s, []Event{{Kind: EventTimingStarted, At: now, Variant: s.Variant}}
}

// Stop completes a timed session. In any other phase it is a no-op.
func (z Stabilizer) Stop(s State, now time.Time) (State, []Event) {
	if !s.TimingStarted || s.Completed {
		return s, nil
	}
	s.Completed = true
	s.CompletedAt = now
	return s, []Event{{Kind: EventCompleted, At: now, Variant: s.Variant}}
}
