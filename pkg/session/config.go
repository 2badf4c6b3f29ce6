package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/teslashibe/plank-coach/pkg/plank"
)

// Config holds all tunable parameters of a coaching session.
type Config struct {
	// Detection
	ScoreFloor int           // Every sub-score must exceed this for a plausible body
	Dwell      time.Duration // Continuous plausible time before confirming
	Grace      time.Duration // Delay between confirmation and timing start

	// Announcements
	CheckpointInterval time.Duration // Spoken time checkpoints every this much elapsed time
	CheckpointMinGap   time.Duration // Minimum elapsed time between two checkpoints
	FeedbackInterval   time.Duration // Minimum time between spoken corrections

	// Cadence
	AnalysisInterval time.Duration // Frames arriving sooner than this are dropped

	// Summary
	SummaryWindow int // Results kept for end-of-session averages

	// Frame evaluation
	Plank plank.Config
}

// DefaultConfig returns the recommended session configuration.
func DefaultConfig() Config {
	return Config{
		ScoreFloor: 30,
		Dwell:      time.Second,
		Grace:      1500 * time.Millisecond,

		CheckpointInterval: 10 * time.Second,
		CheckpointMinGap:   5 * time.Second,
		FeedbackInterval:   5 * time.Second,

		AnalysisInterval: 100 * time.Millisecond, // 10 evaluations per second

		SummaryWindow: 3000, // 5 minutes at 10 evaluations per second

		Plank: plank.DefaultConfig(),
	}
}

// StrictConfig requires stronger evidence of a plank before confirming.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.ScoreFloor = 40
	cfg.Plank = plank.StrictConfig()
	return cfg
}

// ImmediateConfig confirms on the first plausible frame.
func ImmediateConfig() Config {
	cfg := DefaultConfig()
	cfg.Dwell = 0
	return cfg
}

// ConfigByName resolves a preset name: "default", "strict" or "immediate".
func ConfigByName(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultConfig(), nil
	case "strict":
		return StrictConfig(), nil
	case "immediate":
		return ImmediateConfig(), nil
	}
	return Config{}, fmt.Errorf("session: unknown preset %q", name)
}
