package session

import (
	"time"

	"github.com/teslashibe/plank-coach/internal/posetest"
	"github.com/teslashibe/plank-coach/pkg/plank"
)

var (
	highPlankFrame    = posetest.HighPlank
	hiddenAnklesFrame = posetest.HiddenAnkles
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func obs(ms int, v plank.Variant, score int) Observation {
	return Observation{
		At:                 at(ms),
		Variant:            v,
		BodyAlignmentScore: score,
		KneePositionScore:  score,
		ShoulderStackScore: score,
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}
