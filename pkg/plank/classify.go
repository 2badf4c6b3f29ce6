package plank

import (
	"math"

	"github.com/teslashibe/plank-coach/pkg/pose"
)

// Variant is the plank variant seen in a frame.
type Variant string

const (
	High    Variant = "high"
	Elbow   Variant = "elbow"
	Unknown Variant = "unknown"
)

// ParseVariant maps a name to a Variant. ok is false for unrecognized names.
func ParseVariant(s string) (Variant, bool) {
	switch Variant(s) {
	case High, Elbow, Unknown:
		return Variant(s), true
	}
	return Unknown, false
}

// Label returns the spoken name of the variant.
func (v Variant) Label() string {
	switch v {
	case High:
		return "High plank"
	case Elbow:
		return "Elbow plank"
	default:
		return "Unknown plank"
	}
}

// classifierLandmarks are required, bilaterally, to classify a frame.
var classifierLandmarks = []int{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftHip, pose.RightHip,
	pose.LeftKnee, pose.RightKnee,
}

// centers holds the bilateral midpoints used by the classifier.
type centers struct {
	shoulder, elbow, wrist, hip, knee pose.Point
}

func bilateral(f *pose.Frame) centers {
	mid := func(l, r int) pose.Point {
		return pose.Midpoint(f.Get(l).Point(), f.Get(r).Point())
	}
	return centers{
		shoulder: mid(pose.LeftShoulder, pose.RightShoulder),
		elbow:    mid(pose.LeftElbow, pose.RightElbow),
		wrist:    mid(pose.LeftWrist, pose.RightWrist),
		hip:      mid(pose.LeftHip, pose.RightHip),
		knee:     mid(pose.LeftKnee, pose.RightKnee),
	}
}

// Classify returns the plank variant of a single frame. It keeps no memory of
// earlier frames and degrades to Unknown rather than guessing.
func (a *Analyzer) Classify(f *pose.Frame) Variant {
	cfg := a.cfg

	if f == nil || !f.Usable(cfg.ConfidenceFloor, classifierLandmarks...) {
		return Unknown
	}

	c := bilateral(f)

	// Posture first: a standing person with bent arms must not reach the
	// arm-shape checks.
	if math.Abs(c.shoulder.Y-c.hip.Y) > cfg.MaxTorsoDrop || math.Abs(c.hip.Y-c.knee.Y) > cfg.MaxLegDrop {
		return Unknown
	}

	elbowDrop := c.elbow.Y - c.shoulder.Y
	wristDrop := c.wrist.Y - c.shoulder.Y
	if elbowDrop < cfg.MinArmDrop || wristDrop < cfg.MinArmDrop {
		return Unknown
	}

	forearm := c.wrist.Y - c.elbow.Y
	switch {
	case wristDrop > cfg.ArmExtensionRatio*elbowDrop && forearm > cfg.MinForearmDrop:
		return High
	case math.Abs(forearm) < cfg.MaxForearmLevel:
		return Elbow
	default:
		return Unknown
	}
}
