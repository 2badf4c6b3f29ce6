package plank

import (
	"math"

	"github.com/teslashibe/plank-coach/pkg/pose"
)

// Score evaluates body alignment, knee position and shoulder stack for the
// given variant. Each criterion is gated on the visibility of its own
// landmarks; an unusable criterion takes its fallback score and reports a
// visibility message instead of a form judgment.
func (a *Analyzer) Score(f *pose.Frame, variant Variant) AnalysisResult {
	res := AnalysisResult{
		PlankType: variant,
		Feedback:  []string{},
	}
	if f == nil {
		f = &pose.Frame{}
	}

	j := pose.BetterSide(f).Joints()

	// Feedback order: alignment, knees, shoulder stack.
	var msg string
	res.BodyAlignmentAngle, res.BodyAlignmentScore, msg = a.bodyAlignment(f, j)
	res.Feedback = appendNonEmpty(res.Feedback, msg)

	res.KneeAngle, res.KneePositionScore, msg = a.kneePosition(f, j)
	res.Feedback = appendNonEmpty(res.Feedback, msg)

	res.ShoulderStackAngle, res.ShoulderStackScore, msg = a.shoulderStack(f, j, variant)
	res.Feedback = appendNonEmpty(res.Feedback, msg)

	res.OverallScore = OverallScore(res.BodyAlignmentScore, res.KneePositionScore, res.ShoulderStackScore)
	return res
}

// bodyAlignment scores the shoulder-hip-ankle line. The angle is reported
// past 180 when the hips sit above the shoulder-ankle line, so a piked
// plank reads as "too high" and a sagging one as "too low".
func (a *Analyzer) bodyAlignment(f *pose.Frame, j pose.Joints) (angle float64, score int, feedback string) {
	cfg := a.cfg
	if !f.Usable(cfg.ConfidenceFloor, j.Shoulder, j.Hip, j.Ankle) {
		return 0, 0, FeedbackBodyNotVisible
	}

	shoulder, hip, ankle := f.Get(j.Shoulder).Point(), f.Get(j.Hip).Point(), f.Get(j.Ankle).Point()
	angle = pose.AngleAtVertex(shoulder, hip, ankle)
	if !pose.Finite(angle) {
		return 0, 0, FeedbackBodyNotVisible
	}
	if pose.SideOfLine(shoulder, ankle, hip) < 0 {
		angle = 360 - angle
	}

	deviation := math.Abs(angle - cfg.AlignmentTarget)
	raw := 100.0
	if deviation > cfg.AlignmentTolerance {
		raw = math.Max(0, 100-(deviation-cfg.AlignmentTolerance)*cfg.AlignmentPenalty)
	}

	switch {
	case angle < cfg.HipsLowBelow:
		feedback = FeedbackHipsTooLow
	case angle > cfg.HipsHighAbove:
		feedback = FeedbackHipsTooHigh
	}
	return angle, RoundHalfUp(raw), feedback
}

// kneePosition scores how straight the legs are.
func (a *Analyzer) kneePosition(f *pose.Frame, j pose.Joints) (angle float64, score int, feedback string) {
	cfg := a.cfg
	if !f.Usable(cfg.ConfidenceFloor, j.Hip, j.Knee, j.Ankle) {
		return 0, 0, FeedbackLegsNotVisible
	}

	angle = pose.AngleAtVertex(f.Get(j.Hip).Point(), f.Get(j.Knee).Point(), f.Get(j.Ankle).Point())
	if !pose.Finite(angle) {
		return 0, 0, FeedbackLegsNotVisible
	}

	if angle >= cfg.KneeTarget {
		return angle, 100, ""
	}
	raw := math.Max(0, 100-(cfg.KneeTarget-angle)*cfg.KneePenalty)
	return angle, RoundHalfUp(raw), FeedbackBentLegs
}

// shoulderStack scores the horizontal offset between the shoulder and the
// support joint: the wrist for a high plank, the elbow otherwise. The
// reported angle is the shoulder-to-support line measured from horizontal.
func (a *Analyzer) shoulderStack(f *pose.Frame, j pose.Joints, variant Variant) (angle float64, score int, feedback string) {
	cfg := a.cfg

	support, misaligned := j.Elbow, FeedbackStackElbows
	if variant == High {
		support, misaligned = j.Wrist, FeedbackStackWrists
	}

	if !f.Usable(cfg.ConfidenceFloor, j.Shoulder, support) {
		return 0, cfg.StackFallbackScore, FeedbackArmsNotVisible
	}

	shoulder, joint := f.Get(j.Shoulder), f.Get(support)
	offset := math.Abs(shoulder.X - joint.X)
	rise := math.Abs(shoulder.Y - joint.Y)
	if offset == 0 && rise == 0 {
		return 0, cfg.StackFallbackScore, FeedbackArmsNotVisible
	}
	angle = math.Atan2(rise, offset) * 180 / math.Pi

	switch {
	case offset < cfg.StackExcellent:
		score = 100
	case offset < cfg.StackGood:
		score = 80
	default:
		score = 60
	}

	if math.Abs(angle-cfg.StackTargetAngle) > cfg.StackTolerance {
		feedback = misaligned
	}
	return angle, score, feedback
}

func appendNonEmpty(list []string, s string) []string {
	if s == "" {
		return list
	}
	return append(list, s)
}
