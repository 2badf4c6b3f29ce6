// Package plank evaluates single body-landmark frames of a person holding a
// plank: it classifies the plank variant and scores form quality with
// corrective feedback. Everything here is a pure function of one frame.
package plank

import (
	"math"
	"strings"

	"github.com/teslashibe/plank-coach/pkg/pose"
)

// Feedback messages, ordered by criterion.
const (
	FeedbackHipsTooLow     = "Hips too low, lift them in line with your shoulders"
	FeedbackHipsTooHigh    = "Hips too high, lower them in line with your body"
	FeedbackBodyNotVisible = "Move so your whole body is visible"
	FeedbackBentLegs       = "Straighten your legs"
	FeedbackLegsNotVisible = "Make sure your legs are visible"
	FeedbackStackWrists    = "Shoulders not over wrists"
	FeedbackStackElbows    = "Shoulders not over elbows"
	FeedbackArmsNotVisible = "Make sure your arms are visible"
	feedbackSeparator      = ", "
)

// AnalysisResult is the evaluation of one frame. Angles are 0 when not
// computable; scores are 0..100.
type AnalysisResult struct {
	PlankType          Variant  `json:"plankType"`
	BodyAlignmentAngle float64  `json:"bodyAlignmentAngle"`
	KneeAngle          float64  `json:"kneeAngle"`
	ShoulderStackAngle float64  `json:"shoulderStackAngle"`
	BodyAlignmentScore int      `json:"bodyAlignmentScore"`
	KneePositionScore  int      `json:"kneePositionScore"`
	ShoulderStackScore int      `json:"shoulderStackScore"`
	OverallScore       int      `json:"overallScore"`
	Feedback           []string `json:"feedback"`
}

// Record is the flattened per-frame form of an AnalysisResult handed to
// transport and persistence.
type Record struct {
	BodyAlignmentAngle float64 `json:"bodyAlignmentAngle"`
	KneeAngle          float64 `json:"kneeAngle"`
	ShoulderStackAngle float64 `json:"shoulderStackAngle"`
	BodyAlignmentScore int     `json:"bodyAlignmentScore"`
	KneePositionScore  int     `json:"kneePositionScore"`
	ShoulderStackScore int     `json:"shoulderStackScore"`
	OverallScore       int     `json:"overallScore"`
	Feedback           string  `json:"feedback"`
	PlankType          string  `json:"plankType"`
}

// Record flattens the result.
func (r AnalysisResult) Record() Record {
	return Record{
		BodyAlignmentAngle: r.BodyAlignmentAngle,
		KneeAngle:          r.KneeAngle,
		ShoulderStackAngle: r.ShoulderStackAngle,
		BodyAlignmentScore: r.BodyAlignmentScore,
		KneePositionScore:  r.KneePositionScore,
		ShoulderStackScore: r.ShoulderStackScore,
		OverallScore:       r.OverallScore,
		Feedback:           strings.Join(r.Feedback, feedbackSeparator),
		PlankType:          string(r.PlankType),
	}
}

// TopFeedback returns the most critical feedback entry, or "" when form is
// acceptable.
func (r AnalysisResult) TopFeedback() string {
	if len(r.Feedback) == 0 {
		return ""
	}
	return r.Feedback[0]
}

// Analyzer classifies and scores frames with a fixed configuration.
// It holds no per-frame state and is safe for concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Config returns the analyzer's thresholds.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze classifies the frame and scores it against the detected variant.
func (a *Analyzer) Analyze(f *pose.Frame) AnalysisResult {
	return a.Score(f, a.Classify(f))
}

// OverallScore is the round-half-up mean of the three sub-scores.
func OverallScore(body, knee, stack int) int {
	return RoundHalfUp(float64(body+knee+stack) / 3)
}

// RoundHalfUp rounds v to the nearest integer with halves rounded up.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
