package session

import (
	"gonum.org/v1/gonum/stat"

	"github.com/teslashibe/plank-coach/pkg/plank"
)

// Summary is the end-of-session report.
type Summary struct {
	DurationSeconds    int           `json:"duration"`
	PlankType          plank.Variant `json:"plankType"`
	AverageScore       int           `json:"averageScore"`
	BodyAlignmentScore int           `json:"bodyAlignmentScore"`
	KneePositionScore  int           `json:"kneePositionScore"`
	ShoulderStackScore int           `json:"shoulderStackScore"`
	Frames             int           `json:"frames"`
	Rating             string        `json:"rating"`
}

// scoreWindow keeps the most recent results in a fixed-size ring.
type scoreWindow struct {
	body, knee, stack []float64
	next              int
	full              bool
	size              int
}

func newScoreWindow(size int) *scoreWindow {
	if size <= 0 {
		size = 1
	}
	return &scoreWindow{
		body:  make([]float64, 0, size),
		knee:  make([]float64, 0, size),
		stack: make([]float64, 0, size),
		size:  size,
	}
}

func (w *scoreWindow) add(res plank.AnalysisResult) {
	if !w.full {
		w.body = append(w.body, float64(res.BodyAlignmentScore))
		w.knee = append(w.knee, float64(res.KneePositionScore))
		w.stack = append(w.stack, float64(res.ShoulderStackScore))
		if len(w.body) == w.size {
			w.full = true
		}
		return
	}
	w.body[w.next] = float64(res.BodyAlignmentScore)
	w.knee[w.next] = float64(res.KneePositionScore)
	w.stack[w.next] = float64(res.ShoulderStackScore)
	w.next = (w.next + 1) % w.size
}

func (w *scoreWindow) len() int {
	return len(w.body)
}

// averages returns the rounded mean of each sub-score and the rounded mean
// of those three. An empty window averages to zero.
func (w *scoreWindow) averages() (body, knee, stack, overall int) {
	if w.len() == 0 {
		return 0, 0, 0, 0
	}
	body = plank.RoundHalfUp(stat.Mean(w.body, nil))
	knee = plank.RoundHalfUp(stat.Mean(w.knee, nil))
	stack = plank.RoundHalfUp(stat.Mean(w.stack, nil))
	return body, knee, stack, plank.OverallScore(body, knee, stack)
}
