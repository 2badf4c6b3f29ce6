package plank

import (
	"github.com/teslashibe/plank-coach/internal/posetest"
	"github.com/teslashibe/plank-coach/pkg/pose"
)

// standingPoints is an upright person with bent arms.
var standingPoints = posetest.Body{
	Shoulder: posetest.Point{X: 0.45, Y: 0.25},
	Elbow:    posetest.Point{X: 0.44, Y: 0.35},
	Wrist:    posetest.Point{X: 0.44, Y: 0.45},
	Hip:      posetest.Point{X: 0.47, Y: 0.55},
	Knee:     posetest.Point{X: 0.47, Y: 0.75},
	Ankle:    posetest.Point{X: 0.47, Y: 0.95},
}

func buildFrame(b posetest.Body, visibility float64) pose.Frame {
	return *posetest.Build(b, visibility)
}

func highPlankFrame() pose.Frame  { return *posetest.HighPlank() }
func elbowPlankFrame() pose.Frame { return *posetest.ElbowPlank() }
