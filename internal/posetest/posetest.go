// Package posetest builds synthetic landmark frames for tests.
package posetest

import (
	"encoding/json"

	"github.com/teslashibe/plank-coach/pkg/pose"
)

// Point is a normalized image position.
type Point struct{ X, Y float64 }

// Body is a side-view pose. Left landmarks are placed at the given
// positions and right landmarks 0.01 further along x.
type Body struct {
	Shoulder, Elbow, Wrist, Hip, Knee, Ankle Point
}

// HighPlankBody has straight arms below the shoulders and a straight
// shoulder-hip-ankle line.
var HighPlankBody = Body{
	Shoulder: Point{0.30, 0.50},
	Elbow:    Point{0.30, 0.60},
	Wrist:    Point{0.30, 0.70},
	Hip:      Point{0.55, 0.55},
	Knee:     Point{0.70, 0.60},
	Ankle:    Point{0.85, 0.65},
}

// ElbowPlankBody rests on flat forearms.
var ElbowPlankBody = Body{
	Shoulder: Point{0.30, 0.60},
	Elbow:    Point{0.30, 0.70},
	Wrist:    Point{0.20, 0.71},
	Hip:      Point{0.55, 0.64},
	Knee:     Point{0.70, 0.66},
	Ankle:    Point{0.85, 0.70},
}

// Build places b's joints on both sides with the given visibility.
func Build(b Body, visibility float64) *pose.Frame {
	var f pose.Frame
	set := func(l, r int, p Point) {
		f[l] = &pose.Landmark{X: p.X, Y: p.Y, Visibility: visibility}
		f[r] = &pose.Landmark{X: p.X + 0.01, Y: p.Y, Visibility: visibility}
	}
	set(pose.LeftShoulder, pose.RightShoulder, b.Shoulder)
	set(pose.LeftElbow, pose.RightElbow, b.Elbow)
	set(pose.LeftWrist, pose.RightWrist, b.Wrist)
	set(pose.LeftHip, pose.RightHip, b.Hip)
	set(pose.LeftKnee, pose.RightKnee, b.Knee)
	set(pose.LeftAnkle, pose.RightAnkle, b.Ankle)
	return &f
}

// HighPlank is a clean high plank scoring 100.
func HighPlank() *pose.Frame { return Build(HighPlankBody, 0.9) }

// ElbowPlank is a clean elbow plank scoring 100.
func ElbowPlank() *pose.Frame { return Build(ElbowPlankBody, 0.9) }

// HiddenAnkles is a high plank whose ankles are not visible: it still
// classifies but scores 33 with visibility feedback.
func HiddenAnkles() *pose.Frame {
	f := HighPlank()
	f[pose.LeftAnkle].Visibility = 0.1
	f[pose.RightAnkle].Visibility = 0.1
	return f
}

// Payload encodes f the way the browser estimator reports it.
func Payload(f *pose.Frame) json.RawMessage {
	data, err := json.Marshal(map[string]any{"poseLandmarks": f[:]})
	if err != nil {
		panic(err)
	}
	return data
}
