// Package pose holds the body-landmark data model shared by the plank coach:
// the 33-point landmark schema produced by the upstream pose estimator,
// tolerant decoding of estimator payloads, and the 2D geometry used to
// evaluate a frame.
//
// Coordinates are normalized to the source frame (0..1, origin top-left), so
// a larger Y is lower in the image.
package pose

// Landmark indices of the 33-point body schema. The indices are a contract
// with the upstream estimator (MediaPipe Pose ordering).
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Landmark is one normalized body keypoint.
// Visibility is the estimator's confidence (0..1); a missing value decodes as 0.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility,omitempty"`
}

// Point returns the landmark projected onto the image plane.
func (l *Landmark) Point() Point {
	return Point{X: l.X, Y: l.Y}
}

// Frame is one estimator output: landmarks indexed by the schema above.
// Entries may be nil when the estimator did not report that point.
type Frame [NumLandmarks]*Landmark

// FrameFromSlice builds a Frame from an estimator array. Missing trailing
// entries stay nil and entries past NumLandmarks are ignored.
// ok is false when the slice holds no landmarks at all.
func FrameFromSlice(landmarks []*Landmark) (f Frame, ok bool) {
	for i := 0; i < len(landmarks) && i < NumLandmarks; i++ {
		if landmarks[i] != nil {
			f[i] = landmarks[i]
			ok = true
		}
	}
	return f, ok
}

// Get returns the landmark at idx, or nil when idx is out of range or absent.
func (f *Frame) Get(idx int) *Landmark {
	if f == nil || idx < 0 || idx >= NumLandmarks {
		return nil
	}
	return f[idx]
}

// Visibility returns the confidence of the landmark at idx, 0 when absent.
func (f *Frame) Visibility(idx int) float64 {
	if l := f.Get(idx); l != nil {
		return l.Visibility
	}
	return 0
}

// Usable reports whether every landmark in idxs is present with visibility
// at or above floor.
func (f *Frame) Usable(floor float64, idxs ...int) bool {
	for _, idx := range idxs {
		l := f.Get(idx)
		if l == nil || l.Visibility < floor {
			return false
		}
	}
	return true
}

// MeanVisibility averages the visibility of idxs, counting absent points as 0.
func (f *Frame) MeanVisibility(idxs ...int) float64 {
	if len(idxs) == 0 {
		return 0
	}
	var sum float64
	for _, idx := range idxs {
		sum += f.Visibility(idx)
	}
	return sum / float64(len(idxs))
}
