package pose

// Side identifies one half of the body.
type Side int

const (
	Right Side = iota
	Left
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Joints holds the single-sided landmark indices used for angle computations.
type Joints struct {
	Shoulder int
	Elbow    int
	Wrist    int
	Hip      int
	Knee     int
	Ankle    int
}

var (
	leftJoints = Joints{
		Shoulder: LeftShoulder,
		Elbow:    LeftElbow,
		Wrist:    LeftWrist,
		Hip:      LeftHip,
		Knee:     LeftKnee,
		Ankle:    LeftAnkle,
	}
	rightJoints = Joints{
		Shoulder: RightShoulder,
		Elbow:    RightElbow,
		Wrist:    RightWrist,
		Hip:      RightHip,
		Knee:     RightKnee,
		Ankle:    RightAnkle,
	}
)

// Joints returns the landmark indices of side s.
func (s Side) Joints() Joints {
	if s == Left {
		return leftJoints
	}
	return rightJoints
}

// BetterSide picks the side the camera sees best, comparing the mean
// visibility of shoulder, hip, knee and ankle. Ties go to the right side.
// Every consumer that needs single-sided joints must use this so that all
// computations on a frame evaluate the same side.
func BetterSide(f *Frame) Side {
	left := f.MeanVisibility(LeftShoulder, LeftHip, LeftKnee, LeftAnkle)
	right := f.MeanVisibility(RightShoulder, RightHip, RightKnee, RightAnkle)
	if left > right {
		return Left
	}
	return Right
}
