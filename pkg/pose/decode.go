package pose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when an estimator payload is not valid JSON.
var ErrMalformed = errors.New("pose: malformed landmark payload")

// estimatorResult mirrors the estimator callback object.
type estimatorResult struct {
	PoseLandmarks []*Landmark `json:"poseLandmarks"`
}

// DecodeFrame decodes an estimator payload, either the callback object
// {"poseLandmarks": [...]} or a bare landmark array. Absent or empty arrays
// and null entries are tolerated: ok is false when no landmark is present.
func DecodeFrame(data []byte) (f Frame, ok bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return f, false, nil
	}

	var landmarks []*Landmark
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &landmarks); err != nil {
			return f, false, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case '{':
		var res estimatorResult
		if err := json.Unmarshal(data, &res); err != nil {
			return f, false, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		landmarks = res.PoseLandmarks
	default:
		return f, false, ErrMalformed
	}

	f, ok = FrameFromSlice(landmarks)
	return f, ok, nil
}
