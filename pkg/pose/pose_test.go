package pose

import (
	"errors"
	"math"
	"testing"
)

func TestAngleAtVertex(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Point
		want    float64
	}{
		{
			name: "collinear with vertex between",
			a:    Point{0, 0}, b: Point{1, 0}, c: Point{2, 0},
			want: 180,
		},
		{
			name: "collinear diagonal",
			a:    Point{0.1, 0.1}, b: Point{0.3, 0.3}, c: Point{0.7, 0.7},
			want: 180,
		},
		{
			name: "same ray",
			a:    Point{1, 0}, b: Point{0, 0}, c: Point{2, 0},
			want: 0,
		},
		{
			name: "coincident a and c",
			a:    Point{0.5, 0.2}, b: Point{0.5, 0.5}, c: Point{0.5, 0.2},
			want: 0,
		},
		{
			name: "right angle",
			a:    Point{0, 1}, b: Point{0, 0}, c: Point{1, 0},
			want: 90,
		},
		{
			name: "obtuse",
			a:    Point{-1, 0}, b: Point{0, 0}, c: Point{1, 1},
			want: 135,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleAtVertex(tt.a, tt.b, tt.c)
			// arccos near -1 only resolves to about 1e-6 degrees
			if math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleAtVertex_Degenerate(t *testing.T) {
	got := AngleAtVertex(Point{0.5, 0.5}, Point{0.5, 0.5}, Point{0.9, 0.5})
	if Finite(got) {
		t.Errorf("expected NaN for coincident vertex, got %v", got)
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(Point{0.2, 0.4}, Point{0.4, 0.8})
	if math.Abs(m.X-0.3) > 1e-9 || math.Abs(m.Y-0.6) > 1e-9 {
		t.Errorf("got %+v", m)
	}
}

func TestSideOfLine(t *testing.T) {
	a, b := Point{0.2, 0.5}, Point{0.8, 0.5}

	if s := SideOfLine(a, b, Point{0.5, 0.4}); s >= 0 {
		t.Errorf("point above line should be negative, got %v", s)
	}
	if s := SideOfLine(a, b, Point{0.5, 0.6}); s <= 0 {
		t.Errorf("point below line should be positive, got %v", s)
	}
	// Direction of the line does not matter.
	if s := SideOfLine(b, a, Point{0.5, 0.4}); s >= 0 {
		t.Errorf("reversed line: point above should be negative, got %v", s)
	}
}

func TestBetterSide(t *testing.T) {
	var f Frame
	for _, idx := range []int{LeftShoulder, LeftHip, LeftKnee, LeftAnkle} {
		f[idx] = &Landmark{Visibility: 0.9}
	}
	for _, idx := range []int{RightShoulder, RightHip, RightKnee, RightAnkle} {
		f[idx] = &Landmark{Visibility: 0.4}
	}

	if got := BetterSide(&f); got != Left {
		t.Errorf("got %v, want left", got)
	}

	f[LeftAnkle] = nil
	f[LeftKnee] = nil
	f[LeftHip] = nil
	if got := BetterSide(&f); got != Right {
		t.Errorf("got %v, want right once left points are missing", got)
	}

	var empty Frame
	if got := BetterSide(&empty); got != Right {
		t.Errorf("tie should go right, got %v", got)
	}
}

func TestSideJoints(t *testing.T) {
	if j := Left.Joints(); j.Shoulder != LeftShoulder || j.Ankle != LeftAnkle || j.Wrist != LeftWrist {
		t.Errorf("unexpected left joints: %+v", j)
	}
	if j := Right.Joints(); j.Hip != RightHip || j.Elbow != RightElbow || j.Knee != RightKnee {
		t.Errorf("unexpected right joints: %+v", j)
	}
}

func TestFrameUsable(t *testing.T) {
	var f Frame
	f[LeftHip] = &Landmark{Visibility: 0.8}
	f[LeftKnee] = &Landmark{Visibility: 0.2}

	if !f.Usable(0.3, LeftHip) {
		t.Error("hip should be usable")
	}
	if f.Usable(0.3, LeftHip, LeftKnee) {
		t.Error("low-visibility knee should make the set unusable")
	}
	if f.Usable(0.3, LeftAnkle) {
		t.Error("absent ankle should be unusable")
	}
	if f.Usable(0.3, 99) {
		t.Error("out-of-range index should be unusable")
	}
}

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantOK    bool
		wantCount int
		wantErr   error
	}{
		{name: "empty payload", payload: "", wantOK: false},
		{name: "null", payload: "null", wantOK: false},
		{name: "absent array", payload: `{}`, wantOK: false},
		{name: "empty array", payload: `{"poseLandmarks": []}`, wantOK: false},
		{name: "bare empty array", payload: `[]`, wantOK: false},
		{
			name:      "partial entries",
			payload:   `{"poseLandmarks": [{"x":0.1,"y":0.2,"visibility":0.9}, null, {"x":0.3,"y":0.4}]}`,
			wantOK:    true,
			wantCount: 2,
		},
		{
			name:      "bare array",
			payload:   `[{"x":0.1,"y":0.2,"z":-0.1,"visibility":0.5}]`,
			wantOK:    true,
			wantCount: 1,
		},
		{name: "garbage", payload: `nope`, wantErr: ErrMalformed},
		{name: "bad object", payload: `{"poseLandmarks": 3}`, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok, err := DecodeFrame([]byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if n := present(&f); n != tt.wantCount {
				t.Errorf("count = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestDecodeFrame_MissingVisibilityIsZero(t *testing.T) {
	f, ok, err := DecodeFrame([]byte(`[{"x":0.5,"y":0.5}]`))
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if f.Visibility(Nose) != 0 {
		t.Errorf("missing visibility should decode as 0, got %v", f.Visibility(Nose))
	}
}

func TestFrameFromSlice_IgnoresExtras(t *testing.T) {
	ls := make([]*Landmark, NumLandmarks+5)
	for i := range ls {
		ls[i] = &Landmark{X: float64(i)}
	}
	f, ok := FrameFromSlice(ls)
	if n := present(&f); !ok || n != NumLandmarks {
		t.Errorf("ok=%v count=%d", ok, n)
	}
}

func present(f *Frame) int {
	n := 0
	for _, l := range f {
		if l != nil {
			n++
		}
	}
	return n
}
