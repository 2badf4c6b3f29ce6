package session

import (
	"testing"
	"time"

	"github.com/teslashibe/plank-coach/pkg/plank"
	"github.com/teslashibe/plank-coach/pkg/speech"
)

func lowResult() plank.AnalysisResult {
	return plank.AnalysisResult{
		PlankType:    plank.High,
		OverallScore: 55,
		Feedback:     []string{plank.FeedbackHipsTooLow, plank.FeedbackBentLegs},
	}
}

func TestFeedbackThrottle_OnePerInterval(t *testing.T) {
	th := NewFeedbackThrottle(5*time.Second, 70)

	var spoken []speech.Announcement
	for _, ms := range []int{0, 400, 900, 1500, 2000} {
		if a, ok := th.Offer(lowResult(), at(ms)); ok {
			spoken = append(spoken, a)
		}
	}
	if len(spoken) != 1 {
		t.Fatalf("spoken %d corrections, want 1", len(spoken))
	}
	if spoken[0].Text != plank.FeedbackHipsTooLow || spoken[0].Priority != speech.PriorityMedium {
		t.Errorf("announcement = %+v", spoken[0])
	}
	if th.Dropped() != 4 {
		t.Errorf("dropped = %d, want 4", th.Dropped())
	}

	if _, ok := th.Offer(lowResult(), at(4999)); ok {
		t.Error("spoke before interval elapsed")
	}
	if _, ok := th.Offer(lowResult(), at(5000)); !ok {
		t.Error("expected correction once interval elapsed")
	}
}

func TestFeedbackThrottle_Eligibility(t *testing.T) {
	tests := []struct {
		name string
		res  plank.AnalysisResult
		want bool
	}{
		{"low with feedback", lowResult(), true},
		{"good score", plank.AnalysisResult{OverallScore: 70, Feedback: []string{plank.FeedbackBentLegs}}, false},
		{"no feedback", plank.AnalysisResult{OverallScore: 20, Feedback: []string{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewFeedbackThrottle(5*time.Second, 70)
			if _, ok := th.Offer(tt.res, at(0)); ok != tt.want {
				t.Errorf("ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestFeedbackThrottle_Reset(t *testing.T) {
	th := NewFeedbackThrottle(5*time.Second, 70)
	th.Offer(lowResult(), at(0))
	th.Reset()
	if _, ok := th.Offer(lowResult(), at(100)); !ok {
		t.Error("expected correction after reset")
	}
}

func TestGate(t *testing.T) {
	g := NewGate(100 * time.Millisecond)

	if !g.Allow(at(0)) {
		t.Fatal("first frame dropped")
	}
	if g.Allow(at(50)) {
		t.Error("frame 50ms later should be dropped")
	}
	if !g.Allow(at(150)) {
		t.Error("frame 150ms later should be accepted")
	}

	open := NewGate(0)
	for i := 0; i < 5; i++ {
		if !open.Allow(at(0)) {
			t.Fatal("zero interval should admit every frame")
		}
	}
}

func TestScoreWindow(t *testing.T) {
	w := newScoreWindow(2)
	if b, k, s, o := w.averages(); b|k|s|o != 0 {
		t.Errorf("empty window averages = %d/%d/%d/%d", b, k, s, o)
	}

	w.add(plank.AnalysisResult{BodyAlignmentScore: 10, KneePositionScore: 10, ShoulderStackScore: 10})
	w.add(plank.AnalysisResult{BodyAlignmentScore: 100, KneePositionScore: 100, ShoulderStackScore: 50})
	w.add(plank.AnalysisResult{BodyAlignmentScore: 90, KneePositionScore: 81, ShoulderStackScore: 51})

	if w.len() != 2 {
		t.Fatalf("len = %d, want 2", w.len())
	}
	body, knee, stack, overall := w.averages()
	// (100+90)/2=95, (100+81)/2=90.5, (50+51)/2=50.5, (95+91+51)/3=79
	if body != 95 || knee != 91 || stack != 51 || overall != 79 {
		t.Errorf("averages = %d/%d/%d/%d, want 95/91/51/79", body, knee, stack, overall)
	}
}
