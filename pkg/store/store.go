// Package store persists coaching sessions and their per-frame analysis.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/plank-coach/pkg/plank"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("store: not found")

// Session is one plank attempt. Result fields stay nil until the session
// ends.
type Session struct {
	ID                 string     `json:"id"`
	UserID             *string    `json:"userId"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime"`
	Duration           *int       `json:"duration"` // seconds
	PlankType          string     `json:"plankType"`
	AverageScore       *float64   `json:"averageScore"`
	BodyAlignmentScore *float64   `json:"bodyAlignmentScore"`
	KneePositionScore  *float64   `json:"kneePositionScore"`
	ShoulderStackScore *float64   `json:"shoulderStackScore"`
	Completed          bool       `json:"completed"`
}

// NewSession creates an open session starting now.
func NewSession(plankType plank.Variant, userID string) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		StartTime: time.Now().UTC(),
		PlankType: string(plankType),
	}
	if userID != "" {
		s.UserID = &userID
	}
	return s
}

// SessionPatch is a partial session update. Nil fields are left unchanged.
type SessionPatch struct {
	EndTime            *time.Time `json:"endTime,omitempty"`
	Duration           *int       `json:"duration,omitempty"`
	PlankType          *string    `json:"plankType,omitempty"`
	AverageScore       *float64   `json:"averageScore,omitempty"`
	BodyAlignmentScore *float64   `json:"bodyAlignmentScore,omitempty"`
	KneePositionScore  *float64   `json:"kneePositionScore,omitempty"`
	ShoulderStackScore *float64   `json:"shoulderStackScore,omitempty"`
	Completed          *bool      `json:"completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SessionPatch) Empty() bool {
	return p == SessionPatch{}
}

// Apply copies the set fields of p onto s.
func (p SessionPatch) Apply(s *Session) {
	if p.EndTime != nil {
		t := p.EndTime.UTC()
		s.EndTime = &t
	}
	if p.Duration != nil {
		s.Duration = clone(p.Duration)
	}
	if p.PlankType != nil {
		s.PlankType = *p.PlankType
	}
	if p.AverageScore != nil {
		s.AverageScore = clone(p.AverageScore)
	}
	if p.BodyAlignmentScore != nil {
		s.BodyAlignmentScore = clone(p.BodyAlignmentScore)
	}
	if p.KneePositionScore != nil {
		s.KneePositionScore = clone(p.KneePositionScore)
	}
	if p.ShoulderStackScore != nil {
		s.ShoulderStackScore = clone(p.ShoulderStackScore)
	}
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
}

// Analysis is one persisted frame evaluation.
type Analysis struct {
	ID                 string    `json:"id"`
	SessionID          string    `json:"sessionId"`
	Timestamp          time.Time `json:"timestamp"`
	BodyAlignmentAngle float64   `json:"bodyAlignmentAngle"`
	KneeAngle          float64   `json:"kneeAngle"`
	ShoulderStackAngle float64   `json:"shoulderStackAngle"`
	OverallScore       float64   `json:"overallScore"`
	Feedback           string    `json:"feedback"`
}

// NewAnalysis builds an analysis row from a frame record.
func NewAnalysis(sessionID string, rec plank.Record, at time.Time) *Analysis {
	return &Analysis{
		ID:                 uuid.New().String(),
		SessionID:          sessionID,
		Timestamp:          at.UTC(),
		BodyAlignmentAngle: rec.BodyAlignmentAngle,
		KneeAngle:          rec.KneeAngle,
		ShoulderStackAngle: rec.ShoulderStackAngle,
		OverallScore:       float64(rec.OverallScore),
		Feedback:           rec.Feedback,
	}
}

// Store is the session persistence boundary.
type Store interface {
	// CreateSession inserts s, assigning an ID and start time when unset.
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	// UpdateSession applies patch and returns the updated session.
	UpdateSession(ctx context.Context, id string, patch SessionPatch) (*Session, error)
	// ListSessions returns the user's sessions, most recent first.
	ListSessions(ctx context.Context, userID string) ([]Session, error)
	// CreateAnalysis inserts a, assigning an ID and timestamp when unset.
	// It returns ErrNotFound when the session does not exist.
	CreateAnalysis(ctx context.Context, a *Analysis) error
	// ListAnalysis returns a session's analysis in time order.
	ListAnalysis(ctx context.Context, sessionID string) ([]Analysis, error)
	Close() error
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func prepareSession(s *Session) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.StartTime.IsZero() {
		s.StartTime = time.Now()
	}
	s.StartTime = s.StartTime.UTC()
}

func prepareAnalysis(a *Analysis) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	a.Timestamp = a.Timestamp.UTC()
}
