// Package speech defines the boundary to the voice output collaborator.
//
// The coach produces plain announcement strings tagged with a priority;
// how they are queued, interrupted, synthesized and played belongs to the
// Speaker implementation.
//
// Example usage:
//
//	speaker := speech.NewToggle(mySpeaker)
//	speaker.SetEnabled(false) // voice off
//	_ = speaker.Speak(ctx, speech.High("Timer started"))
package speech

import (
	"context"
	"errors"
)

// Priority tells the speaker how urgent an announcement is.
type Priority string

const (
	// PriorityHigh is used for session-control events.
	PriorityHigh Priority = "high"
	// PriorityMedium is used for form feedback and time checkpoints.
	PriorityMedium Priority = "medium"
)

// Announcement is one utterance for the speech collaborator.
type Announcement struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// High builds a high-priority announcement.
func High(text string) Announcement {
	return Announcement{Text: text, Priority: PriorityHigh}
}

// Medium builds a medium-priority announcement.
func Medium(text string) Announcement {
	return Announcement{Text: text, Priority: PriorityMedium}
}

// Speaker delivers announcements.
type Speaker interface {
	Speak(ctx context.Context, a Announcement) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, a Announcement) error

// Speak calls f.
func (f SpeakerFunc) Speak(ctx context.Context, a Announcement) error {
	return f(ctx, a)
}

// ErrEmptyAnnouncement is returned when asked to speak empty text.
var ErrEmptyAnnouncement = errors.New("speech: empty announcement")

// SpeakAll delivers announcements in order and returns the joined errors
// of the ones that failed. Empty announcements are skipped.
func SpeakAll(ctx context.Context, s Speaker, as []Announcement) error {
	var errs []error
	for _, a := range as {
		if a.Text == "" {
			continue
		}
		if err := s.Speak(ctx, a); err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return errors.Join(errs...)
}
