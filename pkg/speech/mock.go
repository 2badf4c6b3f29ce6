package speech

import (
	"context"
	"sync"
)

// Mock implements Speaker for testing and records every announcement.
type Mock struct {
	// SpeakFunc is called when Speak is invoked. If nil, Speak succeeds.
	SpeakFunc func(ctx context.Context, a Announcement) error

	mu    sync.Mutex
	calls []Announcement
}

// NewMock creates a recording speaker that always succeeds.
func NewMock() *Mock {
	return &Mock{}
}

// Speak records a and calls SpeakFunc.
func (m *Mock) Speak(ctx context.Context, a Announcement) error {
	m.mu.Lock()
	m.calls = append(m.calls, a)
	m.mu.Unlock()

	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, a)
	}
	return nil
}

// Calls returns all recorded announcements.
func (m *Mock) Calls() []Announcement {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Announcement, len(m.calls))
	copy(result, m.calls)
	return result
}

// Texts returns the text of every recorded announcement.
func (m *Mock) Texts() []string {
	calls := m.Calls()
	texts := make([]string, len(calls))
	for i, c := range calls {
		texts[i] = c.Text
	}
	return texts
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

var _ Speaker = (*Mock)(nil)
