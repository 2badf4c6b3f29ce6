package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps sessions in process memory. It is used in tests and
// when no database path is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // insertion order
	analysis map[string][]Analysis
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		analysis: make(map[string][]Analysis),
	}
}

func (m *MemoryStore) CreateSession(ctx context.Context, s *Session) error {
	prepareSession(s)

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sessions[s.ID] = &cp
	m.order = append(m.order, s.ID)
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) UpdateSession(ctx context.Context, id string, patch SessionPatch) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(s)
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Session{}
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.sessions[m.order[i]]
		if s.UserID != nil && *s.UserID == userID {
			out = append(out, *s)
		}
	}
	// Newest first; ties keep the most recently inserted first.
	slices.SortStableFunc(out, func(a, b Session) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return out, nil
}

func (m *MemoryStore) CreateAnalysis(ctx context.Context, a *Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[a.SessionID]; !ok {
		return ErrNotFound
	}
	prepareAnalysis(a)
	m.analysis[a.SessionID] = append(m.analysis[a.SessionID], *a)
	return nil
}

func (m *MemoryStore) ListAnalysis(ctx context.Context, sessionID string) ([]Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.analysis[sessionID])
	if out == nil {
		out = []Analysis{}
	}
	slices.SortStableFunc(out, func(a, b Analysis) int {
		return cmp.Compare(a.Timestamp.UnixNano(), b.Timestamp.UnixNano())
	})
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
