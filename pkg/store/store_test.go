package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/teslashibe/plank-coach/pkg/plank"
)

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(":memory:")
		if err != nil {
			t.Fatalf("OpenSQLite() error = %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndGetSession(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		sess := NewSession(plank.Elbow, "user-1")

		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}

		got, err := s.GetSession(ctx, sess.ID)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got.PlankType != "elbow" || got.UserID == nil || *got.UserID != "user-1" {
			t.Errorf("session = %+v", got)
		}
		if !got.StartTime.Equal(sess.StartTime) {
			t.Errorf("start time = %v, want %v", got.StartTime, sess.StartTime)
		}
		if got.Completed || got.EndTime != nil || got.Duration != nil || got.AverageScore != nil {
			t.Errorf("new session should have no results: %+v", got)
		}
	})
}

func TestCreateSession_AssignsDefaults(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		sess := &Session{PlankType: "high"}
		if err := s.CreateSession(context.Background(), sess); err != nil {
			t.Fatal(err)
		}
		if sess.ID == "" || sess.StartTime.IsZero() {
			t.Errorf("defaults not assigned: %+v", sess)
		}
		got, err := s.GetSession(context.Background(), sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.UserID != nil {
			t.Errorf("userId = %v, want nil", *got.UserID)
		}
	})
}

func TestGetSession_NotFound(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		_, err := s.GetSession(context.Background(), "00000000-0000-0000-0000-000000000000")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateSession(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		sess := NewSession(plank.High, "")
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatal(err)
		}

		end := sess.StartTime.Add(45 * time.Second)
		got, err := s.UpdateSession(ctx, sess.ID, SessionPatch{
			EndTime:      &end,
			Duration:     ptr(45),
			AverageScore: ptr(82.0),
			Completed:    ptr(true),
		})
		if err != nil {
			t.Fatalf("UpdateSession() error = %v", err)
		}
		if !got.Completed || *got.Duration != 45 || *got.AverageScore != 82 || !got.EndTime.Equal(end) {
			t.Errorf("updated = %+v", got)
		}
		if got.PlankType != "high" || got.KneePositionScore != nil {
			t.Errorf("unpatched fields changed: %+v", got)
		}

		// Empty patch is a read.
		again, err := s.UpdateSession(ctx, sess.ID, SessionPatch{})
		if err != nil || !again.Completed {
			t.Errorf("empty patch = %+v, %v", again, err)
		}

		if _, err := s.UpdateSession(ctx, "missing", SessionPatch{Completed: ptr(true)}); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestListSessions(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		older := &Session{PlankType: "high", UserID: ptr("u1"), StartTime: base}
		newer := &Session{PlankType: "elbow", UserID: ptr("u1"), StartTime: base.Add(time.Hour)}
		other := &Session{PlankType: "high", UserID: ptr("u2"), StartTime: base}
		for _, sess := range []*Session{older, newer, other} {
			if err := s.CreateSession(ctx, sess); err != nil {
				t.Fatal(err)
			}
		}

		list, err := s.ListSessions(ctx, "u1")
		if err != nil {
			t.Fatalf("ListSessions() error = %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("got %d sessions, want 2", len(list))
		}
		if list[0].ID != newer.ID || list[1].ID != older.ID {
			t.Errorf("order = [%s %s], want newest first", list[0].PlankType, list[1].PlankType)
		}

		none, err := s.ListSessions(ctx, "nobody")
		if err != nil || none == nil || len(none) != 0 {
			t.Errorf("ListSessions(nobody) = %v, %v, want empty slice", none, err)
		}
	})
}

func TestAnalysis(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		sess := NewSession(plank.High, "u1")
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatal(err)
		}

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		second := NewAnalysis(sess.ID, plank.Record{OverallScore: 90}, base.Add(200*time.Millisecond))
		first := NewAnalysis(sess.ID, plank.Record{
			BodyAlignmentAngle: 165.5,
			KneeAngle:          150,
			ShoulderStackAngle: 88,
			OverallScore:       64,
			Feedback:           "Hips too low, lift them in line with your shoulders, Straighten your legs",
		}, base)

		for _, a := range []*Analysis{second, first} {
			if err := s.CreateAnalysis(ctx, a); err != nil {
				t.Fatalf("CreateAnalysis() error = %v", err)
			}
		}

		list, err := s.ListAnalysis(ctx, sess.ID)
		if err != nil {
			t.Fatalf("ListAnalysis() error = %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("got %d rows, want 2", len(list))
		}
		if list[0].ID != first.ID || list[1].ID != second.ID {
			t.Errorf("rows not in time order")
		}
		got := list[0]
		if got.BodyAlignmentAngle != 165.5 || got.OverallScore != 64 || got.Feedback != first.Feedback {
			t.Errorf("row = %+v", got)
		}
		if !got.Timestamp.Equal(base) {
			t.Errorf("timestamp = %v, want %v", got.Timestamp, base)
		}

		orphan := NewAnalysis("missing", plank.Record{}, base)
		if err := s.CreateAnalysis(ctx, orphan); !errors.Is(err, ErrNotFound) {
			t.Errorf("orphan analysis error = %v, want ErrNotFound", err)
		}

		empty, err := s.ListAnalysis(ctx, "missing")
		if err != nil || empty == nil || len(empty) != 0 {
			t.Errorf("ListAnalysis(missing) = %v, %v", empty, err)
		}
	})
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	sess := NewSession(plank.Elbow, "u1")
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	if _, err := s.GetSession(ctx, sess.ID); err != nil {
		t.Errorf("GetSession() after reopen error = %v", err)
	}
}

func TestSessionPatch_ApplyCopies(t *testing.T) {
	d := 30
	sess := &Session{}
	SessionPatch{Duration: &d}.Apply(sess)
	d = 99
	if *sess.Duration != 30 {
		t.Errorf("duration aliased the patch: %d", *sess.Duration)
	}
}
