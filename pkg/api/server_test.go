package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/plank-coach/pkg/plank"
	"github.com/teslashibe/plank-coach/pkg/relay"
	"github.com/teslashibe/plank-coach/pkg/session"
	"github.com/teslashibe/plank-coach/pkg/store"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	db := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := relay.NewHub(session.DefaultConfig(), relay.WithStore(db), relay.WithLogger(logger))
	return NewServer(db, hub, WithLogger(logger)), db
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s.App(), "GET", "/health", "")
	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("body = %s", body)
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"high", `{"plankType":"high","userId":"u1"}`, 200},
		{"elbow without user", `{"plankType":"elbow"}`, 200},
		{"unknown", `{"plankType":"unknown"}`, 200},
		{"invalid type", `{"plankType":"side"}`, 400},
		{"missing type", `{}`, 400},
		{"malformed", `{"plankType":`, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, db := newTestServer(t)

			resp, body := do(t, s.App(), "POST", "/api/sessions", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("Status = %d, want %d (%s)", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantStatus != 200 {
				if !strings.Contains(string(body), "Invalid session data") {
					t.Errorf("body = %s", body)
				}
				return
			}

			var sess store.Session
			if err := json.Unmarshal(body, &sess); err != nil {
				t.Fatal(err)
			}
			if sess.ID == "" || sess.Completed {
				t.Errorf("session = %+v", sess)
			}
			if _, err := db.GetSession(context.Background(), sess.ID); err != nil {
				t.Errorf("session not stored: %v", err)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	s, db := newTestServer(t)
	sess := store.NewSession(plank.High, "u1")
	if err := db.CreateSession(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	resp, body := do(t, s.App(), "GET", "/api/sessions/"+sess.ID, "")
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d", resp.StatusCode)
	}
	var got store.Session
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != sess.ID || got.PlankType != "high" || got.EndTime != nil {
		t.Errorf("session = %+v", got)
	}

	resp, body = do(t, s.App(), "GET", "/api/sessions/missing", "")
	if resp.StatusCode != 404 || !strings.Contains(string(body), "Session not found") {
		t.Errorf("Status = %d body = %s, want 404", resp.StatusCode, body)
	}
}

func TestUpdateSession(t *testing.T) {
	s, db := newTestServer(t)
	sess := store.NewSession(plank.Elbow, "u1")
	if err := db.CreateSession(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	end := sess.StartTime.Add(time.Minute).Format(time.RFC3339Nano)
	resp, body := do(t, s.App(), "PATCH", "/api/sessions/"+sess.ID,
		`{"duration":60,"averageScore":84.5,"completed":true,"endTime":"`+end+`"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d body = %s", resp.StatusCode, body)
	}
	var got store.Session
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if !got.Completed || *got.Duration != 60 || *got.AverageScore != 84.5 || got.EndTime == nil {
		t.Errorf("session = %+v", got)
	}

	resp, _ = do(t, s.App(), "PATCH", "/api/sessions/"+sess.ID, `{"plankType":"side"}`)
	if resp.StatusCode != 400 {
		t.Errorf("invalid plankType Status = %d, want 400", resp.StatusCode)
	}

	resp, _ = do(t, s.App(), "PATCH", "/api/sessions/missing", `{"completed":true}`)
	if resp.StatusCode != 404 {
		t.Errorf("missing session Status = %d, want 404", resp.StatusCode)
	}
}

func TestListAnalysis(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()
	sess := store.NewSession(plank.High, "u1")
	if err := db.CreateSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		a := store.NewAnalysis(sess.ID, plank.Record{OverallScore: 80 + i}, sess.StartTime.Add(time.Duration(i)*time.Second))
		if err := db.CreateAnalysis(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	resp, body := do(t, s.App(), "GET", "/api/sessions/"+sess.ID+"/analysis", "")
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d", resp.StatusCode)
	}
	var rows []store.Analysis
	if err := json.Unmarshal(body, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[2].OverallScore != 82 {
		t.Errorf("rows = %+v", rows)
	}

	_, body = do(t, s.App(), "GET", "/api/sessions/none/analysis", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("empty analysis body = %s, want []", body)
	}
}

func TestListSessions(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()
	for _, user := range []string{"u1", "u1", "u2"} {
		if err := db.CreateSession(ctx, store.NewSession(plank.High, user)); err != nil {
			t.Fatal(err)
		}
	}

	resp, body := do(t, s.App(), "GET", "/api/sessions?userId=u1", "")
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d", resp.StatusCode)
	}
	var list []store.Session
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("got %d sessions, want 2", len(list))
	}

	resp, _ = do(t, s.App(), "GET", "/api/sessions", "")
	if resp.StatusCode != 400 {
		t.Errorf("missing userId Status = %d, want 400", resp.StatusCode)
	}
}

func TestRelayRoutesMounted(t *testing.T) {
	s, _ := newTestServer(t)

	resp, _ := do(t, s.App(), "GET", "/api/relay/stats", "")
	if resp.StatusCode != 200 {
		t.Errorf("stats Status = %d, want 200", resp.StatusCode)
	}
	resp, _ = do(t, s.App(), "GET", "/ws/session/abc", "")
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("ws Status = %d, want 426", resp.StatusCode)
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s.App(), "GET", "/api/nope", "")
	if resp.StatusCode != 404 {
		t.Errorf("Status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(string(body), "message") {
		t.Errorf("body = %s", body)
	}
}
