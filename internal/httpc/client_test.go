package httpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("got %s %q", r.Method, r.Header.Get("Content-Type"))
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "s1", "plankType": in["plankType"]})
	}))
	defer srv.Close()

	var out struct {
		ID        string `json:"id"`
		PlankType string `json:"plankType"`
	}
	err := PostJSON(context.Background(), srv.URL, map[string]string{"plankType": "elbow"}, &out)
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out.ID != "s1" || out.PlankType != "elbow" {
		t.Errorf("out = %+v", out)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Session not found"}` + "\n"))
	}))
	defer srv.Close()

	err := GetJSON(context.Background(), srv.URL, &struct{}{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != 404 || se.Body != `{"message":"Session not found"}` {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestDoJSONNilOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ignored"))
	}))
	defer srv.Close()

	if err := DoJSON(context.Background(), http.MethodPatch, srv.URL, nil, nil); err != nil {
		t.Errorf("DoJSON: %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var out map[string]any
	if err := GetJSON(context.Background(), srv.URL, &out); err == nil {
		t.Error("expected decode error")
	}
}
