// Package protocol defines the WebSocket message types exchanged between
// coaching clients and the plank-coach server.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/plank-coach/pkg/plank"
	"github.com/teslashibe/plank-coach/pkg/session"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Server messages
	TypeLandmarks    MessageType = "landmarks"     // Pose estimator output for one frame
	TypePoseAnalysis MessageType = "pose_analysis" // Frame already analyzed by the client
	TypeTranscript   MessageType = "transcript"    // Recognized speech
	TypeControl      MessageType = "control"       // Pause, resume, stop or voice toggle

	// Server → Client messages
	TypeAnalysis     MessageType = "analysis"     // Per-frame evaluation
	TypeAnnouncement MessageType = "announcement" // Text to speak
	TypeState        MessageType = "state"        // Session lifecycle state
	TypeSummary      MessageType = "summary"      // End-of-session report
	TypeError        MessageType = "error"        // Rejected message

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Time returns the message timestamp, or fallback when it is unset.
func (m *Message) Time(fallback time.Time) time.Time {
	if m.Timestamp <= 0 {
		return fallback
	}
	return time.UnixMilli(m.Timestamp)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// The landmarks message carries the estimator payload unchanged as its data:
// either {"poseLandmarks": [...]} or a bare landmark array.

// PoseAnalysisData is a frame evaluation produced by the client itself.
type PoseAnalysisData struct {
	plank.Record
	Timestamp int64 `json:"timestamp,omitempty"` // Unix milliseconds
}

// TranscriptData contains recognized speech
type TranscriptData struct {
	Text  string `json:"text"`
	Final bool   `json:"final,omitempty"`
}

// ControlAction is a session control command
type ControlAction string

const (
	ControlPause  ControlAction = "pause"
	ControlResume ControlAction = "resume"
	ControlStop   ControlAction = "stop"
	ControlMute   ControlAction = "mute"   // Stop voicing announcements
	ControlUnmute ControlAction = "unmute" // Voice announcements again
)

// Valid reports whether a is a known action.
func (a ControlAction) Valid() bool {
	switch a {
	case ControlPause, ControlResume, ControlStop, ControlMute, ControlUnmute:
		return true
	}
	return false
}

// ControlData contains a session control command
type ControlData struct {
	Action ControlAction `json:"action"`
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// AnalysisData is one frame evaluation with the session state it produced
type AnalysisData struct {
	plank.Record
	Phase     string `json:"phase"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Running   bool   `json:"running"`
}

// AnnouncementData contains text for the speech collaborator
type AnnouncementData struct {
	Text     string `json:"text"`
	Priority string `json:"priority"` // "high", "medium"
}

// StateData contains the session lifecycle state
type StateData struct {
	Phase     string `json:"phase"`
	Variant   string `json:"variant"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Clock     string `json:"clock"` // MM:SS
	Running   bool   `json:"running"`
}

// SummaryData is the end-of-session report
type SummaryData = session.Summary

// ErrorData describes why a message was rejected
type ErrorData struct {
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
