package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/plank-coach/pkg/plank"
	"github.com/teslashibe/plank-coach/pkg/pose"
	"github.com/teslashibe/plank-coach/pkg/session"
	"github.com/teslashibe/plank-coach/pkg/speech"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewLandmarksMessage wraps a raw estimator payload
func NewLandmarksMessage(payload json.RawMessage) (*Message, error) {
	if !json.Valid(payload) {
		return nil, fmt.Errorf("invalid landmarks payload")
	}
	msg, err := NewMessage(TypeLandmarks, nil)
	if err != nil {
		return nil, err
	}
	msg.Data = payload
	return msg, nil
}

// NewPoseAnalysisMessage creates a client-side analysis message
func NewPoseAnalysisMessage(rec plank.Record, at time.Time) (*Message, error) {
	return NewMessage(TypePoseAnalysis, PoseAnalysisData{
		Record:    rec,
		Timestamp: at.UnixMilli(),
	})
}

// NewTranscriptMessage creates a transcript message
func NewTranscriptMessage(text string, final bool) (*Message, error) {
	return NewMessage(TypeTranscript, TranscriptData{Text: text, Final: final})
}

// NewControlMessage creates a control message
func NewControlMessage(action ControlAction) (*Message, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("unknown control action %q", action)
	}
	return NewMessage(TypeControl, ControlData{Action: action})
}

// NewAnalysisMessage creates an analysis message from a coach update
func NewAnalysisMessage(u session.Update) (*Message, error) {
	return NewMessage(TypeAnalysis, AnalysisData{
		Record:    u.Result.Record(),
		Phase:     u.Phase.String(),
		ElapsedMs: u.Elapsed.Milliseconds(),
		Running:   u.Running,
	})
}

// NewAnnouncementMessage creates an announcement message
func NewAnnouncementMessage(a speech.Announcement) (*Message, error) {
	return NewMessage(TypeAnnouncement, AnnouncementData{
		Text:     a.Text,
		Priority: string(a.Priority),
	})
}

// NewStateMessage creates a state message
func NewStateMessage(s session.Status) (*Message, error) {
	return NewMessage(TypeState, StateData{
		Phase:     s.Phase.String(),
		Variant:   string(s.Variant),
		ElapsedMs: s.Elapsed.Milliseconds(),
		Clock:     s.Clock,
		Running:   s.Running,
	})
}

// NewSummaryMessage creates a summary message
func NewSummaryMessage(s session.Summary) (*Message, error) {
	return NewMessage(TypeSummary, s)
}

// NewErrorMessage creates an error message
func NewErrorMessage(reason string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Message: reason})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetFrame decodes the landmarks payload. ok is false when the estimator
// found no person in the frame.
func (m *Message) GetFrame() (f pose.Frame, ok bool, err error) {
	return pose.DecodeFrame(m.Data)
}

// GetPoseAnalysisData extracts client analysis from a message
func (m *Message) GetPoseAnalysisData() (*PoseAnalysisData, error) {
	var data PoseAnalysisData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTranscriptData extracts a transcript from a message
func (m *Message) GetTranscriptData() (*TranscriptData, error) {
	var data TranscriptData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetControlData extracts a control command from a message
func (m *Message) GetControlData() (*ControlData, error) {
	var data ControlData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	if !data.Action.Valid() {
		return nil, fmt.Errorf("unknown control action %q", data.Action)
	}
	return &data, nil
}

// GetAnalysisData extracts analysis from a message
func (m *Message) GetAnalysisData() (*AnalysisData, error) {
	var data AnalysisData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAnnouncementData extracts an announcement from a message
func (m *Message) GetAnnouncementData() (*AnnouncementData, error) {
	var data AnnouncementData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStateData extracts state from a message
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSummaryData extracts a summary from a message
func (m *Message) GetSummaryData() (*SummaryData, error) {
	var data SummaryData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts an error from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
