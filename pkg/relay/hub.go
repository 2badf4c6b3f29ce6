// Package relay provides the WebSocket hub that runs live coaching sessions.
//
// Each session id gets a room. Landmark frames from any client of the room
// drive the room's coach; analysis, announcements and the final summary are
// mirrored to every client and persisted.
package relay

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/plank-coach/pkg/pose"
	"github.com/teslashibe/plank-coach/pkg/protocol"
	"github.com/teslashibe/plank-coach/pkg/session"
	"github.com/teslashibe/plank-coach/pkg/speech"
	"github.com/teslashibe/plank-coach/pkg/store"
)

// DefaultTickInterval is how often rooms are advanced without frames.
const DefaultTickInterval = time.Second

// maxMessageSize bounds one inbound message. A 33-landmark frame is ~4KB.
const maxMessageSize = 64 * 1024

// Option configures a Hub.
type Option func(*Hub)

// WithStore persists analysis and summaries. Without a store, rooms accept
// any session id and nothing is saved.
func WithStore(s store.Store) Option {
	return func(h *Hub) {
		h.store = s
	}
}

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		h.now = now
	}
}

// WithTickInterval sets how often Run advances rooms.
func WithTickInterval(d time.Duration) Option {
	return func(h *Hub) {
		h.tickInterval = d
	}
}

// WithSpeaker additionally voices every announcement on a server-side speaker.
func WithSpeaker(s speech.Speaker) Option {
	return func(h *Hub) {
		h.speaker = s
	}
}

// Hub manages session rooms and their WebSocket clients
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cfg          session.Config
	store        store.Store
	speaker      speech.Speaker
	logger       *slog.Logger
	now          func() time.Time
	tickInterval time.Duration

	// Callbacks
	onSummary func(sessionID string, summary session.Summary)

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesReceived   atomic.Uint64
	framesDropped    atomic.Uint64
	feedbackDropped  atomic.Uint64
	analysesStored   atomic.Uint64
}

// NewHub creates a hub whose rooms coach with cfg.
func NewHub(cfg session.Config, opts ...Option) *Hub {
	h := &Hub{
		rooms:        make(map[string]*Room),
		cfg:          cfg,
		logger:       slog.Default(),
		now:          time.Now,
		tickInterval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnSummary sets the callback for completed sessions
func (h *Hub) OnSummary(callback func(sessionID string, summary session.Summary)) {
	h.mu.Lock()
	h.onSummary = callback
	h.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/session/:id", websocket.New(h.handleClient))
}

// handleClient handles one client WebSocket connection
func (h *Hub) handleClient(c *websocket.Conn) {
	sessionID := c.Params("id")
	client := &Client{
		ID:        uuid.New().String(),
		Conn:      c,
		Connected: h.now(),
		LastSeen:  h.now(),
	}
	logger := h.logger.With("session", sessionID, "client", client.ID)

	if err := h.checkSession(sessionID); err != nil {
		logger.Warn("rejecting client", "error", err)
		if msg, merr := protocol.NewErrorMessage(err.Error()); merr == nil {
			client.Send(msg)
		}
		return
	}

	room := h.join(sessionID, client)
	logger.Info("client connected", "clients", room.ClientCount())

	defer func() {
		left := h.leave(room, client.ID)
		logger.Info("client disconnected", "clients", left)
	}()

	h.sendState(room, client)

	c.SetReadLimit(maxMessageSize)

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			logger.Debug("read error", "error", err)
			return
		}

		client.touch(h.now())
		h.messagesReceived.Add(1)
		h.handleMessage(room, client, data)
	}
}

func (h *Hub) checkSession(id string) error {
	if id == "" {
		return errors.New("missing session id")
	}
	if h.store == nil {
		return nil
	}
	if _, err := h.store.GetSession(context.Background(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("session %s not found", id)
		}
		return err
	}
	return nil
}

func (h *Hub) join(sessionID string, client *Client) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sessionID]
	if !ok {
		coach := session.NewCoach(h.cfg, session.WithLogger(h.logger.With("session", sessionID)))
		room = newRoom(sessionID, coach)
		room.speaker = speech.NewToggle(&roomSpeaker{hub: h, room: room, extra: h.speaker})
		h.rooms[sessionID] = room
	}
	room.add(client)
	return room
}

// leave removes a client; the room and its coach go away with the last one.
func (h *Hub) leave(room *Room, clientID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	left := room.remove(clientID)
	if left == 0 && h.rooms[room.ID] == room {
		delete(h.rooms, room.ID)
	}
	return left
}

// handleMessage processes an incoming message from a client
func (h *Hub) handleMessage(room *Room, client *Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.sendError(client, err)
		return
	}
	now := h.now()

	switch msg.Type {
	case protocol.TypeLandmarks:
		h.framesReceived.Add(1)
		frame, ok, err := msg.GetFrame()
		if err != nil {
			h.sendError(client, err)
			return
		}
		h.handleFrame(room, now, frame, ok)

	case protocol.TypePoseAnalysis:
		h.relayAnalysis(room, client, msg, now)

	case protocol.TypeTranscript:
		t, err := msg.GetTranscriptData()
		if err != nil {
			h.sendError(client, err)
			return
		}
		var anns []speech.Announcement
		room.withCoach(func(c *session.Coach) {
			anns = c.HandleTranscript(now, t.Text)
		})
		h.announce(room, anns)
		h.maybeFinish(room, now)

	case protocol.TypeControl:
		ctl, err := msg.GetControlData()
		if err != nil {
			h.sendError(client, err)
			return
		}
		h.handleControl(room, ctl.Action, now)

	case protocol.TypePing:
		h.sendPong(client, msg, now)

	default:
		h.sendError(client, fmt.Errorf("unsupported message type %q", msg.Type))
	}
}

func (h *Hub) handleFrame(room *Room, now time.Time, frame pose.Frame, ok bool) {
	var (
		update   session.Update
		accepted bool
	)
	room.withCoach(func(c *session.Coach) {
		update, accepted = c.HandleFrame(now, &frame, ok)
	})
	if !accepted {
		h.framesDropped.Add(1)
		return
	}

	if msg, err := protocol.NewAnalysisMessage(update); err == nil {
		msg.SessionID = room.ID
		h.broadcast(room, msg, "")
	}

	if update.FeedbackSuppressed {
		h.feedbackDropped.Add(1)
	}

	if update.Phase == session.PhaseTimingActive && update.Running {
		h.persist(room.ID, store.NewAnalysis(room.ID, update.Result.Record(), now))
	}

	if len(update.Events) > 0 {
		h.broadcastState(room, now)
	}
	h.announce(room, update.Announcements)
	h.maybeFinish(room, now)
}

// relayAnalysis stores a client-side analysis and forwards it to the other
// clients of the room.
func (h *Hub) relayAnalysis(room *Room, client *Client, msg *protocol.Message, now time.Time) {
	data, err := msg.GetPoseAnalysisData()
	if err != nil {
		h.sendError(client, err)
		return
	}

	at := now
	if data.Timestamp > 0 {
		at = time.UnixMilli(data.Timestamp)
	}
	h.persist(room.ID, store.NewAnalysis(room.ID, data.Record, at))

	msg.SessionID = room.ID
	h.broadcast(room, msg, client.ID)
}

func (h *Hub) handleControl(room *Room, action protocol.ControlAction, now time.Time) {
	switch action {
	case protocol.ControlMute:
		room.speaker.SetEnabled(false)
		return
	case protocol.ControlUnmute:
		room.speaker.SetEnabled(true)
		return
	}

	var anns []speech.Announcement
	room.withCoach(func(c *session.Coach) {
		switch action {
		case protocol.ControlPause:
			anns = c.Pause(now)
		case protocol.ControlResume:
			anns = c.Resume(now)
		case protocol.ControlStop:
			anns = c.Stop(now)
		}
	})
	if len(anns) > 0 {
		h.broadcastState(room, now)
	}
	h.announce(room, anns)
	h.maybeFinish(room, now)
}

// maybeFinish writes and broadcasts the summary once the session completes.
func (h *Hub) maybeFinish(room *Room, now time.Time) {
	var (
		done    bool
		summary session.Summary
	)
	room.withCoach(func(c *session.Coach) {
		done = c.Phase() == session.PhaseCompleted
		if done {
			summary = c.Summary(now)
		}
	})
	if !done || !room.markSummarized() {
		return
	}

	if msg, err := protocol.NewSummaryMessage(summary); err == nil {
		msg.SessionID = room.ID
		h.broadcast(room, msg, "")
	}

	if h.store != nil {
		patch := SummaryPatch(summary, now)
		if _, err := h.store.UpdateSession(context.Background(), room.ID, patch); err != nil {
			h.logger.Error("failed to save summary", "session", room.ID, "error", err)
		}
	}

	h.mu.RLock()
	cb := h.onSummary
	h.mu.RUnlock()
	if cb != nil {
		cb(room.ID, summary)
	}
}

// SummaryPatch converts a session summary into a completed session update.
func SummaryPatch(s session.Summary, end time.Time) store.SessionPatch {
	duration := s.DurationSeconds
	plankType := string(s.PlankType)
	avg := float64(s.AverageScore)
	body := float64(s.BodyAlignmentScore)
	knee := float64(s.KneePositionScore)
	stack := float64(s.ShoulderStackScore)
	completed := true
	return store.SessionPatch{
		EndTime:            &end,
		Duration:           &duration,
		PlankType:          &plankType,
		AverageScore:       &avg,
		BodyAlignmentScore: &body,
		KneePositionScore:  &knee,
		ShoulderStackScore: &stack,
		Completed:          &completed,
	}
}

func (h *Hub) persist(sessionID string, a *store.Analysis) {
	if h.store == nil {
		return
	}
	if err := h.store.CreateAnalysis(context.Background(), a); err != nil {
		h.logger.Warn("failed to store analysis", "session", sessionID, "error", err)
		return
	}
	h.analysesStored.Add(1)
}

func (h *Hub) announce(room *Room, anns []speech.Announcement) {
	if len(anns) == 0 {
		return
	}
	if err := speech.SpeakAll(context.Background(), room.speaker, anns); err != nil {
		h.logger.Warn("announcement failed", "session", room.ID, "error", err)
	}
}

// Run advances every room once per tick interval until ctx is done, so the
// grace delay and time checkpoints fire even when frames pause.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Tick()
		}
	}
}

// Tick advances every room with connected clients.
func (h *Hub) Tick() {
	now := h.now()
	for _, room := range h.GetRooms() {
		if room.ClientCount() == 0 {
			continue
		}
		var (
			anns   []speech.Announcement
			before session.Phase
			after  session.Phase
		)
		room.withCoach(func(c *session.Coach) {
			before = c.Phase()
			anns = c.Tick(now)
			after = c.Phase()
		})
		if after != before {
			h.broadcastState(room, now)
		}
		h.announce(room, anns)
	}
}

func (h *Hub) broadcastState(room *Room, now time.Time) {
	var status session.Status
	room.withCoach(func(c *session.Coach) {
		status = c.Status(now)
	})
	msg, err := protocol.NewStateMessage(status)
	if err != nil {
		return
	}
	msg.SessionID = room.ID
	h.broadcast(room, msg, "")
}

func (h *Hub) sendState(room *Room, client *Client) {
	var status session.Status
	room.withCoach(func(c *session.Coach) {
		status = c.Status(h.now())
	})
	msg, err := protocol.NewStateMessage(status)
	if err != nil {
		return
	}
	msg.SessionID = room.ID
	h.send(client, msg)
}

func (h *Hub) sendPong(client *Client, ping *protocol.Message, now time.Time) {
	var id string
	if p, err := ping.GetPingData(); err == nil {
		id = p.ID
	}
	msg, err := protocol.NewPongMessage(id, ping.Timestamp, now.UnixMilli())
	if err != nil {
		return
	}
	h.send(client, msg)
}

func (h *Hub) sendError(client *Client, reason error) {
	msg, err := protocol.NewErrorMessage(reason.Error())
	if err != nil {
		return
	}
	h.send(client, msg)
}

func (h *Hub) send(client *Client, msg *protocol.Message) {
	h.messagesSent.Add(1)
	if err := client.Send(msg); err != nil {
		h.logger.Debug("send failed", "client", client.ID, "error", err)
	}
}

// broadcast sends msg to every client of the room except the given id.
func (h *Hub) broadcast(room *Room, msg *protocol.Message, except string) {
	for _, client := range room.peers(except) {
		h.send(client, msg)
	}
}

// GetRoom returns a room by session ID
func (h *Hub) GetRoom(sessionID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[sessionID]
}

// GetRooms returns all active rooms
func (h *Hub) GetRooms() []*Room {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// RoomCount returns the number of active rooms
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Stats contains hub statistics
type Stats struct {
	RoomCount        int    `json:"room_count"`
	ClientCount      int    `json:"client_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesReceived   uint64 `json:"frames_received"`
	FramesDropped    uint64 `json:"frames_dropped"`
	FeedbackDropped  uint64 `json:"feedback_dropped"` // Corrections held back by the feedback interval
	AnalysesStored   uint64 `json:"analyses_stored"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	clients := 0
	rooms := h.GetRooms()
	for _, r := range rooms {
		clients += r.ClientCount()
	}
	return Stats{
		RoomCount:        len(rooms),
		ClientCount:      clients,
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		FramesReceived:   h.framesReceived.Load(),
		FramesDropped:    h.framesDropped.Load(),
		FeedbackDropped:  h.feedbackDropped.Load(),
		AnalysesStored:   h.analysesStored.Load(),
	}
}

// RoomInfo contains info about an active room
type RoomInfo struct {
	SessionID string         `json:"session_id"`
	Clients   int            `json:"clients"`
	Status    session.Status `json:"status"`
}

// GetRoomInfos returns info about all active rooms, ordered by session ID
func (h *Hub) GetRoomInfos() []RoomInfo {
	now := h.now()
	rooms := h.GetRooms()
	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		info := RoomInfo{SessionID: r.ID, Clients: r.ClientCount()}
		r.withCoach(func(c *session.Coach) {
			info.Status = c.Status(now)
		})
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b RoomInfo) int {
		return cmp.Compare(a.SessionID, b.SessionID)
	})
	return infos
}

// RegisterAPIRoutes registers API routes for room inspection
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	relay := api.Group("/relay")

	// List active rooms
	relay.Get("/rooms", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"rooms": h.GetRoomInfos(),
			"count": h.RoomCount(),
		})
	})

	// Get hub stats
	relay.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})
}
