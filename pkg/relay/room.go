package relay

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/teslashibe/plank-coach/pkg/protocol"
	"github.com/teslashibe/plank-coach/pkg/session"
	"github.com/teslashibe/plank-coach/pkg/speech"
)

// Client is one WebSocket connection in a session room.
type Client struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a message to the client
func (c *Client) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) touch(now time.Time) {
	c.mu.Lock()
	c.LastSeen = now
	c.mu.Unlock()
}

// Room holds the clients and the coach of one session.
type Room struct {
	ID string

	mu         sync.Mutex
	coach      *session.Coach
	clients    map[string]*Client
	summarized bool

	speaker *speech.Toggle
}

func newRoom(id string, coach *session.Coach) *Room {
	return &Room{
		ID:      id,
		coach:   coach,
		clients: make(map[string]*Client),
	}
}

func (r *Room) add(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	return len(r.clients)
}

func (r *Room) remove(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
	return len(r.clients)
}

// peers returns the room's clients other than except.
func (r *Room) peers(except string) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Client, 0, len(r.clients))
	for id, c := range r.clients {
		if id != except {
			out = append(out, c)
		}
	}
	return out
}

// ClientCount returns the number of connected clients.
func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// withCoach runs fn while holding the room lock.
func (r *Room) withCoach(fn func(c *session.Coach)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.coach)
}

// markSummarized reports whether this call is the first to summarize.
func (r *Room) markSummarized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.summarized {
		return false
	}
	r.summarized = true
	return true
}

// roomSpeaker mirrors announcements to every client of a room and to an
// optional server-side speaker.
type roomSpeaker struct {
	hub   *Hub
	room  *Room
	extra speech.Speaker
}

func (s *roomSpeaker) Speak(ctx context.Context, a speech.Announcement) error {
	msg, err := protocol.NewAnnouncementMessage(a)
	if err != nil {
		return err
	}
	msg.SessionID = s.room.ID
	s.hub.broadcast(s.room, msg, "")

	if s.extra != nil {
		return s.extra.Speak(ctx, a)
	}
	return nil
}
