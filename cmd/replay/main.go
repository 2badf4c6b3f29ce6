// replay: stream recorded pose landmarks to a plank-coach server
//
// Each non-empty line of the input file is one estimator payload, for
// example {"poseLandmarks":[{"x":0.1,"y":0.5,"z":0,"visibility":0.9}, ...]}.
// Announcements and the final summary are printed as they arrive.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/plank-coach/internal/config"
	"github.com/teslashibe/plank-coach/internal/httpc"
	"github.com/teslashibe/plank-coach/internal/log"
	"github.com/teslashibe/plank-coach/pkg/protocol"
	"github.com/teslashibe/plank-coach/pkg/store"
)

var (
	serverURL = flag.String("url", config.ServerURL("http://localhost:8080"), "plank-coach base URL")
	sessionID = flag.String("session", "", "Existing session ID (created when empty)")
	plankType = flag.String("type", "unknown", "Plank type for a new session")
	userID    = flag.String("user", "", "User ID for a new session")
	file      = flag.String("file", "-", "Landmark file, one JSON payload per line (- for stdin)")
	fps       = flag.Float64("rate", 10, "Frames per second to send")
	logLevel  = flag.String("log-level", "info", "Log level")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if *fps <= 0 {
		return fmt.Errorf("rate must be positive")
	}

	in, err := openInput(*file)
	if err != nil {
		return err
	}
	defer in.Close()

	id := *sessionID
	if id == "" {
		var sess store.Session
		req := map[string]string{"plankType": *plankType, "userId": *userID}
		if err := httpc.PostJSON(ctx, strings.TrimRight(*serverURL, "/")+"/api/sessions", req, &sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		id = sess.ID
		log.Info("session created", "session", id)
	}

	wsURL, err := socketURL(*serverURL, id)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readLoop(conn)
	}()

	sent, err := sendFrames(ctx, conn, in, time.Duration(float64(time.Second) / *fps))
	log.Info("frames sent", "count", sent)
	if err != nil {
		return err
	}

	if err := sendControl(conn, protocol.ControlStop); err != nil {
		return err
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("no summary received")
	case <-ctx.Done():
	}
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// socketURL maps http(s)://host to ws(s)://host/ws/session/<id>.
func socketURL(base, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", base, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/session/" + url.PathEscape(id)
	return u.String(), nil
}

func sendFrames(ctx context.Context, conn *websocket.Conn, in io.Reader, interval time.Duration) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	sent := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := protocol.NewLandmarksMessage(json.RawMessage(line))
		if err != nil {
			log.Warn("skipping line", "line", sent+1, "error", err)
			continue
		}
		data, err := msg.Bytes()
		if err != nil {
			return sent, err
		}

		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		case <-ticker.C:
		}

		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return sent, fmt.Errorf("send frame: %w", err)
		}
		sent++
	}
	return sent, scanner.Err()
}

func sendControl(conn *websocket.Conn, action protocol.ControlAction) error {
	msg, err := protocol.NewControlMessage(action)
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop prints server messages until the summary arrives or the
// connection closes.
func readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("bad message", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeAnnouncement:
			if a, err := msg.GetAnnouncementData(); err == nil {
				fmt.Printf("🗣  %s\n", a.Text)
			}
		case protocol.TypeState:
			if s, err := msg.GetStateData(); err == nil {
				log.Info("state", "phase", s.Phase, "variant", s.Variant, "clock", s.Clock)
			}
		case protocol.TypeAnalysis:
			if a, err := msg.GetAnalysisData(); err == nil {
				log.Debug("analysis", "score", a.OverallScore, "feedback", a.Feedback)
			}
		case protocol.TypeError:
			if e, err := msg.GetErrorData(); err == nil {
				log.Warn("server error", "message", e.Message)
			}
		case protocol.TypeSummary:
			if s, err := msg.GetSummaryData(); err == nil {
				fmt.Printf("\n%s, %d s, average %d (%s)\n", s.PlankType.Label(), s.DurationSeconds, s.AverageScore, s.Rating)
				fmt.Printf("   alignment %d  knees %d  shoulders %d  over %d frames\n",
					s.BodyAlignmentScore, s.KneePositionScore, s.ShoulderStackScore, s.Frames)
			}
			return
		}
	}
}
