// plank-coach: live plank coaching server
// Accepts pose landmark streams over WebSocket, scores them and speaks
// coaching cues back, and keeps session history in SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/plank-coach/internal/config"
	"github.com/teslashibe/plank-coach/internal/log"
	"github.com/teslashibe/plank-coach/pkg/api"
	"github.com/teslashibe/plank-coach/pkg/relay"
	"github.com/teslashibe/plank-coach/pkg/session"
	"github.com/teslashibe/plank-coach/pkg/store"
)

var (
	version   = "1.0.0"
	accessLog = flag.Bool("access-log", false, "Log every HTTP request")
)

func main() {
	flag.Parse()

	cfg, err := config.FromEnv(config.DefaultServer())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Error("plank-coach stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server) error {
	coachCfg, err := session.ConfigByName(cfg.Preset)
	if err != nil {
		return err
	}
	coachCfg.AnalysisInterval = cfg.AnalysisInterval

	db, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	logger := log.L()
	hub := relay.NewHub(coachCfg, relay.WithStore(db), relay.WithLogger(logger))
	hub.OnSummary(func(sessionID string, s session.Summary) {
		logger.Info("session summary",
			"session", sessionID,
			"duration", s.DurationSeconds,
			"plankType", s.PlankType,
			"averageScore", s.AverageScore,
			"rating", s.Rating)
	})

	opts := []api.Option{api.WithLogger(logger)}
	if *accessLog {
		opts = append(opts, api.WithAccessLog())
	}
	server := api.NewServer(db, hub, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("plank-coach starting",
			"version", version,
			"addr", cfg.Addr(),
			"preset", cfg.Preset,
			"db", cfg.DBPath)
		errCh <- server.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore picks the in-memory store for an empty or ":memory:" path.
func openStore(path string) (store.Store, error) {
	if path == "" || path == ":memory:" {
		log.Warn("using in-memory session store, history is lost on exit")
		return store.NewMemoryStore(), nil
	}
	return store.OpenSQLite(path)
}
