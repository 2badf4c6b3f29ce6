// Package config provides configuration helpers for plank-coach commands.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default server configuration.
const (
	DefaultPort             = 8080
	DefaultDBPath           = "plank-coach.db"
	DefaultLogLevel         = "info"
	DefaultPreset           = "default"
	DefaultAnalysisInterval = 100 * time.Millisecond
)

// Server holds the settings of the plank-coach server binary.
type Server struct {
	Port             int
	DBPath           string
	LogLevel         string
	Preset           string
	AnalysisInterval time.Duration
}

// DefaultServer returns the server configuration used when nothing is set.
func DefaultServer() Server {
	return Server{
		Port:             DefaultPort,
		DBPath:           DefaultDBPath,
		LogLevel:         DefaultLogLevel,
		Preset:           DefaultPreset,
		AnalysisInterval: DefaultAnalysisInterval,
	}
}

// FromEnv overlays environment variables on base.
// Recognized: PORT, DB_PATH, LOG_LEVEL, COACH_PRESET, ANALYSIS_INTERVAL.
func FromEnv(base Server) (Server, error) {
	cfg := base

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("COACH_PRESET"); v != "" {
		cfg.Preset = v
	}
	if v := os.Getenv("ANALYSIS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("config: invalid ANALYSIS_INTERVAL %q", v)
		}
		cfg.AnalysisInterval = d
	}

	return cfg, nil
}

// Addr returns the listen address for the configured port.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ServerURL returns the plank-coach base URL from PLANK_COACH_URL,
// falling back to the provided default.
func ServerURL(defaultURL string) string {
	if u := os.Getenv("PLANK_COACH_URL"); u != "" {
		return u
	}
	return defaultURL
}
