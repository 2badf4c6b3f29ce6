package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/plank-coach/pkg/plank"
	"github.com/teslashibe/plank-coach/pkg/store"
)

// CreateSessionRequest is the request body for starting a session
type CreateSessionRequest struct {
	PlankType string `json:"plankType"`
	UserID    string `json:"userId"`
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}
	if s.hub != nil {
		resp["rooms"] = s.hub.RoomCount()
	}
	return c.JSON(resp)
}

// handleCreateSession opens a new session
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session data"})
	}
	variant, ok := plank.ParseVariant(req.PlankType)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session data"})
	}

	sess := store.NewSession(variant, req.UserID)
	if err := s.store.CreateSession(c.UserContext(), sess); err != nil {
		s.logger.Error("failed to create session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create session"})
	}

	s.logger.Info("session created", "session", sess.ID, "plankType", sess.PlankType)
	return c.JSON(sess)
}

// handleGetSession returns one session
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.store.GetSession(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Session not found"})
	}
	if err != nil {
		s.logger.Error("failed to fetch session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch session"})
	}
	return c.JSON(sess)
}

// handleUpdateSession applies a partial update
func (s *Server) handleUpdateSession(c *fiber.Ctx) error {
	var patch store.SessionPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session data"})
	}
	if patch.PlankType != nil {
		if _, ok := plank.ParseVariant(*patch.PlankType); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session data"})
		}
	}

	sess, err := s.store.UpdateSession(c.UserContext(), c.Params("id"), patch)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Session not found"})
	}
	if err != nil {
		s.logger.Error("failed to update session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update session"})
	}
	return c.JSON(sess)
}

// handleListAnalysis returns the stored frame analysis of a session
func (s *Server) handleListAnalysis(c *fiber.Ctx) error {
	rows, err := s.store.ListAnalysis(c.UserContext(), c.Params("id"))
	if err != nil {
		s.logger.Error("failed to fetch analysis", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch analysis data"})
	}
	return c.JSON(rows)
}

// handleListSessions returns a user's sessions, newest first
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "userId is required"})
	}
	sessions, err := s.store.ListSessions(c.UserContext(), userID)
	if err != nil {
		s.logger.Error("failed to list sessions", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch sessions"})
	}
	return c.JSON(sessions)
}
