package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

type trackRequest struct {
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	SessionID string                 `json:"session_id"`
}

// HandleTrack stores a client side analytics event. Only whitelisted event
// types are accepted; storage problems never fail the request.
func (a *APIController) HandleTrack(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"success": false})
	}

	eventType := analytics.EventType(req.Type)
	if !analytics.ClientAllowed(eventType) {
		return errorJSON(c, fiber.StatusBadRequest, "event_not_allowed", "Event type not allowed")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = usercontext.GetUserContext(c).SessionID
	}
	if len(sessionID) > 64 {
		sessionID = sessionID[:64]
	}

	a.tracker.Track(c.UserContext(), analytics.Event{
		Type:      eventType,
		UserID:    usercontext.GetUserIDPtr(c),
		SessionID: sessionID,
		Payload:   req.Payload,
		IP:        clientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})

	return c.JSON(fiber.Map{"success": true})
}
