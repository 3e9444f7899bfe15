package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/auth"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates an account. The new user logs in separately.
func (a *APIController) HandleRegister(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req auth.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, err := a.auth.Register(ctx, req)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return errorJSON(c, fiber.StatusBadRequest, "email_taken", "Email already registered")
		case errors.As(err, &verrs):
			return validationError(c, err)
		default:
			return internalError(c, "Failed to create account", err)
		}
	}

	a.tracker.Track(ctx, analytics.Event{
		Type:      analytics.EventSignupCompleted,
		UserID:    &user.ID,
		SessionID: usercontext.GetUserContext(c).SessionID,
		Payload:   map[string]interface{}{"email": user.Email},
		IP:        clientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})

	a.badges.CheckQuietly(ctx, user.ID)
	if user.ReferredByID != nil {
		a.badges.CheckQuietly(ctx, *user.ReferredByID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "user_id": user.ID})
}

// HandleLogin authenticates the credentials and starts a session
func (a *APIController) HandleLogin(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, err := a.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		}
		return internalError(c, "Failed to authenticate", err)
	}

	if err := auth.StartSession(c, a.sessions, user); err != nil {
		return internalError(c, "Failed to start session", err)
	}
	log.Infof("[Auth] User %d logged in", user.ID)

	a.tracker.Track(ctx, analytics.Event{
		Type:      analytics.EventLogin,
		UserID:    &user.ID,
		IP:        clientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})

	return c.JSON(fiber.Map{"user": fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"is_admin": user.Role == models.ROLE_ADMIN,
	}})
}

// HandleLogout destroys the current session
func (a *APIController) HandleLogout(c *fiber.Ctx) error {
	if err := auth.EndSession(c, a.sessions); err != nil {
		return internalError(c, "Failed to end session", err)
	}
	return c.JSON(fiber.Map{"success": true})
}
