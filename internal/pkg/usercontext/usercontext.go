package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
	// SessionID identifies anonymous visitors in analytics; empty without a session store
	SessionID string `json:"-"`
}

// Anonymous is the context of a request without a logged-in user.
func Anonymous(sessionID string) UserContext {
	return UserContext{SessionID: sessionID}
}

// SetUserContext stores uc on the request.
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return uc
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetUserIDPtr returns the current user's ID for nullable columns
func GetUserIDPtr(c *fiber.Ctx) *uint {
	uc := GetUserContext(c)
	if !uc.IsLoggedIn {
		return nil
	}
	id := uc.UserID
	return &id
}
