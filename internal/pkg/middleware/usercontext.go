package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/session"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
func UserContextMiddleware(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		usercontext.SetUserContext(c, usercontext.Anonymous(""))
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		// On error: set as anonymous user
		usercontext.SetUserContext(c, usercontext.Anonymous(""))
		return c.Next()
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		sessionID := sess.ID()
		// persist new visitor sessions so the cookie keeps the id stable
		if sess.Fresh() {
			if err := sess.Save(); err != nil {
				log.Warnf("[UserContext] Failed to save visitor session: %v", err)
				sessionID = ""
			}
		}
		usercontext.SetUserContext(c, usercontext.Anonymous(sessionID))
		return c.Next()
	}

	username, _ := sess.Get(usercontext.KeyUsername).(string)
	role, _ := sess.Get(usercontext.KeyRole).(string)
	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    role == models.ROLE_ADMIN,
		SessionID:  sess.ID(),
	})
	return c.Next()
}
