package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/session"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

func newApp(uc *usercontext.UserContext, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if uc != nil {
			usercontext.SetUserContext(c, *uc)
		}
		return c.Next()
	})
	app.Get("/guarded", guard, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func statusOf(t *testing.T, app *fiber.App) int {
	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAPISessionAuth(t *testing.T) {
	assert.Equal(t, fiber.StatusUnauthorized, statusOf(t, newApp(nil, RequireAPISessionAuth)))
	assert.Equal(t, fiber.StatusOK, statusOf(t, newApp(&usercontext.UserContext{UserID: 1, IsLoggedIn: true}, RequireAPISessionAuth)))
}

func TestRequireAPIAdmin(t *testing.T) {
	assert.Equal(t, fiber.StatusUnauthorized, statusOf(t, newApp(nil, RequireAPIAdmin)))
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, newApp(&usercontext.UserContext{UserID: 1, IsLoggedIn: true}, RequireAPIAdmin)))
	assert.Equal(t, fiber.StatusOK, statusOf(t, newApp(&usercontext.UserContext{UserID: 1, IsLoggedIn: true, IsAdmin: true}, RequireAPIAdmin)))
}

func TestUserContextMiddlewareWithoutStore(t *testing.T) {
	app := fiber.New()
	app.Use(UserContextMiddleware)
	app.Get("/", func(c *fiber.Ctx) error {
		assert.False(t, usercontext.IsLoggedIn(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestUserContextMiddlewareKeepsVisitorSessionID(t *testing.T) {
	previous := session.GetSessionStore()
	session.SetSessionStore(fibersession.New(fibersession.Config{KeyLookup: "cookie:planocerto_session"}))
	t.Cleanup(func() { session.SetSessionStore(previous) })

	app := fiber.New()
	app.Use(UserContextMiddleware)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(usercontext.GetUserContext(c).SessionID)
	})

	first, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	firstID, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	require.NotEmpty(t, firstID)

	cookies := first.Header.Values("Set-Cookie")
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], "planocerto_session="+string(firstID))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", "planocerto_session="+string(firstID))
	second, err := app.Test(req)
	require.NoError(t, err)
	secondID, err := io.ReadAll(second.Body)
	require.NoError(t, err)

	assert.Equal(t, string(firstID), string(secondID))
	assert.Empty(t, second.Header.Values("Set-Cookie"))
}
