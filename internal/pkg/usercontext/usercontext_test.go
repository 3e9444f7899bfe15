package usercontext

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserContextDefaultsToAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.False(t, IsLoggedIn(c))
		assert.False(t, IsAdmin(c))
		assert.Zero(t, GetUserID(c))
		assert.Nil(t, GetUserIDPtr(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestSetUserContext(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		SetUserContext(c, UserContext{UserID: 9, Username: "Ana", IsLoggedIn: true, IsAdmin: true})
		assert.True(t, IsLoggedIn(c))
		assert.True(t, IsAdmin(c))
		assert.Equal(t, uint(9), GetUserID(c))
		require.NotNil(t, GetUserIDPtr(c))
		assert.Equal(t, uint(9), *GetUserIDPtr(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
