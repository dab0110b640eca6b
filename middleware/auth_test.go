package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggg436/lingosses/config"
)

func setupAuthConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret-1234",
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	setupAuthConfig(t)

	token, err := GenerateToken("user_1", "Alice", "/avatar.png", false)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", AuthMiddleware, func(c *fiber.Ctx) error {
		userID, err := GetUserID(c)
		require.NoError(t, err)
		return c.JSON(fiber.Map{
			"user_id":    userID,
			"user_name":  GetUserName(c),
			"user_image": GetUserImage(c),
		})
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	setupAuthConfig(t)

	app := fiber.New()
	app.Get("/", AuthMiddleware, func(c *fiber.Ctx) error { return c.SendStatus(200) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	setupAuthConfig(t)

	app := fiber.New()
	app.Get("/", AuthMiddleware, func(c *fiber.Ctx) error { return c.SendStatus(200) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAdminAuthMiddleware_RejectsUserToken(t *testing.T) {
	setupAuthConfig(t)

	token, err := GenerateToken("user_1", "Alice", "/avatar.png", false)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", AdminAuthMiddleware, func(c *fiber.Ctx) error { return c.SendStatus(200) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestAdminAuthMiddleware_AcceptsAdminToken(t *testing.T) {
	setupAuthConfig(t)

	token, _, err := GenerateAdminToken("admin")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", AdminAuthMiddleware, func(c *fiber.Ctx) error {
		assert.Equal(t, "admin", c.Locals("adminUsername"))
		return c.SendStatus(200)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
