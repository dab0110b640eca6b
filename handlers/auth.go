// handlers/auth.go - guest identity
package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ggg436/lingosses/middleware"
)

// The real identity provider lives outside this service and issues the
// tokens our middleware verifies. The guest flow below is the only
// identity this backend mints itself: a throwaway id for trying the app
// without an account.

type GuestSessionRequest struct {
	GuestName string `json:"guest_name,omitempty"`
}

// GuestSession creates a guest identity and signs a token for it.
// POST /api/auth/guest
func GuestSession(c *fiber.Ctx) error {
	var req GuestSessionRequest
	// An empty body is fine; the name is optional.
	_ = c.BodyParser(&req)

	suffix := uuid.New().String()[:8]
	userID := "guest_" + uuid.New().String()

	guestName := req.GuestName
	if guestName == "" {
		guestName = fmt.Sprintf("Guest_%s", suffix)
	}

	token, err := middleware.GenerateToken(userID, guestName, "/mascot.svg", true)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"token":     token,
		"user_id":   userID,
		"user_name": guestName,
		"is_guest":  true,
	})
}
