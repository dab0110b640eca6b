// handlers/lessons.go - lesson session endpoints
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/services"
)

// GetActiveLesson serves the session for the user's active lesson.
// GET /api/lessons
func GetActiveLesson(c *fiber.Ctx) error {
	return serveLesson(c, 0)
}

// GetLesson serves the session for an explicit lesson.
// GET /api/lessons/:id
func GetLesson(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid lesson id"})
	}
	return serveLesson(c, uint(id))
}

func serveLesson(c *fiber.Ctx, lessonID uint) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := lessonSvc.GetLesson(userID, lessonID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// Missing lesson is a redirect, never an error dialog.
			return c.JSON(fiber.Map{"redirect": "/learn"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch lesson"})
	}
	if session == nil {
		return c.JSON(fiber.Map{"redirect": "/learn"})
	}

	userProgress := safeReader.UserProgress(userID)
	if userProgress == nil {
		return c.JSON(fiber.Map{"redirect": "/learn"})
	}

	subscription := safeReader.Subscription(userID)

	return c.JSON(fiber.Map{
		"success":                 true,
		"lesson":                  session,
		"hearts":                  userProgress.Hearts,
		"completion_percentage":   session.CompletionPercentage,
		"has_active_subscription": subscription.IsActive(),
	})
}
