// handlers/learn.go - the learn-page aggregate
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/services"
)

// GetLearn assembles everything the learn overview needs in one response:
// the user's progress, the unit tree with completion flags, the active
// lesson pointer, the active lesson's percentage, and subscription status.
// All reads go through the safe tier; a storage hiccup degrades the page,
// it never breaks it.
// GET /api/learn
func GetLearn(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	scope := services.NewRequestScope(userID, safeReader)

	var (
		units            []services.UnitSummary
		lessonPercentage int
	)

	// Fan out the independent reads; the scope deduplicates the
	// user-progress and course-progress lookups they share.
	var g errgroup.Group
	g.Go(func() error {
		scope.UserProgress()
		return nil
	})
	g.Go(func() error {
		units = safeReader.Units(userID)
		return nil
	})
	g.Go(func() error {
		scope.Subscription()
		return nil
	})
	g.Go(func() error {
		scope.CourseProgress()
		return nil
	})
	g.Go(func() error {
		lessonPercentage = safeReader.LessonPercentage(userID)
		return nil
	})
	_ = g.Wait() // safe tier never errors

	userProgress := scope.UserProgress()
	if userProgress == nil || userProgress.ActiveCourse == nil {
		// No course selected yet: a valid state, not an error.
		return c.JSON(fiber.Map{"redirect": "/courses"})
	}

	courseProgress := scope.CourseProgress()
	subscription := scope.Subscription()

	resp := fiber.Map{
		"success":                 true,
		"user_progress":           userProgress,
		"units":                   units,
		"lesson_percentage":       lessonPercentage,
		"has_active_subscription": subscription.IsActive(),
	}
	if courseProgress != nil {
		resp["active_lesson_id"] = courseProgress.ActiveLessonID
	}

	return c.JSON(resp)
}
