// handlers/courses.go - course catalog and course selection
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/models"
)

// GetCourses lists the catalog.
// GET /api/courses
func GetCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := db.Order("id ASC").Find(&courses).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch courses"})
	}

	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

// GetCourse returns one course with its units and lessons in stored order.
// GET /api/courses/:id
func GetCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid course id"})
	}

	var course models.Course
	err = db.
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		Preload("Units.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch course"})
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// SetActiveCourse selects a course as the user's active one, creating
// their progress row on first contact.
// POST /api/courses/:id/active
func SetActiveCourse(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid course id"})
	}

	var course models.Course
	err = db.
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		Preload("Units.Lessons").
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch course"})
	}

	if len(course.Units) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Course is empty"})
	}
	hasLessons := false
	for _, unit := range course.Units {
		if len(unit.Lessons) > 0 {
			hasLessons = true
			break
		}
	}
	if !hasLessons {
		return c.Status(400).JSON(fiber.Map{"error": "Course is empty"})
	}

	courseID := course.ID
	isGuest, _ := c.Locals("isGuest").(bool)

	var progress models.UserProgress
	err = db.Where("user_id = ?", userID).First(&progress).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = models.UserProgress{
			UserID:         userID,
			UserName:       middleware.GetUserName(c),
			UserImageSrc:   middleware.GetUserImage(c),
			Hearts:         models.DefaultHearts,
			Points:         0,
			IsGuest:        isGuest,
			ActiveCourseID: &courseID,
		}
		if err := db.Create(&progress).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to create user progress"})
		}
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch user progress"})
	default:
		progress.ActiveCourseID = &courseID
		progress.UserName = middleware.GetUserName(c)
		progress.UserImageSrc = middleware.GetUserImage(c)
		if err := db.Save(&progress).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to update user progress"})
		}
	}

	return c.JSON(fiber.Map{"success": true, "active_course_id": courseID})
}
