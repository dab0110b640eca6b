// handlers/admin/content.go - content management CRUD
package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ggg436/lingosses/database"
	"github.com/ggg436/lingosses/models"
	"github.com/ggg436/lingosses/utils"
)

// The course/unit/lesson/challenge tree is reference data maintained here
// and read-only everywhere else.

type CourseRequest struct {
	Title    string `json:"title" validate:"required,max=100"`
	ImageSrc string `json:"image_src" validate:"max=255"`
}

type UnitRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description"`
	CourseID    uint   `json:"course_id" validate:"required"`
	Order       int    `json:"order" validate:"required,min=1"`
}

type LessonRequest struct {
	Title  string `json:"title" validate:"required,max=100"`
	UnitID uint   `json:"unit_id" validate:"required"`
	Order  int    `json:"order" validate:"required,min=1"`
}

type ChallengeRequest struct {
	LessonID uint   `json:"lesson_id" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=SELECT ASSIST"`
	Question string `json:"question" validate:"required"`
	Order    int    `json:"order" validate:"required,min=1"`
}

type ChallengeOptionRequest struct {
	ChallengeID uint    `json:"challenge_id" validate:"required"`
	Text        string  `json:"text" validate:"required"`
	Correct     bool    `json:"correct"`
	ImageSrc    *string `json:"image_src,omitempty"`
	AudioSrc    *string `json:"audio_src,omitempty"`
}

// --- courses ---

func GetCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := database.GetDB().Order("id ASC").Find(&courses).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch courses"})
	}
	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

func CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	course := models.Course{Title: req.Title, ImageSrc: req.ImageSrc}
	if err := database.GetDB().Create(&course).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create course"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "course": course})
}

func UpdateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	var course models.Course
	if err := findByParam(c, &course); err != nil {
		return err
	}

	course.Title = req.Title
	course.ImageSrc = req.ImageSrc
	if err := database.GetDB().Save(&course).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update course"})
	}
	return c.JSON(fiber.Map{"success": true, "course": course})
}

func DeleteCourse(c *fiber.Ctx) error {
	return deleteByParam(c, &models.Course{})
}

// --- units ---

func CreateUnit(c *fiber.Ctx) error {
	var req UnitRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	if err := requireExists(c, &models.Course{}, req.CourseID, "Course"); err != nil {
		return err
	}

	unit := models.Unit{Title: req.Title, Description: req.Description, CourseID: req.CourseID, Order: req.Order}
	if err := database.GetDB().Create(&unit).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create unit"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "unit": unit})
}

func UpdateUnit(c *fiber.Ctx) error {
	var req UnitRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	var unit models.Unit
	if err := findByParam(c, &unit); err != nil {
		return err
	}

	unit.Title = req.Title
	unit.Description = req.Description
	unit.CourseID = req.CourseID
	unit.Order = req.Order
	if err := database.GetDB().Save(&unit).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update unit"})
	}
	return c.JSON(fiber.Map{"success": true, "unit": unit})
}

func DeleteUnit(c *fiber.Ctx) error {
	return deleteByParam(c, &models.Unit{})
}

// --- lessons ---

func CreateLesson(c *fiber.Ctx) error {
	var req LessonRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	if err := requireExists(c, &models.Unit{}, req.UnitID, "Unit"); err != nil {
		return err
	}

	lesson := models.Lesson{Title: req.Title, UnitID: req.UnitID, Order: req.Order}
	if err := database.GetDB().Create(&lesson).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create lesson"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "lesson": lesson})
}

func UpdateLesson(c *fiber.Ctx) error {
	var req LessonRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	var lesson models.Lesson
	if err := findByParam(c, &lesson); err != nil {
		return err
	}

	lesson.Title = req.Title
	lesson.UnitID = req.UnitID
	lesson.Order = req.Order
	if err := database.GetDB().Save(&lesson).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update lesson"})
	}
	return c.JSON(fiber.Map{"success": true, "lesson": lesson})
}

func DeleteLesson(c *fiber.Ctx) error {
	return deleteByParam(c, &models.Lesson{})
}

// --- challenges ---

func CreateChallenge(c *fiber.Ctx) error {
	var req ChallengeRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	if err := requireExists(c, &models.Lesson{}, req.LessonID, "Lesson"); err != nil {
		return err
	}

	challenge := models.Challenge{
		LessonID: req.LessonID,
		Type:     models.ChallengeType(req.Type),
		Question: req.Question,
		Order:    req.Order,
	}
	if err := database.GetDB().Create(&challenge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create challenge"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "challenge": challenge})
}

func UpdateChallenge(c *fiber.Ctx) error {
	var req ChallengeRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	var challenge models.Challenge
	if err := findByParam(c, &challenge); err != nil {
		return err
	}

	challenge.LessonID = req.LessonID
	challenge.Type = models.ChallengeType(req.Type)
	challenge.Question = req.Question
	challenge.Order = req.Order
	if err := database.GetDB().Save(&challenge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update challenge"})
	}
	return c.JSON(fiber.Map{"success": true, "challenge": challenge})
}

func DeleteChallenge(c *fiber.Ctx) error {
	return deleteByParam(c, &models.Challenge{})
}

// --- challenge options ---

func CreateChallengeOption(c *fiber.Ctx) error {
	var req ChallengeOptionRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	if err := requireExists(c, &models.Challenge{}, req.ChallengeID, "Challenge"); err != nil {
		return err
	}

	option := models.ChallengeOption{
		ChallengeID: req.ChallengeID,
		Text:        req.Text,
		Correct:     req.Correct,
		ImageSrc:    req.ImageSrc,
		AudioSrc:    req.AudioSrc,
	}
	if err := database.GetDB().Create(&option).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create option"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "challenge_option": option})
}

func UpdateChallengeOption(c *fiber.Ctx) error {
	var req ChallengeOptionRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	var option models.ChallengeOption
	if err := findByParam(c, &option); err != nil {
		return err
	}

	option.ChallengeID = req.ChallengeID
	option.Text = req.Text
	option.Correct = req.Correct
	option.ImageSrc = req.ImageSrc
	option.AudioSrc = req.AudioSrc
	if err := database.GetDB().Save(&option).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update option"})
	}
	return c.JSON(fiber.Map{"success": true, "challenge_option": option})
}

func DeleteChallengeOption(c *fiber.Ctx) error {
	return deleteByParam(c, &models.ChallengeOption{})
}

// --- shared plumbing ---

// The helpers return *fiber.Error so the app-level error handler renders
// the JSON envelope; handlers just propagate.

func parse(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func requireExists(c *fiber.Ctx, model interface{}, id uint, name string) error {
	var count int64
	if err := database.GetDB().Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Lookup failed")
	}
	if count == 0 {
		return fiber.NewError(fiber.StatusBadRequest, name+" does not exist")
	}
	return nil
}

func findByParam(c *fiber.Ctx, dest interface{}) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}

	if err := database.GetDB().First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Lookup failed")
	}
	return nil
}

func deleteByParam(c *fiber.Ctx, model interface{}) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}

	result := database.GetDB().Delete(model, id)
	if result.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Delete failed")
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	}
	return c.JSON(fiber.Map{"success": true})
}
