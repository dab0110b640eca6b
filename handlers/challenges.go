// handlers/challenges.go - the progress write path
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/models"
)

// UpsertChallengeProgress marks a challenge completed. A first completion
// earns points; redoing an already-attempted challenge is practice, which
// also restores a heart. Out of hearts blocks a first attempt unless the
// user has an active subscription.
// POST /api/challenges/:id/progress
func UpsertChallengeProgress(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	challengeID, err := c.ParamsInt("id")
	if err != nil || challengeID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid challenge id"})
	}

	var challenge models.Challenge
	if err := db.First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch challenge"})
	}

	var progress models.UserProgress
	if err := db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User progress not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch user progress"})
	}

	var existing models.ChallengeProgress
	err = db.Where("user_id = ? AND challenge_id = ?", userID, challenge.ID).First(&existing).Error
	isPractice := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch challenge progress"})
	}

	// Subscription status gates the hearts check; this is a strict read.
	subscription, err := subscriptionSvc.GetUserSubscription(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch subscription"})
	}

	if progress.Hearts == 0 && !isPractice && !subscription.IsActive() {
		return c.Status(400).JSON(fiber.Map{"error": "hearts"})
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if isPractice {
			existing.Completed = true
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			if progress.Hearts < models.MaxHearts {
				progress.Hearts++
			}
		} else {
			row := models.ChallengeProgress{
				UserID:      userID,
				ChallengeID: challenge.ID,
				Completed:   true,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		progress.Points += models.PointsPerChallenge
		return tx.Save(&progress).Error
	})
	if txErr != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record progress"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"practice": isPractice,
		"hearts":   progress.Hearts,
		"points":   progress.Points,
	})
}

// ReduceHearts takes a heart for a wrong answer. Practicing an already
// completed challenge never costs hearts, and neither does an active
// subscription.
// POST /api/challenges/:id/mistake
func ReduceHearts(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	challengeID, err := c.ParamsInt("id")
	if err != nil || challengeID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid challenge id"})
	}

	var challenge models.Challenge
	if err := db.First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch challenge"})
	}

	var existing models.ChallengeProgress
	err = db.Where("user_id = ? AND challenge_id = ?", userID, challenge.ID).First(&existing).Error
	if err == nil {
		return c.Status(400).JSON(fiber.Map{"error": "practice"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch challenge progress"})
	}

	var progress models.UserProgress
	if err := db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User progress not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch user progress"})
	}

	subscription, err := subscriptionSvc.GetUserSubscription(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch subscription"})
	}
	if subscription.IsActive() {
		return c.JSON(fiber.Map{"success": true, "hearts": progress.Hearts, "unlimited": true})
	}

	if progress.Hearts == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "hearts"})
	}

	progress.Hearts--
	if err := db.Save(&progress).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update hearts"})
	}

	return c.JSON(fiber.Map{"success": true, "hearts": progress.Hearts})
}

// RefillHearts trades points for a full heart refill (the shop).
// POST /api/hearts/refill
func RefillHearts(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var progress models.UserProgress
	if err := db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User progress not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch user progress"})
	}

	if progress.Hearts == models.MaxHearts {
		return c.Status(400).JSON(fiber.Map{"error": "Hearts are already full"})
	}
	if progress.Points < models.PointsToRefill {
		return c.Status(400).JSON(fiber.Map{"error": "Not enough points"})
	}

	progress.Hearts = models.MaxHearts
	progress.Points -= models.PointsToRefill
	if err := db.Save(&progress).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to refill hearts"})
	}

	return c.JSON(fiber.Map{"success": true, "hearts": progress.Hearts, "points": progress.Points})
}
