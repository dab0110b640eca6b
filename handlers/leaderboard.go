// handlers/leaderboard.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/models"
	"github.com/ggg436/lingosses/utils"
)

// LeaderboardEntry is the public slice of a user's progress row.
type LeaderboardEntry struct {
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	UserImageSrc string `json:"user_image_src"`
	Points       int    `json:"points"`
}

// GetLeaderboard returns the top users by points, ten by default.
// GET /api/leaderboard?limit=10
func GetLeaderboard(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	limit := utils.ClampInt(utils.ParseIntDefault(c.Query("limit"), 10), 1, 50)

	var entries []LeaderboardEntry
	err := db.Model(&models.UserProgress{}).
		Select("user_id, user_name, user_image_src, points").
		Order("points DESC, id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
	}

	return c.JSON(fiber.Map{"success": true, "leaderboard": entries})
}
