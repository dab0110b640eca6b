// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"github.com/ggg436/lingosses/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.Course{},
		&models.Unit{},
		&models.Lesson{},
		&models.Challenge{},
		&models.ChallengeOption{},
		&models.UserProgress{},
		&models.ChallengeProgress{},
		&models.UserSubscription{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("Migrations completed")
}

// createIndexes creates indexes the hot read paths depend on
func createIndexes() {
	db := GetDB()

	// Ordered traversal of the content tree
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_units_course_order ON units(course_id, "order")`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_lessons_unit_order ON lessons(unit_id, "order")`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_challenges_lesson_order ON challenges(lesson_id, "order")`)

	// Per-user progress lookups
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenge_progress_user ON challenge_progress(user_id)")

	// Leaderboard
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_progress_points ON user_progress(points DESC)")
}
