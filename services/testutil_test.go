package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ggg436/lingosses/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A fresh connection would see a fresh in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Unit{},
		&models.Lesson{},
		&models.Challenge{},
		&models.ChallengeOption{},
		&models.UserProgress{},
		&models.ChallengeProgress{},
		&models.UserSubscription{},
	))

	return db
}

// seedCourse creates one course with two units of two lessons each, every
// lesson holding two challenges. Returns the course and the loaded tree in
// stored order.
func seedCourse(t *testing.T, db *gorm.DB) models.Course {
	t.Helper()

	course := models.Course{
		Title:    "Spanish",
		ImageSrc: "/es.svg",
		Units: []models.Unit{
			{
				Title: "Unit 1", Description: "Learn the basics", Order: 1,
				Lessons: []models.Lesson{
					{Title: "Nouns", Order: 1, Challenges: []models.Challenge{
						{Type: models.ChallengeSelect, Question: `Which one of these is "the man"?`, Order: 1},
						{Type: models.ChallengeAssist, Question: `"the man"`, Order: 2},
					}},
					{Title: "Verbs", Order: 2, Challenges: []models.Challenge{
						{Type: models.ChallengeSelect, Question: `Which one of these is "the robot"?`, Order: 1},
						{Type: models.ChallengeAssist, Question: `"the robot"`, Order: 2},
					}},
				},
			},
			{
				Title: "Unit 2", Description: "Common phrases", Order: 2,
				Lessons: []models.Lesson{
					{Title: "Greetings", Order: 1, Challenges: []models.Challenge{
						{Type: models.ChallengeSelect, Question: `Which one of these is "hello"?`, Order: 1},
						{Type: models.ChallengeAssist, Question: `"hello"`, Order: 2},
					}},
					{Title: "Farewells", Order: 2, Challenges: []models.Challenge{
						{Type: models.ChallengeSelect, Question: `Which one of these is "goodbye"?`, Order: 1},
						{Type: models.ChallengeAssist, Question: `"goodbye"`, Order: 2},
					}},
				},
			},
		},
	}
	require.NoError(t, db.Create(&course).Error)

	return course
}

func seedUserProgress(t *testing.T, db *gorm.DB, userID string, courseID uint) models.UserProgress {
	t.Helper()

	progress := models.UserProgress{
		UserID:         userID,
		UserName:       "Test User",
		UserImageSrc:   "/mascot.svg",
		Hearts:         models.DefaultHearts,
		ActiveCourseID: &courseID,
	}
	require.NoError(t, db.Create(&progress).Error)

	return progress
}

func completeChallenge(t *testing.T, db *gorm.DB, userID string, challengeID uint) {
	t.Helper()

	require.NoError(t, db.Create(&models.ChallengeProgress{
		UserID:      userID,
		ChallengeID: challengeID,
		Completed:   true,
	}).Error)
}
