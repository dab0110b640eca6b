// database/seed.go - Default Content Seeder
package database

import (
	"log"

	"github.com/ggg436/lingosses/models"
)

// SeedDefaultCourses inserts a minimal starter catalog when the courses
// table is empty. Real content comes through cmd/course-importer or the
// admin API.
func SeedDefaultCourses() {
	db := GetDB()

	var count int64
	if err := db.Model(&models.Course{}).Count(&count).Error; err != nil {
		log.Printf("Seed check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	log.Println("Seeding default courses...")

	courses := []models.Course{
		{
			Title:    "Spanish",
			ImageSrc: "/es.svg",
			Units: []models.Unit{
				{
					Title:       "Unit 1",
					Description: "Learn the basics of Spanish",
					Order:       1,
					Lessons: []models.Lesson{
						{
							Title: "Nouns",
							Order: 1,
							Challenges: []models.Challenge{
								{
									Type:     models.ChallengeSelect,
									Question: `Which one of these is "the man"?`,
									Order:    1,
									Options: []models.ChallengeOption{
										{Text: "el hombre", Correct: true, ImageSrc: strPtr("/man.svg"), AudioSrc: strPtr("/es_man.mp3")},
										{Text: "la mujer", Correct: false, ImageSrc: strPtr("/woman.svg"), AudioSrc: strPtr("/es_woman.mp3")},
										{Text: "el robot", Correct: false, ImageSrc: strPtr("/robot.svg"), AudioSrc: strPtr("/es_robot.mp3")},
									},
								},
								{
									Type:     models.ChallengeAssist,
									Question: `"the man"`,
									Order:    2,
									Options: []models.ChallengeOption{
										{Text: "el hombre", Correct: true, AudioSrc: strPtr("/es_man.mp3")},
										{Text: "la mujer", Correct: false, AudioSrc: strPtr("/es_woman.mp3")},
									},
								},
							},
						},
						{Title: "Verbs", Order: 2},
					},
				},
			},
		},
		{Title: "French", ImageSrc: "/fr.svg"},
		{Title: "Croatian", ImageSrc: "/hr.svg"},
		{Title: "Italian", ImageSrc: "/it.svg"},
	}

	for i := range courses {
		if err := db.Create(&courses[i]).Error; err != nil {
			log.Printf("Failed to seed course %q: %v", courses[i].Title, err)
		}
	}

	log.Println("Default courses seeded")
}

func strPtr(s string) *string {
	return &s
}
