package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ggg436/lingosses/database"
	"github.com/ggg436/lingosses/models"
)

// Imports a full course tree from a JSON file. Usage:
//
//	go run ./cmd/course-importer courses.json
//
// The file holds an array of courses, each with nested units, lessons,
// challenges and options. Existing courses with the same title are skipped.

type JSONOption struct {
	Text     string  `json:"text"`
	Correct  bool    `json:"correct"`
	ImageSrc *string `json:"image_src,omitempty"`
	AudioSrc *string `json:"audio_src,omitempty"`
}

type JSONChallenge struct {
	Type     string       `json:"type"`
	Question string       `json:"question"`
	Order    int          `json:"order"`
	Options  []JSONOption `json:"options"`
}

type JSONLesson struct {
	Title      string          `json:"title"`
	Order      int             `json:"order"`
	Challenges []JSONChallenge `json:"challenges"`
}

type JSONUnit struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Order       int          `json:"order"`
	Lessons     []JSONLesson `json:"lessons"`
}

type JSONCourse struct {
	Title    string     `json:"title"`
	ImageSrc string     `json:"image_src"`
	Units    []JSONUnit `json:"units"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: course-importer <courses.json>")
	}

	_ = godotenv.Load()

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var courses []JSONCourse
	if err := json.Unmarshal(data, &courses); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	database.InitDB()
	defer database.CloseDB()
	db := database.GetDB()

	fmt.Printf("Found %d courses\n\n", len(courses))

	imported := 0
	for _, jc := range courses {
		var existing int64
		db.Model(&models.Course{}).Where("title = ?", jc.Title).Count(&existing)
		if existing > 0 {
			fmt.Printf("Skipping %s (already exists)\n", jc.Title)
			continue
		}

		fmt.Printf("Importing: %s\n", jc.Title)

		course := models.Course{Title: jc.Title, ImageSrc: jc.ImageSrc}
		for _, ju := range jc.Units {
			unit := models.Unit{Title: ju.Title, Description: ju.Description, Order: ju.Order}
			for _, jl := range ju.Lessons {
				lesson := models.Lesson{Title: jl.Title, Order: jl.Order}
				for _, jch := range jl.Challenges {
					challenge := models.Challenge{
						Type:     models.ChallengeType(jch.Type),
						Question: jch.Question,
						Order:    jch.Order,
					}
					for _, jo := range jch.Options {
						challenge.Options = append(challenge.Options, models.ChallengeOption{
							Text:     jo.Text,
							Correct:  jo.Correct,
							ImageSrc: jo.ImageSrc,
							AudioSrc: jo.AudioSrc,
						})
					}
					lesson.Challenges = append(lesson.Challenges, challenge)
				}
				unit.Lessons = append(unit.Lessons, lesson)
			}
			course.Units = append(course.Units, unit)
		}

		if err := db.Create(&course).Error; err != nil {
			log.Printf("Error importing %s: %v\n", jc.Title, err)
			continue
		}
		imported++
	}

	fmt.Printf("\n✓ Imported %d courses\n", imported)

	var count int64
	db.Model(&models.Course{}).Count(&count)
	fmt.Printf("✓ Total courses in database: %d\n", count)
}
