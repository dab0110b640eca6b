// models/models.go - Course Content Models
package models

import (
	"time"
)

// ChallengeType enumerates the supported quiz challenge kinds.
type ChallengeType string

const (
	ChallengeSelect ChallengeType = "SELECT"
	ChallengeAssist ChallengeType = "ASSIST"
)

// Course represents a language course (Spanish, French, ...)
type Course struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null;size:100"`
	ImageSrc  string    `json:"image_src" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Units     []Unit    `json:"units,omitempty" gorm:"foreignKey:CourseID"`
}

// Unit groups lessons inside a course, ordered by Order.
type Unit struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:100"`
	Description string    `json:"description" gorm:"type:text"`
	CourseID    uint      `json:"course_id" gorm:"not null;index"`
	Course      *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Order       int       `json:"order" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	Lessons     []Lesson  `json:"lessons,omitempty" gorm:"foreignKey:UnitID"`
}

// Lesson belongs to a unit, ordered by Order.
type Lesson struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	Title      string      `json:"title" gorm:"not null;size:100"`
	UnitID     uint        `json:"unit_id" gorm:"not null;index"`
	Unit       *Unit       `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Order      int         `json:"order" gorm:"not null"`
	CreatedAt  time.Time   `json:"created_at"`
	Challenges []Challenge `json:"challenges,omitempty" gorm:"foreignKey:LessonID"`
}

// Challenge is a single quiz question inside a lesson.
type Challenge struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	LessonID  uint              `json:"lesson_id" gorm:"not null;index"`
	Lesson    *Lesson           `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	Type      ChallengeType     `json:"type" gorm:"not null;size:20"`
	Question  string            `json:"question" gorm:"not null;type:text"`
	Order     int               `json:"order" gorm:"not null"`
	CreatedAt time.Time         `json:"created_at"`
	Options   []ChallengeOption `json:"challenge_options,omitempty" gorm:"foreignKey:ChallengeID"`
	// Per-user rows, always loaded filtered by user id.
	Progress []ChallengeProgress `json:"challenge_progress,omitempty" gorm:"foreignKey:ChallengeID"`
}

// ChallengeOption is one selectable answer for a challenge.
// At least one option of a SELECT challenge is expected to be correct;
// that invariant lives with the seeded content, not with the read path.
type ChallengeOption struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ChallengeID uint      `json:"challenge_id" gorm:"not null;index"`
	Text        string    `json:"text" gorm:"not null;type:text"`
	Correct     bool      `json:"correct" gorm:"default:false"`
	ImageSrc    *string   `json:"image_src,omitempty" gorm:"size:255"`
	AudioSrc    *string   `json:"audio_src,omitempty" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (Unit) TableName() string {
	return "units"
}

func (Lesson) TableName() string {
	return "lessons"
}

func (Challenge) TableName() string {
	return "challenges"
}

func (ChallengeOption) TableName() string {
	return "challenge_options"
}
