package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/ggg436/lingosses/models"
)

// SessionChallenge is a challenge annotated with its completion flag for
// the requesting user.
type SessionChallenge struct {
	models.Challenge
	Completed bool `json:"completed"`
}

// LessonSession is the quiz-ready view of one lesson: ordered challenges
// with their options and per-challenge completion, plus the derived
// completion percentage.
type LessonSession struct {
	LessonID             uint               `json:"lesson_id"`
	Title                string             `json:"title"`
	UnitID               uint               `json:"unit_id"`
	Order                int                `json:"order"`
	Challenges           []SessionChallenge `json:"challenges"`
	CompletionPercentage int                `json:"completion_percentage"`
}

// LessonService assembles lesson sessions. It leans on ProgressService for
// the active-lesson pointer when no explicit lesson id is given.
type LessonService struct {
	db       *gorm.DB
	progress *ProgressService

	// Policy flags challenges on the lesson detail. AllRows by default,
	// which is stricter than the unit listing on purpose.
	Policy CompletionPolicy
}

func NewLessonService(db *gorm.DB, progress *ProgressService) *LessonService {
	return &LessonService{db: db, progress: progress, Policy: CompletionAllRows}
}

// GetLesson builds the session for lessonID, or for the user's active
// lesson when lessonID is zero. Returns (nil, nil) when there is no active
// lesson to resolve, and ErrNotFound when an explicit lesson is missing.
func (s *LessonService) GetLesson(userID string, lessonID uint) (*LessonSession, error) {
	if userID == "" {
		return nil, nil
	}

	if lessonID == 0 {
		courseProgress, err := s.progress.GetCourseProgress(userID)
		if err != nil {
			return nil, err
		}
		if courseProgress == nil || courseProgress.ActiveLessonID == 0 {
			return nil, nil
		}
		lessonID = courseProgress.ActiveLessonID
	}

	var lesson models.Lesson
	err := s.db.
		Preload("Challenges", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		Preload("Challenges.Options").
		Preload("Challenges.Progress", "user_id = ?", userID).
		First(&lesson, lessonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, dataSourceErr("lesson", err)
	}

	session := &LessonSession{
		LessonID:   lesson.ID,
		Title:      lesson.Title,
		UnitID:     lesson.UnitID,
		Order:      lesson.Order,
		Challenges: make([]SessionChallenge, 0, len(lesson.Challenges)),
	}

	completedCount := 0
	for _, ch := range lesson.Challenges {
		completed := ChallengeCompleted(ch, s.Policy)
		if completed {
			completedCount++
		}
		ch.Progress = nil
		session.Challenges = append(session.Challenges, SessionChallenge{Challenge: ch, Completed: completed})
	}

	session.CompletionPercentage = percentage(completedCount, len(session.Challenges))

	return session, nil
}

// GetLessonPercentage returns the completion percentage of the user's
// active lesson, 0 when there is none.
func (s *LessonService) GetLessonPercentage(userID string) (int, error) {
	courseProgress, err := s.progress.GetCourseProgress(userID)
	if err != nil {
		return 0, err
	}
	if courseProgress == nil || courseProgress.ActiveLessonID == 0 {
		return 0, nil
	}

	session, err := s.GetLesson(userID, courseProgress.ActiveLessonID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, nil
	}

	return session.CompletionPercentage, nil
}

// percentage guards the zero-challenge case so the result is always an
// integer in [0, 100].
func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
