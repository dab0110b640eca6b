package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ggg436/lingosses/models"
)

// CompletionPolicy decides when a challenge counts as completed given the
// user's progress rows for it. The unit listing historically used AnyRow
// while the lesson detail used AllRows; both are kept as explicit,
// configurable policies instead of two silently different hard-codes.
type CompletionPolicy int

const (
	// CompletionAnyRow: completed once any progress row is marked completed.
	CompletionAnyRow CompletionPolicy = iota
	// CompletionAllRows: completed only when rows exist and every one is
	// marked completed.
	CompletionAllRows
)

// ChallengeCompleted applies a completion policy to a challenge's
// (user-filtered) progress rows. No rows is never completed.
func ChallengeCompleted(ch models.Challenge, policy CompletionPolicy) bool {
	if len(ch.Progress) == 0 {
		return false
	}

	if policy == CompletionAllRows {
		for _, row := range ch.Progress {
			if !row.Completed {
				return false
			}
		}
		return true
	}

	for _, row := range ch.Progress {
		if row.Completed {
			return true
		}
	}
	return false
}

// LessonStatus is a lesson annotated with its derived completion flag.
type LessonStatus struct {
	models.Lesson
	Completed bool `json:"completed"`
}

// UnitSummary is a unit whose lessons carry completion flags.
type UnitSummary struct {
	models.Unit
	Lessons []LessonStatus `json:"lessons"`
}

// CourseProgress points at the next actionable lesson. ActiveLesson is nil
// when every lesson in the active course is complete.
type CourseProgress struct {
	ActiveLesson   *models.Lesson `json:"active_lesson,omitempty"`
	ActiveLessonID uint           `json:"active_lesson_id,omitempty"`
}

// ProgressService is the strict-tier read path over the progress data.
// All methods are pure reads; storage failures surface as DataSourceError.
type ProgressService struct {
	db *gorm.DB

	// UnitPolicy flags lessons on the unit listing. AnyRow by default.
	UnitPolicy CompletionPolicy
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db, UnitPolicy: CompletionAnyRow}
}

// GetUserProgress returns the user's progress row with the active course
// preloaded, or nil when the user has not started yet.
func (s *ProgressService) GetUserProgress(userID string) (*models.UserProgress, error) {
	if userID == "" {
		return nil, nil
	}

	var progress models.UserProgress
	err := s.db.Preload("ActiveCourse").
		Where("user_id = ?", userID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dataSourceErr("user progress", err)
	}

	return &progress, nil
}

// GetUnits returns the active course's units with per-lesson completion
// flags. A lesson with zero challenges is never completed; otherwise it is
// completed when every challenge passes the unit policy.
func (s *ProgressService) GetUnits(userID string) ([]UnitSummary, error) {
	progress, err := s.GetUserProgress(userID)
	if err != nil {
		return nil, err
	}
	if progress == nil || progress.ActiveCourseID == nil {
		return []UnitSummary{}, nil
	}

	units, err := s.loadCourseTree(userID, *progress.ActiveCourseID)
	if err != nil {
		return nil, dataSourceErr("units", err)
	}

	summaries := make([]UnitSummary, 0, len(units))
	for _, unit := range units {
		summary := UnitSummary{Unit: unit, Lessons: make([]LessonStatus, 0, len(unit.Lessons))}
		for _, lesson := range unit.Lessons {
			completed := len(lesson.Challenges) > 0
			for _, ch := range lesson.Challenges {
				if !ChallengeCompleted(ch, s.UnitPolicy) {
					completed = false
					break
				}
			}
			lesson.Challenges = nil
			summary.Lessons = append(summary.Lessons, LessonStatus{Lesson: lesson, Completed: completed})
		}
		summary.Unit.Lessons = nil
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// GetCourseProgress walks the active course in (unit order, lesson order)
// and returns the first lesson containing a challenge that is not done:
// either no progress rows at all, or at least one row left incomplete.
// This is deliberately not the complement of the unit-listing policy; the
// exact rule is load-bearing for which lesson the quiz opens next.
func (s *ProgressService) GetCourseProgress(userID string) (*CourseProgress, error) {
	progress, err := s.GetUserProgress(userID)
	if err != nil {
		return nil, err
	}
	if progress == nil || progress.ActiveCourseID == nil {
		return nil, nil
	}

	units, err := s.loadCourseTree(userID, *progress.ActiveCourseID)
	if err != nil {
		return nil, dataSourceErr("course progress", err)
	}

	for ui := range units {
		for li := range units[ui].Lessons {
			lesson := units[ui].Lessons[li]
			for _, ch := range lesson.Challenges {
				if challengeNeedsWork(ch) {
					unit := units[ui]
					unit.Lessons = nil
					lesson.Unit = &unit
					return &CourseProgress{
						ActiveLesson:   &lesson,
						ActiveLessonID: lesson.ID,
					}, nil
				}
			}
		}
	}

	// Everything complete: no active lesson to point at.
	return &CourseProgress{}, nil
}

// challengeNeedsWork mirrors the active-lesson rule: missing rows entirely,
// or any row explicitly left incomplete.
func challengeNeedsWork(ch models.Challenge) bool {
	if len(ch.Progress) == 0 {
		return true
	}
	for _, row := range ch.Progress {
		if !row.Completed {
			return true
		}
	}
	return false
}

// loadCourseTree fetches units -> lessons -> challenges for a course with
// the user's progress rows attached, everything in stored order with id as
// the deterministic tie-breaker.
func (s *ProgressService) loadCourseTree(userID string, courseID uint) ([]models.Unit, error) {
	var units []models.Unit
	err := s.db.
		Where("course_id = ?", courseID).
		Order(`"order" ASC, id ASC`).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		Preload("Lessons.Challenges", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		Preload("Lessons.Challenges.Progress", "user_id = ?", userID).
		Find(&units).Error
	return units, err
}
