// models/progress.go - Per-User Progress Models
package models

import (
	"time"
)

const (
	// MaxHearts is the heart ceiling for non-subscribers.
	MaxHearts = 5
	// DefaultHearts is what a fresh user starts with.
	DefaultHearts = 5
	// PointsPerChallenge is awarded for each completed challenge.
	PointsPerChallenge = 10
	// PointsToRefill is the shop price of a full heart refill.
	PointsToRefill = 10
)

// UserProgress is the single per-user progress row. UserID is the opaque
// identifier handed to us by the identity provider, not a local foreign key.
type UserProgress struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex;not null;size:64"`
	UserName     string    `json:"user_name" gorm:"size:100;default:'User'"`
	UserImageSrc string    `json:"user_image_src" gorm:"size:255;default:'/mascot.svg'"`
	Points       int       `json:"points" gorm:"default:0"`
	Hearts       int       `json:"hearts" gorm:"default:5"`
	IsGuest      bool      `json:"is_guest" gorm:"default:false"`
	// Weak reference: the course the user is currently working through.
	ActiveCourseID *uint     `json:"active_course_id" gorm:"index"`
	ActiveCourse   *Course   `json:"active_course,omitempty" gorm:"foreignKey:ActiveCourseID"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ChallengeProgress is one per-user, per-challenge completion record.
// More than one row per (user, challenge) pair is tolerated by the read
// path; the write path upserts a single row.
type ChallengeProgress struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"not null;index:idx_challenge_progress_user_challenge;size:64"`
	ChallengeID uint       `json:"challenge_id" gorm:"not null;index:idx_challenge_progress_user_challenge"`
	Challenge   *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

func (ChallengeProgress) TableName() string {
	return "challenge_progress"
}
