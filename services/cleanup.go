package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ggg436/lingosses/models"
)

// CleanupService handles background cleanup tasks: progress rows orphaned
// by admin content deletions, and guest accounts idle past retention.
type CleanupService struct {
	db        *gorm.DB
	interval  time.Duration
	retention time.Duration

	stop chan struct{}
	done chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService(db *gorm.DB, interval, guestRetention time.Duration) {
	cleanupService = &CleanupService{
		db:        db,
		interval:  interval,
		retention: guestRetention,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start launches the periodic cleanup worker.
func (s *CleanupService) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop shuts the worker down and waits for it to exit.
func (s *CleanupService) Stop() {
	close(s.stop)
	<-s.done
}

// RunOnce executes one cleanup pass.
func (s *CleanupService) RunOnce() {
	if n, err := s.CleanupOrphanedProgress(); err != nil {
		log.Printf("Cleanup: orphaned progress pass failed: %v", err)
	} else if n > 0 {
		log.Printf("Cleanup: removed %d orphaned progress rows", n)
	}

	if n, err := s.CleanupStaleGuests(); err != nil {
		log.Printf("Cleanup: stale guest pass failed: %v", err)
	} else if n > 0 {
		log.Printf("Cleanup: removed %d stale guest accounts", n)
	}
}

// CleanupOrphanedProgress removes challenge_progress rows whose challenge
// no longer exists (admin deletions don't cascade through gorm).
func (s *CleanupService) CleanupOrphanedProgress() (int64, error) {
	result := s.db.
		Where("challenge_id NOT IN (SELECT id FROM challenges)").
		Delete(&models.ChallengeProgress{})
	return result.RowsAffected, result.Error
}

// CleanupStaleGuests drops guest progress rows idle past the retention
// window, along with their challenge progress.
func (s *CleanupService) CleanupStaleGuests() (int64, error) {
	cutoff := time.Now().Add(-s.retention)

	var stale []models.UserProgress
	if err := s.db.
		Where("is_guest = ? AND updated_at < ?", true, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	userIDs := make([]string, len(stale))
	for i, row := range stale {
		userIDs[i] = row.UserID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id IN ?", userIDs).Delete(&models.ChallengeProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id IN ?", userIDs).Delete(&models.UserSubscription{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id IN ?", userIDs).Delete(&models.UserProgress{}).Error
	})
	if err != nil {
		return 0, err
	}

	return int64(len(stale)), nil
}
