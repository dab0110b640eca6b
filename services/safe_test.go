package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ggg436/lingosses/models"
)

func newSafeReader(db *gorm.DB) *SafeReader {
	progress := NewProgressService(db)
	lessons := NewLessonService(db, progress)
	subscriptions := NewSubscriptionService(db)
	return NewSafeReader(progress, lessons, subscriptions)
}

// brokenDB opens a database with no tables so every query fails.
func brokenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func TestSafeReader_FallbacksOnStorageFailure(t *testing.T) {
	safe := newSafeReader(brokenDB(t))

	progress := safe.UserProgress("user_1")
	require.NotNil(t, progress)
	assert.Equal(t, "Development User", progress.UserName)
	assert.Equal(t, models.DefaultHearts, progress.Hearts)
	require.NotNil(t, progress.ActiveCourse)
	assert.Equal(t, "Spanish", progress.ActiveCourse.Title)

	assert.Empty(t, safe.Units("user_1"))

	courseProgress := safe.CourseProgress("user_1")
	require.NotNil(t, courseProgress)
	assert.Equal(t, uint(1), courseProgress.ActiveLessonID)

	assert.Nil(t, safe.Lesson("user_1", 1))
	assert.Equal(t, 0, safe.LessonPercentage("user_1"))
	assert.Nil(t, safe.Subscription("user_1"))
}

func TestSafeReader_PassesThroughHealthyReads(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	seedUserProgress(t, db, "user_1", course.ID)

	safe := newSafeReader(db)

	progress := safe.UserProgress("user_1")
	require.NotNil(t, progress)
	assert.Equal(t, "Test User", progress.UserName)

	units := safe.Units("user_1")
	assert.Len(t, units, 2)
}

func TestRequestScope_Memoizes(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	seedUserProgress(t, db, "user_1", course.ID)

	scope := NewRequestScope("user_1", newSafeReader(db))

	first := scope.UserProgress()
	require.NotNil(t, first)
	assert.Equal(t, 0, first.Points)

	// The memoized value survives a concurrent write to the row.
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", "user_1").
		Update("points", 100).Error)

	second := scope.UserProgress()
	assert.Equal(t, 0, second.Points)
}

func TestRequestScope_ConcurrentAccess(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	seedUserProgress(t, db, "user_1", course.ID)

	scope := NewRequestScope("user_1", newSafeReader(db))

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			if scope.UserProgress() == nil {
				t.Error("expected user progress")
			}
			if scope.CourseProgress() == nil {
				t.Error("expected course progress")
			}
			scope.Subscription()
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
