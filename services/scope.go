package services

import (
	"sync"

	"github.com/ggg436/lingosses/models"
)

// RequestScope memoizes the reads several endpoints share (user progress,
// course progress, subscription) for the duration of one request. It is
// created per request and passed explicitly; there is no cross-request
// cache and nothing to invalidate. Safe for concurrent use so fan-out
// goroutines within the request can share it.
type RequestScope struct {
	userID string
	safe   *SafeReader

	mu sync.Mutex

	userProgress     *models.UserProgress
	userProgressDone bool

	courseProgress     *CourseProgress
	courseProgressDone bool

	subscription     *models.UserSubscription
	subscriptionDone bool
}

func NewRequestScope(userID string, safe *SafeReader) *RequestScope {
	return &RequestScope{userID: userID, safe: safe}
}

func (rs *RequestScope) UserProgress() *models.UserProgress {
	rs.mu.Lock()
	if rs.userProgressDone {
		defer rs.mu.Unlock()
		return rs.userProgress
	}
	rs.mu.Unlock()

	progress := rs.safe.UserProgress(rs.userID)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if !rs.userProgressDone {
		rs.userProgress = progress
		rs.userProgressDone = true
	}
	return rs.userProgress
}

func (rs *RequestScope) CourseProgress() *CourseProgress {
	rs.mu.Lock()
	if rs.courseProgressDone {
		defer rs.mu.Unlock()
		return rs.courseProgress
	}
	rs.mu.Unlock()

	progress := rs.safe.CourseProgress(rs.userID)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if !rs.courseProgressDone {
		rs.courseProgress = progress
		rs.courseProgressDone = true
	}
	return rs.courseProgress
}

func (rs *RequestScope) Subscription() *models.UserSubscription {
	rs.mu.Lock()
	if rs.subscriptionDone {
		defer rs.mu.Unlock()
		return rs.subscription
	}
	rs.mu.Unlock()

	sub := rs.safe.Subscription(rs.userID)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if !rs.subscriptionDone {
		rs.subscription = sub
		rs.subscriptionDone = true
	}
	return rs.subscription
}
