// handlers/handlers.go - shared handler wiring
package handlers

import (
	"gorm.io/gorm"

	"github.com/ggg436/lingosses/config"
	"github.com/ggg436/lingosses/services"
)

var (
	db *gorm.DB

	progressSvc     *services.ProgressService
	lessonSvc       *services.LessonService
	subscriptionSvc *services.SubscriptionService
	safeReader      *services.SafeReader
	billingClient   *services.BillingClient
)

// Init wires the handler package to its services. Must run before any
// route is served; tests call it against an sqlite database.
func Init(database *gorm.DB, cfg *config.Config) {
	db = database

	progressSvc = services.NewProgressService(db)
	lessonSvc = services.NewLessonService(db, progressSvc)
	subscriptionSvc = services.NewSubscriptionService(db)
	safeReader = services.NewSafeReader(progressSvc, lessonSvc, subscriptionSvc)
	billingClient = services.NewBillingClient(cfg)
}
