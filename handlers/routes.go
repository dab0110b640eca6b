// handlers/routes.go - API route registration
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ggg436/lingosses/handlers/admin"
	"github.com/ggg436/lingosses/middleware"
)

// RegisterRoutes mounts the whole API surface. main wires the global
// middleware (recover, logger, cors, rate limiting) before calling this.
func RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Guest identity
	api.Post("/auth/guest", middleware.WriteRateLimitMiddleware(), GuestSession)

	// Course catalog
	api.Get("/courses", GetCourses)
	api.Get("/courses/:id", GetCourse)
	api.Post("/courses/:id/active", middleware.AuthMiddleware, SetActiveCourse)

	// Learn overview
	api.Get("/learn", middleware.AuthMiddleware, GetLearn)

	// Lesson sessions
	api.Get("/lessons", middleware.AuthMiddleware, GetActiveLesson)
	api.Get("/lessons/:id", middleware.AuthMiddleware, GetLesson)

	// Progress write path
	challengeGroup := api.Group("/challenges")
	challengeGroup.Use(middleware.AuthMiddleware, middleware.WriteRateLimitMiddleware())
	challengeGroup.Post("/:id/progress", UpsertChallengeProgress)
	challengeGroup.Post("/:id/mistake", ReduceHearts)

	api.Post("/hearts/refill", middleware.AuthMiddleware, middleware.WriteRateLimitMiddleware(), RefillHearts)

	// Leaderboard
	api.Get("/leaderboard", middleware.AuthMiddleware, GetLeaderboard)

	// Billing
	api.Get("/subscription", middleware.AuthMiddleware, GetSubscription)
	api.Post("/billing/checkout", middleware.AuthMiddleware, CreateBillingSession)
	api.Post("/billing/webhook", StripeWebhook)

	// Admin
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", middleware.WriteRateLimitMiddleware(), admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)

	adminProtected.Get("/courses", admin.GetCourses)
	adminProtected.Post("/courses", admin.CreateCourse)
	adminProtected.Put("/courses/:id", admin.UpdateCourse)
	adminProtected.Delete("/courses/:id", admin.DeleteCourse)

	adminProtected.Post("/units", admin.CreateUnit)
	adminProtected.Put("/units/:id", admin.UpdateUnit)
	adminProtected.Delete("/units/:id", admin.DeleteUnit)

	adminProtected.Post("/lessons", admin.CreateLesson)
	adminProtected.Put("/lessons/:id", admin.UpdateLesson)
	adminProtected.Delete("/lessons/:id", admin.DeleteLesson)

	adminProtected.Post("/challenges", admin.CreateChallenge)
	adminProtected.Put("/challenges/:id", admin.UpdateChallenge)
	adminProtected.Delete("/challenges/:id", admin.DeleteChallenge)

	adminProtected.Post("/challenge-options", admin.CreateChallengeOption)
	adminProtected.Put("/challenge-options/:id", admin.UpdateChallengeOption)
	adminProtected.Delete("/challenge-options/:id", admin.DeleteChallengeOption)
}
