package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ggg436/lingosses/config"
	"github.com/ggg436/lingosses/database"
	"github.com/ggg436/lingosses/handlers"
	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/services"
)

func main() {
	cfg := config.LoadConfig()

	database.InitDB()
	defer database.CloseDB()

	database.SeedDefaultCourses()

	handlers.Init(database.GetDB(), cfg)

	// Background cleanup of orphaned progress and stale guests
	if cfg.CleanupEnabled {
		services.InitCleanupService(
			database.GetDB(),
			time.Duration(cfg.CleanupIntervalHours)*time.Hour,
			time.Duration(cfg.GuestRetentionDays)*24*time.Hour,
		)
		services.GetCleanupService().Start()
		defer services.GetCleanupService().Stop()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	handlers.RegisterRoutes(app)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	log.Printf("HTTP server starting on port %s", cfg.Port)
	log.Printf("Environment: %s", cfg.AppEnv)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if config.AppConfig != nil && config.AppConfig.AppEnv == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
