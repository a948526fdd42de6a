package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/controllers"
	"github.com/smolci/StudyBuddy/backend/middleware"
	"github.com/smolci/StudyBuddy/backend/routes"
	"github.com/smolci/StudyBuddy/backend/timer"
	"github.com/smolci/StudyBuddy/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Timer manager: finished countdowns are recorded as study sessions.
	timerManager := timer.NewManager(
		&timer.GormStateStore{DB: db},
		func(userID uint, final timer.Snapshot) error {
			return controllers.RecordTimerSession(db, userID, final.DurationMinutes, final.SubjectName)
		},
		logger,
	)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, timerManager)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
