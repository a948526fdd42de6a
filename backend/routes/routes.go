package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/controllers"
	"github.com/smolci/StudyBuddy/backend/middleware"
	"github.com/smolci/StudyBuddy/backend/timer"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, timerManager *timer.Manager) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Subject routes
	subjectsController := controllers.NewSubjectsController(db, cfg)
	subjects := app.Group("/api/subjects", authMiddleware)
	subjects.Get("/", subjectsController.GetSubjects)
	subjects.Post("/", subjectsController.CreateSubject)
	subjects.Delete("/:id", subjectsController.DeleteSubject)

	// Topic and question routes
	topicsController := controllers.NewTopicsController(db, cfg)
	questionsController := controllers.NewQuestionsController(db, cfg)
	topics := app.Group("/api/topics", authMiddleware)
	topics.Get("/", topicsController.GetTopics)
	topics.Post("/", topicsController.CreateTopic)
	topics.Delete("/:id", topicsController.DeleteTopic)
	topics.Get("/:topicId/questions", questionsController.GetQuestions)
	topics.Post("/:topicId/questions", questionsController.CreateQuestion)
	app.Put("/api/questions/:id", authMiddleware, questionsController.UpdateQuestion)
	app.Delete("/api/questions/:id", authMiddleware, questionsController.DeleteQuestion)

	// Study session routes
	sessionsController := controllers.NewSessionsController(db, cfg)
	sessions := app.Group("/api/sessions", authMiddleware)
	sessions.Get("/", sessionsController.GetSessions)
	sessions.Post("/", sessionsController.CreateSession)
	sessions.Post("/from-timer", sessionsController.CreateFromTimer)

	// Study task routes
	tasksController := controllers.NewTasksController(db, cfg)
	tasks := app.Group("/api/tasks", authMiddleware)
	tasks.Get("/", tasksController.GetTasks)
	tasks.Post("/", tasksController.CreateTask)
	tasks.Post("/:id/complete", tasksController.CompleteTask)
	tasks.Delete("/:id", tasksController.DeleteTask)

	// Quiz routes
	quizzesController := controllers.NewQuizzesController(db, cfg)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Get("/", quizzesController.GetQuizzes)
	quizzes.Post("/generate", quizzesController.Generate)

	// Stats routes
	statsController := controllers.NewStatsController(db, cfg)
	app.Get("/api/stats/weekly", authMiddleware, statsController.GetWeeklyStats)

	// Timer routes
	timerController := controllers.NewTimerController(db, cfg, timerManager)
	timerGroup := app.Group("/api/timer", authMiddleware)
	timerGroup.Get("/", timerController.GetTimer)
	timerGroup.Post("/start", timerController.Start)
	timerGroup.Post("/pause", timerController.Pause)
	timerGroup.Post("/resume", timerController.Resume)
	timerGroup.Post("/reset", timerController.Reset)
}
