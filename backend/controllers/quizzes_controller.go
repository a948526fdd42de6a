package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/models"
	"github.com/smolci/StudyBuddy/backend/quiz"
	"github.com/smolci/StudyBuddy/backend/utils"
)

type QuizzesController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Generator *quiz.Generator
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config) *QuizzesController {
	return &QuizzesController{
		DB:        db,
		Cfg:       cfg,
		Generator: quiz.NewGenerator(&quiz.GormQuestionSource{DB: db}),
	}
}

// Generate godoc
// @Summary Generate a quiz
// @Description Picks and shuffles questions from one of the user's topics
// @Tags quizzes
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/generate [post]
func (qc *QuizzesController) Generate(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		TopicID uint `json:"topicId"`
		Count   int  `json:"count"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	// The topic must belong to the requesting user.
	topic, err := topicForUser(qc.DB, userID, input.TopicID)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	questions, err := qc.Generator.Generate(topic.ID, input.Count)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate quiz")
	}

	// Empty topics yield an empty quiz; nothing gets persisted for those.
	var quizID uint
	if len(questions) > 0 {
		record := models.Quiz{UserID: userID, TopicID: topic.ID}
		for _, q := range questions {
			record.QuizQuestions = append(record.QuizQuestions, models.QuizQuestion{QuestionID: q.QuestionID})
		}
		if err := qc.DB.Create(&record).Error; err != nil {
			return utils.InternalServerError(c, "Could not save quiz")
		}
		quizID = record.ID
	}

	topicName := topic.Name
	if topic.Subject != nil {
		topicName = topic.Subject.Name + " — " + topic.Name
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"quiz_id":    quizID,
		"topic_id":   topic.ID,
		"topic_name": topicName,
		"questions":  questions,
	})
}

// GetQuizzes lists the user's previously generated quizzes.
func (qc *QuizzesController) GetQuizzes(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var quizzes []models.Quiz
	if err := qc.DB.Preload("QuizQuestions").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&quizzes).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch quizzes")
	}

	result := make([]fiber.Map, 0, len(quizzes))
	for _, q := range quizzes {
		result = append(result, fiber.Map{
			"id":         q.ID,
			"topic_id":   q.TopicID,
			"created_at": q.CreatedAt,
			"questions":  len(q.QuizQuestions),
		})
	}
	return c.JSON(result)
}
