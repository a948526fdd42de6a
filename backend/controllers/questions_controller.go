package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/models"
	"github.com/smolci/StudyBuddy/backend/utils"
)

type QuestionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuestionsController(db *gorm.DB, cfg *config.Config) *QuestionsController {
	return &QuestionsController{DB: db, Cfg: cfg}
}

type questionInput struct {
	Text          string `json:"text"`
	CorrectAnswer string `json:"correct_answer"`
	WrongAnswer1  string `json:"wrong_answer_1"`
	WrongAnswer2  string `json:"wrong_answer_2"`
	WrongAnswer3  string `json:"wrong_answer_3"`
}

// GetQuestions lists the questions of one of the user's topics.
func (qc *QuestionsController) GetQuestions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	topicID, err := strconv.Atoi(c.Params("topicId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	if _, err := topicForUser(qc.DB, userID, uint(topicID)); err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	var questions []models.Question
	if err := qc.DB.Where("topic_id = ?", topicID).Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch questions")
	}
	return c.JSON(questions)
}

// CreateQuestion adds a question with one correct and up to three wrong
// answers.
func (qc *QuestionsController) CreateQuestion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	topicID, err := strconv.Atoi(c.Params("topicId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	topic, err := topicForUser(qc.DB, userID, uint(topicID))
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	var input questionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if strings.TrimSpace(input.Text) == "" || strings.TrimSpace(input.CorrectAnswer) == "" {
		return utils.BadRequest(c, "Question text and correct answer are required")
	}

	question := models.Question{
		Text:          input.Text,
		CorrectAnswer: input.CorrectAnswer,
		WrongAnswer1:  input.WrongAnswer1,
		WrongAnswer2:  input.WrongAnswer2,
		WrongAnswer3:  input.WrongAnswer3,
		TopicID:       topic.ID,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}
	return utils.Created(c, question)
}

// UpdateQuestion edits an existing question.
func (qc *QuestionsController) UpdateQuestion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	question, err := questionForUser(qc.DB, userID, uint(questionID))
	if err != nil {
		return utils.NotFound(c, "Question not found")
	}

	var input questionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if strings.TrimSpace(input.Text) != "" {
		question.Text = input.Text
	}
	if strings.TrimSpace(input.CorrectAnswer) != "" {
		question.CorrectAnswer = input.CorrectAnswer
	}
	question.WrongAnswer1 = input.WrongAnswer1
	question.WrongAnswer2 = input.WrongAnswer2
	question.WrongAnswer3 = input.WrongAnswer3

	if err := qc.DB.Save(question).Error; err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}
	return c.JSON(question)
}

// DeleteQuestion removes a question.
func (qc *QuestionsController) DeleteQuestion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	question, err := questionForUser(qc.DB, userID, uint(questionID))
	if err != nil {
		return utils.NotFound(c, "Question not found")
	}

	if err := qc.DB.Delete(question).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete question")
	}
	return utils.NoContent(c)
}

func questionForUser(db *gorm.DB, userID, questionID uint) (*models.Question, error) {
	var question models.Question
	err := db.Joins("JOIN topics ON topics.id = questions.topic_id").
		Joins("JOIN subjects ON subjects.id = topics.subject_id").
		Where("questions.id = ? AND subjects.user_id = ?", questionID, userID).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}
