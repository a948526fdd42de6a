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

type TopicsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTopicsController(db *gorm.DB, cfg *config.Config) *TopicsController {
	return &TopicsController{DB: db, Cfg: cfg}
}

// GetTopics lists every topic of the current user, joined with its subject
// name, ordered by subject then topic (the quiz dropdown order).
func (tc *TopicsController) GetTopics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var topics []models.Topic
	if err := tc.DB.Preload("Subject").
		Joins("JOIN subjects ON subjects.id = topics.subject_id").
		Where("subjects.user_id = ?", userID).
		Order("subjects.name, topics.name").
		Find(&topics).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch topics")
	}

	result := make([]fiber.Map, 0, len(topics))
	for _, t := range topics {
		subjectName := ""
		if t.Subject != nil {
			subjectName = t.Subject.Name
		}
		result = append(result, fiber.Map{
			"id":         t.ID,
			"name":       t.Name,
			"subject_id": t.SubjectID,
			"label":      subjectName + " — " + t.Name,
		})
	}
	return c.JSON(result)
}

// CreateTopic adds a topic under one of the user's subjects.
func (tc *TopicsController) CreateTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name      string `json:"name"`
		SubjectID uint   `json:"subject_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if strings.TrimSpace(input.Name) == "" {
		return utils.BadRequest(c, "Topic name is required")
	}

	var subject models.Subject
	if err := tc.DB.Where("id = ? AND user_id = ?", input.SubjectID, userID).First(&subject).Error; err != nil {
		return utils.NotFound(c, "Subject not found")
	}

	topic := models.Topic{Name: strings.TrimSpace(input.Name), SubjectID: subject.ID}
	if err := tc.DB.Create(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not create topic")
	}

	return utils.Created(c, fiber.Map{
		"id":         topic.ID,
		"name":       topic.Name,
		"subject_id": topic.SubjectID,
	})
}

// DeleteTopic removes a topic (and its questions) if the current user owns
// the parent subject.
func (tc *TopicsController) DeleteTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	topicID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	topic, err := topicForUser(tc.DB, userID, uint(topicID))
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	if err := tc.DB.Delete(topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete topic")
	}
	return utils.NoContent(c)
}

// topicForUser fetches a topic only when the user owns its subject.
func topicForUser(db *gorm.DB, userID, topicID uint) (*models.Topic, error) {
	var topic models.Topic
	err := db.Preload("Subject").
		Joins("JOIN subjects ON subjects.id = topics.subject_id").
		Where("topics.id = ? AND subjects.user_id = ?", topicID, userID).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}
