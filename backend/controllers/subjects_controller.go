package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/models"
	"github.com/smolci/StudyBuddy/backend/utils"
)

type SubjectsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSubjectsController(db *gorm.DB, cfg *config.Config) *SubjectsController {
	return &SubjectsController{DB: db, Cfg: cfg}
}

// GetSubjects lists the current user's subjects.
func (sc *SubjectsController) GetSubjects(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var subjects []models.Subject
	if err := sc.DB.Where("user_id = ?", userID).Order("name").Find(&subjects).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch subjects")
	}

	result := make([]fiber.Map, 0, len(subjects))
	for _, s := range subjects {
		result = append(result, fiber.Map{
			"id":   s.ID,
			"name": s.Name,
		})
	}
	return c.JSON(result)
}

// CreateSubject adds a subject for the current user.
func (sc *SubjectsController) CreateSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return utils.BadRequest(c, "Subject name is required")
	}

	subject := models.Subject{Name: name, UserID: userID}
	if err := sc.DB.Create(&subject).Error; err != nil {
		return utils.InternalServerError(c, "Could not create subject")
	}

	return utils.Created(c, fiber.Map{
		"id":   subject.ID,
		"name": subject.Name,
	})
}

// DeleteSubject removes one of the current user's subjects together with its
// topics, sessions and tasks (cascade).
func (sc *SubjectsController) DeleteSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := sc.DB.Where("id = ? AND user_id = ?", subjectID, userID).First(&subject).Error; err != nil {
		return utils.NotFound(c, "Subject not found")
	}

	if err := sc.DB.Delete(&subject).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete subject")
	}
	return utils.NoContent(c)
}

// findSubjectByNameForUser resolves a free-text subject name against the
// user's own subjects. Returns nil without error when the name is blank or
// unknown, so callers can store a session without a subject.
func findSubjectByNameForUser(db *gorm.DB, userID uint, name string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var subject models.Subject
	err := db.Where("name = ? AND user_id = ?", name, userID).First(&subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subject, nil
}
