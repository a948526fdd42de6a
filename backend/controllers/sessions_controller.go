package controllers

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/models"
	"github.com/smolci/StudyBuddy/backend/utils"
)

type SessionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSessionsController(db *gorm.DB, cfg *config.Config) *SessionsController {
	return &SessionsController{DB: db, Cfg: cfg}
}

// GetSessions lists the current user's study sessions, newest first.
func (sc *SessionsController) GetSessions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var sessions []models.StudySession
	if err := sc.DB.Preload("Subject").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&sessions).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch sessions")
	}

	result := make([]fiber.Map, 0, len(sessions))
	for _, s := range sessions {
		subjectName := ""
		if s.Subject != nil {
			subjectName = s.Subject.Name
		}
		result = append(result, fiber.Map{
			"id":               s.ID,
			"start_time":       s.StartTime,
			"duration_minutes": s.DurationMinutes,
			"subject_name":     subjectName,
		})
	}
	return c.JSON(result)
}

// CreateSession records a manually entered study session.
func (sc *SessionsController) CreateSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		StartTime       time.Time `json:"start_time"`
		DurationMinutes int       `json:"duration_minutes"`
		SubjectID       *uint     `json:"subject_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.DurationMinutes <= 0 {
		return utils.BadRequest(c, "Invalid duration")
	}

	start := input.StartTime
	if start.IsZero() {
		start = time.Now().UTC()
	}

	if input.SubjectID != nil {
		var subject models.Subject
		if err := sc.DB.Where("id = ? AND user_id = ?", *input.SubjectID, userID).First(&subject).Error; err != nil {
			return utils.NotFound(c, "Subject not found")
		}
	}

	session := models.StudySession{
		StartTime:       start.UTC(),
		DurationMinutes: input.DurationMinutes,
		UserID:          userID,
		SubjectID:       input.SubjectID,
	}
	if err := sc.DB.Create(&session).Error; err != nil {
		return utils.InternalServerError(c, "Could not create session")
	}
	return utils.Created(c, fiber.Map{"session_id": session.ID})
}

// CreateFromTimer records the session the countdown timer just measured. The
// subject arrives as the free-text name the timer was started with and is
// resolved against the user's subjects; an unknown name stores the session
// without a subject rather than dropping the elapsed time.
func (sc *SessionsController) CreateFromTimer(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		DurationMinutes float64 `json:"durationMinutes"`
		SubjectName     string  `json:"subjectName"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.DurationMinutes <= 0 {
		return utils.BadRequest(c, "Invalid duration")
	}

	subject, err := findSubjectByNameForUser(sc.DB, userID, input.SubjectName)
	if err != nil {
		return utils.InternalServerError(c, "Could not resolve subject")
	}

	session := models.StudySession{
		StartTime:       time.Now().UTC(),
		DurationMinutes: int(math.Max(1, math.Round(input.DurationMinutes))),
		UserID:          userID,
	}
	if subject != nil {
		session.SubjectID = &subject.ID
	}

	if err := sc.DB.Create(&session).Error; err != nil {
		return utils.InternalServerError(c, "Could not create session")
	}
	return c.JSON(fiber.Map{"session_id": session.ID})
}
