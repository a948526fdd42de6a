package controllers

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/models"
	"github.com/smolci/StudyBuddy/backend/timer"
	"github.com/smolci/StudyBuddy/backend/utils"
)

type TimerController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Manager *timer.Manager
}

func NewTimerController(db *gorm.DB, cfg *config.Config, manager *timer.Manager) *TimerController {
	return &TimerController{DB: db, Cfg: cfg, Manager: manager}
}

// GetTimer returns the current snapshot; clients derive their display from
// endTime/secondsLeft rather than trusting any cached counter.
func (tc *TimerController) GetTimer(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return c.JSON(tc.Manager.ForUser(userID).Refresh())
}

// Start begins a new countdown.
func (tc *TimerController) Start(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
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

	store := tc.Manager.ForUser(userID)
	if err := store.StartNew(input.DurationMinutes, input.SubjectName); err != nil {
		return utils.InternalServerError(c, "Could not persist timer state")
	}
	return c.JSON(store.Snapshot())
}

// Pause freezes a running countdown; a no-op otherwise.
func (tc *TimerController) Pause(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	store := tc.Manager.ForUser(userID)
	if err := store.Pause(); err != nil {
		return utils.InternalServerError(c, "Could not persist timer state")
	}
	return c.JSON(store.Snapshot())
}

// Resume continues a paused countdown; a no-op otherwise.
func (tc *TimerController) Resume(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	store := tc.Manager.ForUser(userID)
	if err := store.Resume(); err != nil {
		return utils.InternalServerError(c, "Could not persist timer state")
	}
	return c.JSON(store.Snapshot())
}

// Reset clears the timer. Elapsed time is recorded as a partial study session
// first, so an interrupted countdown still counts toward the week.
func (tc *TimerController) Reset(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	store := tc.Manager.ForUser(userID)

	// A naturally completed countdown was already recorded by the finish
	// callback; only an interrupted one still carries unsaved elapsed time.
	if snap := store.Snapshot(); !snap.Finished {
		if elapsed := store.ElapsedMinutes(); elapsed > 0 {
			if err := RecordTimerSession(tc.DB, userID, elapsed, snap.SubjectName); err != nil {
				// The timer state stays intact so the elapsed value survives
				// for a retry.
				return utils.InternalServerError(c, "Could not save study session")
			}
		}
	}

	if err := store.Reset(); err != nil {
		return utils.InternalServerError(c, "Could not clear timer state")
	}
	return c.JSON(store.Snapshot())
}

// RecordTimerSession persists a session measured by the timer, resolving the
// free-text subject name. Shared by the reset path and the natural-completion
// callback.
func RecordTimerSession(db *gorm.DB, userID uint, elapsedMinutes float64, subjectName string) error {
	if elapsedMinutes <= 0 {
		return nil
	}

	subject, err := findSubjectByNameForUser(db, userID, subjectName)
	if err != nil {
		return err
	}

	session := models.StudySession{
		StartTime:       time.Now().UTC(),
		DurationMinutes: int(math.Max(1, math.Round(elapsedMinutes))),
		UserID:          userID,
	}
	if subject != nil {
		session.SubjectID = &subject.ID
	}
	return db.Create(&session).Error
}
