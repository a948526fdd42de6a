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

type TasksController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTasksController(db *gorm.DB, cfg *config.Config) *TasksController {
	return &TasksController{DB: db, Cfg: cfg}
}

// GetTasks lists the current user's open tasks.
func (tc *TasksController) GetTasks(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var tasks []models.StudyTask
	if err := tc.DB.Preload("Subject").
		Where("user_id = ? AND completed = false", userID).
		Order("created_at").
		Find(&tasks).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch tasks")
	}

	result := make([]fiber.Map, 0, len(tasks))
	for _, t := range tasks {
		subjectName := ""
		if t.Subject != nil {
			subjectName = t.Subject.Name
		}
		result = append(result, fiber.Map{
			"id":               t.ID,
			"description":      t.Description,
			"duration_minutes": t.DurationMinutes,
			"subject_name":     subjectName,
		})
	}
	return c.JSON(result)
}

// CreateTask adds a task from the quick-add flow: free-text description plus
// the subject picked by name.
func (tc *TasksController) CreateTask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Description     string  `json:"description"`
		SubjectName     string  `json:"subjectName"`
		DurationMinutes float64 `json:"durationMinutes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty_description"})
	}
	if strings.TrimSpace(input.SubjectName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "subject_missing"})
	}

	subject, err := findSubjectByNameForUser(tc.DB, userID, input.SubjectName)
	if err != nil {
		return utils.InternalServerError(c, "Could not resolve subject")
	}
	if subject == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "subject_not_found"})
	}

	task := models.StudyTask{
		Description:     description,
		DurationMinutes: int(input.DurationMinutes),
		UserID:          userID,
		SubjectID:       subject.ID,
	}
	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.InternalServerError(c, "Could not create task")
	}

	return utils.Created(c, fiber.Map{
		"task": fiber.Map{
			"id":          task.ID,
			"description": task.Description,
			"subjectName": subject.Name,
		},
	})
}

// CompleteTask marks a task done.
func (tc *TasksController) CompleteTask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	taskID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid task ID")
	}

	var task models.StudyTask
	if err := tc.DB.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return utils.NotFound(c, "Task not found")
	}

	task.Completed = true
	if err := tc.DB.Save(&task).Error; err != nil {
		return utils.InternalServerError(c, "Could not update task")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Task completed"})
}

// DeleteTask removes a task.
func (tc *TasksController) DeleteTask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	taskID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid task ID")
	}

	var task models.StudyTask
	if err := tc.DB.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return utils.NotFound(c, "Task not found")
	}

	if err := tc.DB.Delete(&task).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete task")
	}
	return utils.NoContent(c)
}
