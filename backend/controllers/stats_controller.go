package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/stats"
	"github.com/smolci/StudyBuddy/backend/utils"
)

type StatsController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Aggregator *stats.Aggregator
}

func NewStatsController(db *gorm.DB, cfg *config.Config) *StatsController {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &StatsController{
		DB:         db,
		Cfg:        cfg,
		Aggregator: stats.NewAggregator(&stats.GormSessionSource{DB: db}, loc),
	}
}

// GetWeeklyStats godoc
// @Summary Weekly study statistics
// @Description Per-day minute totals for the Monday-starting week containing the reference date, plus best day, most studied subject and week-over-week change
// @Tags stats
// @Accept json
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} stats.WeeklyStats
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /stats/weekly [get]
func (sc *StatsController) GetWeeklyStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ref := time.Now()
	if date := c.Query("date"); date != "" {
		ref, err = time.ParseInLocation("2006-01-02", date, sc.Aggregator.Location)
		if err != nil {
			return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		}
	}

	weekly, err := sc.Aggregator.ComputeWeeklyStats(userID, ref)
	if err != nil {
		return utils.InternalServerError(c, "Failed to compute statistics")
	}
	return c.JSON(weekly)
}
