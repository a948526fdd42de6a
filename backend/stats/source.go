package stats

import (
	"time"

	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/models"
)

// GormSessionSource reads study sessions from the database.
type GormSessionSource struct {
	DB *gorm.DB
}

func (s *GormSessionSource) SessionsInRange(userID uint, startUTC, endUTC time.Time) ([]models.StudySession, error) {
	var sessions []models.StudySession
	err := s.DB.Preload("Subject").
		Where("user_id = ? AND start_time >= ? AND start_time < ? AND duration_minutes > 0",
			userID, startUTC, endUTC).
		Find(&sessions).Error
	return sessions, err
}
