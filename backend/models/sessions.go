package models

import (
	"time"

	"gorm.io/gorm"
)

// StudySession is one recorded stretch of studying. StartTime is stored in
// UTC; SubjectID is nullable because timer sessions may be started without
// picking a subject.
type StudySession struct {
	gorm.Model
	StartTime       time.Time `gorm:"not null;index"`
	DurationMinutes int       `gorm:"not null"`
	UserID          uint      `gorm:"not null;index"`
	SubjectID       *uint     `gorm:"index"`
	Subject         *Subject
}

type StudyTask struct {
	gorm.Model
	Description     string `gorm:"not null"`
	DurationMinutes int
	Completed       bool `gorm:"default:false"`
	UserID          uint `gorm:"not null;index"`
	SubjectID       uint `gorm:"not null"`
	Subject         *Subject
}

// TimerState is the persisted key-value blob for the countdown timer, one row
// per user. StateJSON round-trips timer.State; clients poll or subscribe and
// re-derive the display from it.
type TimerState struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex;not null"`
	StateJSON string `gorm:"type:text"`
}
