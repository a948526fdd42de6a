package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string

	Subjects      []Subject
	StudySessions []StudySession
	StudyTasks    []StudyTask
	Quizzes       []Quiz
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
