package models

import "gorm.io/gorm"

type Quiz struct {
	gorm.Model
	UserID  uint `gorm:"not null;index"`
	TopicID uint `gorm:"not null"`

	QuizQuestions []QuizQuestion `gorm:"constraint:OnDelete:CASCADE"`
}

type QuizQuestion struct {
	gorm.Model
	QuizID     uint `gorm:"not null;index"`
	QuestionID uint `gorm:"not null"`
	Question   *Question
}
