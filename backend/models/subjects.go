package models

import "gorm.io/gorm"

type Subject struct {
	gorm.Model
	Name   string `gorm:"not null"`
	UserID uint   `gorm:"not null;index"`

	Topics        []Topic        `gorm:"constraint:OnDelete:CASCADE"`
	StudySessions []StudySession `gorm:"constraint:OnDelete:CASCADE"`
	StudyTasks    []StudyTask    `gorm:"constraint:OnDelete:CASCADE"`
}

type Topic struct {
	gorm.Model
	Name      string `gorm:"not null"`
	SubjectID uint   `gorm:"not null;index"`
	Subject   *Subject

	Questions []Question `gorm:"constraint:OnDelete:CASCADE"`
}

type Question struct {
	gorm.Model
	Text          string `gorm:"not null"`
	CorrectAnswer string `gorm:"not null"`
	WrongAnswer1  string
	WrongAnswer2  string
	WrongAnswer3  string
	TopicID       uint `gorm:"not null;index"`
}
