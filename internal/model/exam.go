package model

import (
	"time"

	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusUpcoming  ExamStatus = "upcoming"
	ExamStatusActive    ExamStatus = "active"
	ExamStatusCompleted ExamStatus = "completed"
)

type Exam struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Title           string         `json:"title" gorm:"not null"`
	Subject         string         `json:"subject" gorm:"not null"`
	ClassName       string         `json:"class_name" gorm:"not null;index"`
	Topic           string         `json:"topic,omitempty"`
	StartTime       time.Time      `json:"start_time" gorm:"not null"`
	EndTime         time.Time      `json:"end_time" gorm:"not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	Status          ExamStatus     `json:"status" gorm:"type:varchar(16);not null;default:'upcoming'"`
	CreatedBy       uint           `json:"created_by" gorm:"not null;index"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectiveStatus derives the status from the exam window. Draft is the only
// stored status that overrides the clock.
func (e *Exam) EffectiveStatus(now time.Time) ExamStatus {
	if e.Status == ExamStatusDraft {
		return ExamStatusDraft
	}
	switch {
	case now.Before(e.StartTime):
		return ExamStatusUpcoming
	case now.Before(e.EndTime):
		return ExamStatusActive
	default:
		return ExamStatusCompleted
	}
}
