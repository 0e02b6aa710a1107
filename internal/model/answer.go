package model

import (
	"time"
)

// Answer rows are written once, at grading time.
type Answer struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	SubmissionID uint      `json:"submission_id" gorm:"not null;uniqueIndex:idx_answer_submission_question"`
	QuestionID   uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_submission_question;index"`
	Question     Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Answer       *string   `json:"answer" gorm:"type:varchar(1)"`
	IsCorrect    bool      `json:"is_correct" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
}
