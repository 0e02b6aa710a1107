package model

import (
	"time"
)

type SubmissionStatus string

const (
	SubmissionInProgress SubmissionStatus = "in_progress"
	SubmissionCompleted  SubmissionStatus = "completed"
)

type Submission struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	ExamID    uint             `json:"exam_id" gorm:"not null;uniqueIndex:idx_submission_exam_user"`
	Exam      Exam             `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	UserID    uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_submission_exam_user;index"`
	StartTime time.Time        `json:"start_time" gorm:"not null"`
	EndTime   *time.Time       `json:"end_time,omitempty"`
	Score     *int             `json:"score,omitempty"`
	Status    SubmissionStatus `json:"status" gorm:"type:varchar(16);not null;default:'in_progress'"`
	Answers   []Answer         `json:"answers,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (s *Submission) IsCompleted() bool {
	return s.Status == SubmissionCompleted
}
