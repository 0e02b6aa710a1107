package dto

import "time"

// QuestionResponse is the teacher's view of a question, answer key included.
type QuestionResponse struct {
	ID            uint              `json:"id"`
	ExamID        uint              `json:"exam_id"`
	Content       string            `json:"content"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Points        int               `json:"points"`
	Difficulty    string            `json:"difficulty"`
	Topic         string            `json:"topic,omitempty"`
	Position      int               `json:"position"`
	Explanation   string            `json:"explanation,omitempty"`
}

// StudentQuestionResponse never carries the answer key.
type StudentQuestionResponse struct {
	ID         uint              `json:"id"`
	Content    string            `json:"content"`
	Options    map[string]string `json:"options"`
	Points     int               `json:"points"`
	Difficulty string            `json:"difficulty"`
	Topic      string            `json:"topic,omitempty"`
	Position   int               `json:"position"`
}

type ExamResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Subject         string             `json:"subject"`
	ClassName       string             `json:"class_name"`
	Topic           string             `json:"topic,omitempty"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         time.Time          `json:"end_time"`
	DurationMinutes int                `json:"duration_minutes"`
	Status          string             `json:"status"`
	CreatedBy       uint               `json:"created_by"`
	QuestionCount   int                `json:"question_count"`
	MaxScore        int                `json:"max_score"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type StudentExamResponse struct {
	ID               uint                      `json:"id"`
	Title            string                    `json:"title"`
	Subject          string                    `json:"subject"`
	ClassName        string                    `json:"class_name"`
	Topic            string                    `json:"topic,omitempty"`
	StartTime        time.Time                 `json:"start_time"`
	EndTime          time.Time                 `json:"end_time"`
	DurationMinutes  int                       `json:"duration_minutes"`
	Status           string                    `json:"status"`
	QuestionCount    int                       `json:"question_count"`
	MaxScore         int                       `json:"max_score"`
	SubmissionStatus string                    `json:"submission_status,omitempty"`
	Questions        []StudentQuestionResponse `json:"questions,omitempty"`
}
