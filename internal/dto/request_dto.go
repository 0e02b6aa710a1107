package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is used by admins to provision teacher and student accounts.
type CreateUserRequest struct {
	Name      string `json:"name" binding:"required,max=120"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=admin teacher student"`
	ClassName string `json:"class_name" binding:"required_if=Role student"`
}

type ExamRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Subject         string    `json:"subject" binding:"required,max=100"`
	ClassName       string    `json:"class_name" binding:"required,max=50"`
	Topic           string    `json:"topic" binding:"max=200"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
	Status          string    `json:"status" binding:"omitempty,oneof=draft upcoming active completed"`
}

type QuestionRequest struct {
	Content       string            `json:"content" binding:"required"`
	Options       map[string]string `json:"options" binding:"required,len=4,dive,keys,oneof=A B C D,endkeys,required"`
	CorrectAnswer string            `json:"correct_answer" binding:"required,oneof=A B C D"`
	Points        int               `json:"points" binding:"required,min=1"`
	Difficulty    string            `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Topic         string            `json:"topic" binding:"max=200"`
	Position      int               `json:"position" binding:"min=0"`
}

// AnswerInput is one graded item of a submission. A nil Answer means the
// question was left blank.
type AnswerInput struct {
	QuestionID uint    `json:"question_id" binding:"required,gt=0"`
	Answer     *string `json:"answer" binding:"omitempty,oneof=A B C D"`
}

type SubmitExamRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required,min=1,dive"`
}
