package dto

import "time"

// SubmissionResponse is the finalized submission record returned by submit.
type SubmissionResponse struct {
	ID        uint       `json:"id"`
	ExamID    uint       `json:"exam_id"`
	UserID    uint       `json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Score     *int       `json:"score"`
	Status    string     `json:"status"`
}

// ExamSessionResponse is returned when a student opens (or re-opens) an exam.
type ExamSessionResponse struct {
	Submission       SubmissionResponse `json:"submission"`
	EndTime          time.Time          `json:"end_time"`
	RemainingSeconds int64              `json:"remaining_seconds"`
	Answers          []AnswerInput      `json:"answers"`
}

type SubmissionSummaryResponse struct {
	ID         uint       `json:"id"`
	ExamID     uint       `json:"exam_id"`
	ExamTitle  string     `json:"exam_title"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Score      *int       `json:"score"`
	MaxScore   int        `json:"max_score"`
	Percentage *float64   `json:"percentage,omitempty"`
	Grade      string     `json:"grade,omitempty"`
	Status     string     `json:"status"`
}

type AnswerResultResponse struct {
	QuestionID    uint              `json:"question_id"`
	Content       string            `json:"content"`
	Options       map[string]string `json:"options"`
	Answer        *string           `json:"answer"`
	IsCorrect     bool              `json:"is_correct"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Points        int               `json:"points"`
	Explanation   string            `json:"explanation,omitempty"`
}

type SubmissionDetailResponse struct {
	SubmissionSummaryResponse
	Answers []AnswerResultResponse `json:"answers"`
}

type StudentResultResponse struct {
	SubmissionID uint       `json:"submission_id"`
	UserID       uint       `json:"user_id"`
	StudentName  string     `json:"student_name"`
	Status       string     `json:"status"`
	Score        *int       `json:"score"`
	Percentage   *float64   `json:"percentage,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
}

type QuestionStatResponse struct {
	QuestionID  uint    `json:"question_id"`
	Position    int     `json:"position"`
	Content     string  `json:"content"`
	Points      int     `json:"points"`
	Answered    int     `json:"answered"`
	Correct     int     `json:"correct"`
	CorrectRate float64 `json:"correct_rate"`
}

type ExamResultsResponse struct {
	Exam         ExamResponse            `json:"exam"`
	Submissions  []StudentResultResponse `json:"submissions"`
	Questions    []QuestionStatResponse  `json:"questions"`
	AverageScore *float64                `json:"average_score,omitempty"`
}
