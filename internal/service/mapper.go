package service

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
	"github.com/rs/zerolog/log"
)

func toUserResponse(u *model.User) dto.UserResponse {
	var resp dto.UserResponse
	if err := copier.Copy(&resp, u); err != nil {
		log.Error().Err(err).Uint("userID", u.ID).Msg("Failed to map user")
	}
	return resp
}

func toSubmissionResponse(s *model.Submission) dto.SubmissionResponse {
	var resp dto.SubmissionResponse
	if err := copier.Copy(&resp, s); err != nil {
		log.Error().Err(err).Uint("submissionID", s.ID).Msg("Failed to map submission")
	}
	return resp
}

func optionsOf(q *model.Question) map[string]string {
	opts := make(map[string]string, len(model.OptionLabels))
	for k, v := range q.Options.Data() {
		opts[k] = v
	}
	return opts
}

func toQuestionResponse(q *model.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:            q.ID,
		ExamID:        q.ExamID,
		Content:       q.Content,
		Options:       optionsOf(q),
		CorrectAnswer: q.CorrectAnswer,
		Points:        q.Points,
		Difficulty:    string(q.Difficulty),
		Topic:         q.Topic,
		Position:      q.Position,
		Explanation:   q.Explanation,
	}
}

func toStudentQuestionResponse(q *model.Question) dto.StudentQuestionResponse {
	return dto.StudentQuestionResponse{
		ID:         q.ID,
		Content:    q.Content,
		Options:    optionsOf(q),
		Points:     q.Points,
		Difficulty: string(q.Difficulty),
		Topic:      q.Topic,
		Position:   q.Position,
	}
}

// toExamResponse maps an exam for its owner. Questions are included only when
// withQuestions is set; count and max score always reflect questions.
func toExamResponse(e *model.Exam, questions []model.Question, now time.Time, withQuestions bool) dto.ExamResponse {
	shallow := *e
	shallow.Questions = nil

	var resp dto.ExamResponse
	if err := copier.Copy(&resp, &shallow); err != nil {
		log.Error().Err(err).Uint("examID", e.ID).Msg("Failed to map exam")
	}
	resp.Status = string(e.EffectiveStatus(now))
	resp.QuestionCount = len(questions)
	resp.MaxScore = maxScore(questions)
	if withQuestions {
		resp.Questions = make([]dto.QuestionResponse, 0, len(questions))
		for i := range questions {
			resp.Questions = append(resp.Questions, toQuestionResponse(&questions[i]))
		}
	}
	return resp
}

func toStudentExamResponse(e *model.Exam, questions []model.Question, now time.Time) dto.StudentExamResponse {
	return dto.StudentExamResponse{
		ID:              e.ID,
		Title:           e.Title,
		Subject:         e.Subject,
		ClassName:       e.ClassName,
		Topic:           e.Topic,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		DurationMinutes: e.DurationMinutes,
		Status:          string(e.EffectiveStatus(now)),
		QuestionCount:   len(questions),
		MaxScore:        maxScore(questions),
	}
}
