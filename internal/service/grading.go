package service

import (
	"fmt"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
)

// gradeAnswers checks every submitted item against the exam's questions and
// returns the answer rows in submitted order together with the total score.
// Nothing is written; an unknown or repeated question id fails the whole batch.
func gradeAnswers(questions []model.Question, inputs []dto.AnswerInput) ([]model.Answer, int, error) {
	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	seen := make(map[uint]bool, len(inputs))
	answers := make([]model.Answer, 0, len(inputs))
	score := 0
	for i, in := range inputs {
		field := fmt.Sprintf("answers[%d].question_id", i)
		q, ok := byID[in.QuestionID]
		if !ok {
			return nil, 0, apperror.Validation("answers reference unknown questions",
				apperror.FieldError{Field: field, Error: fmt.Sprintf("question %d does not belong to this exam", in.QuestionID)})
		}
		if seen[in.QuestionID] {
			return nil, 0, apperror.Validation("answers contain duplicate questions",
				apperror.FieldError{Field: field, Error: fmt.Sprintf("question %d is answered more than once", in.QuestionID)})
		}
		seen[in.QuestionID] = true

		correct := q.IsCorrect(in.Answer)
		if correct {
			score += q.Points
		}
		answers = append(answers, model.Answer{
			QuestionID: q.ID,
			Answer:     in.Answer,
			IsCorrect:  correct,
		})
	}
	return answers, score, nil
}

func maxScore(questions []model.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}
