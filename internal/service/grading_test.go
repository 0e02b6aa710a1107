package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
)

func TestGradeAnswers(t *testing.T) {
	questions := []model.Question{
		{ID: 10, CorrectAnswer: "A", Points: 1},
		{ID: 11, CorrectAnswer: "B", Points: 2},
		{ID: 12, CorrectAnswer: "C", Points: 3},
	}

	tests := []struct {
		name      string
		inputs    []dto.AnswerInput
		wantScore int
		wantFlags []bool
		wantErr   error
	}{
		{
			name: "mixed",
			inputs: []dto.AnswerInput{
				{QuestionID: 10, Answer: strPtr("A")},
				{QuestionID: 11, Answer: strPtr("B")},
				{QuestionID: 12, Answer: strPtr("D")},
			},
			wantScore: 3,
			wantFlags: []bool{true, true, false},
		},
		{
			name: "submitted order is kept",
			inputs: []dto.AnswerInput{
				{QuestionID: 12, Answer: strPtr("C")},
				{QuestionID: 10, Answer: strPtr("B")},
			},
			wantScore: 3,
			wantFlags: []bool{true, false},
		},
		{
			name:      "blank answer",
			inputs:    []dto.AnswerInput{{QuestionID: 11}},
			wantScore: 0,
			wantFlags: []bool{false},
		},
		{
			name:    "unknown question",
			inputs:  []dto.AnswerInput{{QuestionID: 10, Answer: strPtr("A")}, {QuestionID: 99, Answer: strPtr("A")}},
			wantErr: apperror.ErrValidation,
		},
		{
			name:    "duplicate question",
			inputs:  []dto.AnswerInput{{QuestionID: 10, Answer: strPtr("A")}, {QuestionID: 10, Answer: strPtr("B")}},
			wantErr: apperror.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, score, err := gradeAnswers(questions, tt.inputs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, answers)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, score)
			require.Len(t, answers, len(tt.wantFlags))
			for i, a := range answers {
				assert.Equal(t, tt.inputs[i].QuestionID, a.QuestionID)
				assert.Equal(t, tt.wantFlags[i], a.IsCorrect)
			}
		})
	}
}

func TestGradeAnswersReportsOffendingField(t *testing.T) {
	questions := []model.Question{{ID: 1, CorrectAnswer: "A", Points: 1}}
	_, _, err := gradeAnswers(questions, []dto.AnswerInput{{QuestionID: 1}, {QuestionID: 5}})

	appErr := apperror.From(err)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "answers[1].question_id", appErr.Fields[0].Field)
}

func TestScoreConverter(t *testing.T) {
	conv := NewScoreConverterService()

	tests := []struct {
		score, max int
		wantPct    float64
		wantGrade  string
	}{
		{score: 9, max: 10, wantPct: 90, wantGrade: "A"},
		{score: 17, max: 20, wantPct: 85, wantGrade: "B"},
		{score: 2, max: 3, wantPct: 66.7, wantGrade: "D"},
		{score: 0, max: 6, wantPct: 0, wantGrade: "F"},
		{score: 6, max: 6, wantPct: 100, wantGrade: "A"},
	}
	for _, tt := range tests {
		pct, err := conv.Percentage(tt.score, tt.max)
		require.NoError(t, err)
		assert.Equal(t, tt.wantPct, pct)
		assert.Equal(t, tt.wantGrade, conv.LetterGrade(pct))
	}

	_, err := conv.Percentage(7, 6)
	assert.Error(t, err)
	_, err = conv.Percentage(1, 0)
	assert.Error(t, err)
}
