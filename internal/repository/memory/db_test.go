package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
)

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Open())

	exam := &model.Exam{Title: "Algebra", ClassName: "10A", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	require.NoError(t, store.Exams().Create(ctx, exam))

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx repository.Store) error {
		sub := &model.Submission{ExamID: exam.ID, UserID: 9, Status: model.SubmissionInProgress}
		if err := tx.Submissions().Create(ctx, sub); err != nil {
			return err
		}
		if err := tx.Answers().Create(ctx, &model.Answer{SubmissionID: sub.ID, QuestionID: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Submissions().FindByExamAndUser(ctx, exam.ID, 9, false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	answers, err := store.Answers().FindBySubmissionID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestTransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Open())

	err := store.Transaction(ctx, func(tx repository.Store) error {
		return tx.Submissions().Create(ctx, &model.Submission{ExamID: 1, UserID: 2, Status: model.SubmissionInProgress})
	})
	require.NoError(t, err)

	sub, err := store.Submissions().FindByExamAndUser(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, uint(1), sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Open())

	require.NoError(t, store.Submissions().Create(ctx, &model.Submission{ExamID: 1, UserID: 2}))
	assert.ErrorIs(t, store.Submissions().Create(ctx, &model.Submission{ExamID: 1, UserID: 2}), repository.ErrDuplicate)

	require.NoError(t, store.Answers().Create(ctx, &model.Answer{SubmissionID: 1, QuestionID: 3}))
	assert.ErrorIs(t, store.Answers().Create(ctx, &model.Answer{SubmissionID: 1, QuestionID: 3}), repository.ErrDuplicate)

	require.NoError(t, store.Users().Create(ctx, &model.User{Email: "a@school.test"}))
	assert.ErrorIs(t, store.Users().Create(ctx, &model.User{Email: "a@school.test"}), repository.ErrDuplicate)
}

func TestQuestionsOrderedByPosition(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Open())

	for _, pos := range []int{3, 1, 2} {
		require.NoError(t, store.Questions().Create(ctx, &model.Question{ExamID: 5, Position: pos}))
	}
	require.NoError(t, store.Questions().Create(ctx, &model.Question{ExamID: 6, Position: 1}))

	questions, err := store.Questions().FindByExamID(ctx, 5)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{questions[0].Position, questions[1].Position, questions[2].Position})

	require.NoError(t, store.Questions().DeleteByExamID(ctx, 5))
	questions, err = store.Questions().FindByExamID(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, questions)

	other, err := store.Questions().FindByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, uint(6), other.ExamID)
}
