package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
	"github.com/lshigami/examroom/internal/repository/memory"
)

var examNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store   repository.Store
	clock   Clock
	teacher Identity
	student Identity
	exam    *model.Exam
	qs      []model.Question
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

// newFixture seeds one teacher, one student of class 10A and an active exam
// with three questions: correct answers A, B, C worth 1, 2 and 3 points.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(memory.Open())

	teacher := &model.User{Name: "Ms. Lan", Email: "lan@school.test", Role: model.RoleTeacher}
	require.NoError(t, store.Users().Create(ctx, teacher))
	student := &model.User{Name: "Minh", Email: "minh@school.test", Role: model.RoleStudent, ClassName: "10A"}
	require.NoError(t, store.Users().Create(ctx, student))

	exam := &model.Exam{
		Title:           "Algebra midterm",
		Subject:         "Math",
		ClassName:       "10A",
		StartTime:       examNow.Add(-30 * time.Minute),
		EndTime:         examNow.Add(30 * time.Minute),
		DurationMinutes: 60,
		Status:          model.ExamStatusUpcoming,
		CreatedBy:       teacher.ID,
	}
	require.NoError(t, store.Exams().Create(ctx, exam))

	var qs []model.Question
	for i, correct := range []string{"A", "B", "C"} {
		q := model.Question{
			ExamID:        exam.ID,
			Content:       "Solve $x^2 = " + correct + "$",
			Options:       datatypes.NewJSONType(model.Options{"A": "1", "B": "2", "C": "3", "D": "4"}),
			CorrectAnswer: correct,
			Points:        i + 1,
			Difficulty:    model.DifficultyMedium,
			Position:      i,
		}
		require.NoError(t, store.Questions().Create(ctx, &q))
		qs = append(qs, q)
	}

	return &fixture{
		store:   store,
		clock:   fixedClock(examNow),
		teacher: Identity{UserID: teacher.ID, Role: model.RoleTeacher},
		student: Identity{UserID: student.ID, Role: model.RoleStudent, ClassName: "10A"},
		exam:    exam,
		qs:      qs,
	}
}

func (f *fixture) submissions() SubmissionService {
	return NewSubmissionService(f.store, NewScoreConverterService(), f.clock)
}

func (f *fixture) exams() ExamService {
	return NewExamService(f.store, f.clock)
}
