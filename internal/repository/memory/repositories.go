package memory

import (
	"context"
	"sort"
	"time"

	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
)

type userRepository struct{ s *store }

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	defer r.s.lock()()
	t := r.s.db.t.users
	if len(t.filter(func(u *model.User) bool { return u.Email == user.Email })) > 0 {
		return repository.ErrDuplicate
	}
	t.insert(user)
	return nil
}

func (r *userRepository) FindByID(_ context.Context, id uint) (*model.User, error) {
	defer r.s.lock()()
	u, ok := r.s.db.t.users.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	defer r.s.lock()()
	found := r.s.db.t.users.filter(func(u *model.User) bool { return u.Email == email })
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *userRepository) FindByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	defer r.s.lock()()
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	users := r.s.db.t.users.filter(func(u *model.User) bool { return want[u.ID] })
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

type examRepository struct{ s *store }

func (r *examRepository) Create(_ context.Context, exam *model.Exam) error {
	defer r.s.lock()()
	row := *exam
	row.Questions = nil
	r.s.db.t.exams.insert(&row)
	exam.ID, exam.CreatedAt, exam.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *examRepository) FindByID(_ context.Context, id uint) (*model.Exam, error) {
	defer r.s.lock()()
	e, ok := r.s.db.t.exams.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *examRepository) FindAll(_ context.Context, filter repository.ExamFilter) ([]model.Exam, error) {
	defer r.s.lock()()
	exams := r.s.db.t.exams.filter(func(e *model.Exam) bool {
		if filter.CreatedBy != 0 && e.CreatedBy != filter.CreatedBy {
			return false
		}
		if filter.ClassName != "" && e.ClassName != filter.ClassName {
			return false
		}
		return !(filter.ExcludeDrafts && e.Status == model.ExamStatusDraft)
	})
	sort.SliceStable(exams, func(i, j int) bool {
		if exams[i].StartTime.Equal(exams[j].StartTime) {
			return exams[i].ID < exams[j].ID
		}
		return exams[i].StartTime.Before(exams[j].StartTime)
	})
	return exams, nil
}

func (r *examRepository) Update(_ context.Context, exam *model.Exam) error {
	defer r.s.lock()()
	row := *exam
	row.Questions = nil
	row.UpdatedAt = time.Now().UTC()
	if !r.s.db.t.exams.replace(row) {
		return repository.ErrNotFound
	}
	exam.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *examRepository) Delete(_ context.Context, id uint) error {
	defer r.s.lock()()
	r.s.db.t.exams.remove(func(e *model.Exam) bool { return e.ID == id })
	return nil
}

type questionRepository struct{ s *store }

func (r *questionRepository) Create(_ context.Context, question *model.Question) error {
	defer r.s.lock()()
	r.s.db.t.questions.insert(question)
	return nil
}

func (r *questionRepository) FindByID(_ context.Context, id uint) (*model.Question, error) {
	defer r.s.lock()()
	q, ok := r.s.db.t.questions.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (r *questionRepository) FindByExamID(_ context.Context, examID uint) ([]model.Question, error) {
	defer r.s.lock()()
	questions := r.s.db.t.questions.filter(func(q *model.Question) bool { return q.ExamID == examID })
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Position == questions[j].Position {
			return questions[i].ID < questions[j].ID
		}
		return questions[i].Position < questions[j].Position
	})
	return questions, nil
}

func (r *questionRepository) Update(_ context.Context, question *model.Question) error {
	defer r.s.lock()()
	question.UpdatedAt = time.Now().UTC()
	if !r.s.db.t.questions.replace(*question) {
		return repository.ErrNotFound
	}
	return nil
}

func (r *questionRepository) Delete(_ context.Context, id uint) error {
	defer r.s.lock()()
	r.s.db.t.questions.remove(func(q *model.Question) bool { return q.ID == id })
	return nil
}

func (r *questionRepository) DeleteByExamID(_ context.Context, examID uint) error {
	defer r.s.lock()()
	r.s.db.t.questions.remove(func(q *model.Question) bool { return q.ExamID == examID })
	return nil
}

type submissionRepository struct{ s *store }

func (r *submissionRepository) Create(_ context.Context, submission *model.Submission) error {
	defer r.s.lock()()
	t := r.s.db.t.submissions
	dup := t.filter(func(s *model.Submission) bool {
		return s.ExamID == submission.ExamID && s.UserID == submission.UserID
	})
	if len(dup) > 0 {
		return repository.ErrDuplicate
	}
	row := *submission
	row.Exam = model.Exam{}
	row.Answers = nil
	t.insert(&row)
	submission.ID, submission.CreatedAt, submission.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *submissionRepository) Update(_ context.Context, submission *model.Submission) error {
	defer r.s.lock()()
	t := r.s.db.t.submissions
	row, ok := t.get(submission.ID)
	if !ok {
		return repository.ErrNotFound
	}
	row.EndTime = submission.EndTime
	row.Score = submission.Score
	row.Status = submission.Status
	row.UpdatedAt = time.Now().UTC()
	t.replace(row)
	return nil
}

func (r *submissionRepository) FindByID(_ context.Context, id uint) (*model.Submission, error) {
	defer r.s.lock()()
	s, ok := r.s.db.t.submissions.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

// FindByExamAndUser ignores forUpdate: the store lock already serialises.
func (r *submissionRepository) FindByExamAndUser(_ context.Context, examID, userID uint, _ bool) (*model.Submission, error) {
	defer r.s.lock()()
	found := r.s.db.t.submissions.filter(func(s *model.Submission) bool {
		return s.ExamID == examID && s.UserID == userID
	})
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *submissionRepository) FindAllByUser(_ context.Context, userID uint) ([]model.Submission, error) {
	defer r.s.lock()()
	subs := r.s.db.t.submissions.filter(func(s *model.Submission) bool { return s.UserID == userID })
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].StartTime.After(subs[j].StartTime) })
	return subs, nil
}

func (r *submissionRepository) FindAllByExam(_ context.Context, examID uint) ([]model.Submission, error) {
	defer r.s.lock()()
	subs := r.s.db.t.submissions.filter(func(s *model.Submission) bool { return s.ExamID == examID })
	sort.SliceStable(subs, func(i, j int) bool {
		si, sj := subs[i].Score, subs[j].Score
		switch {
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return *si > *sj
		}
	})
	return subs, nil
}

func (r *submissionRepository) CountByExam(_ context.Context, examID uint) (int64, error) {
	defer r.s.lock()()
	return int64(len(r.s.db.t.submissions.filter(func(s *model.Submission) bool { return s.ExamID == examID }))), nil
}

type answerRepository struct{ s *store }

func (r *answerRepository) Create(_ context.Context, answer *model.Answer) error {
	defer r.s.lock()()
	t := r.s.db.t.answers
	dup := t.filter(func(a *model.Answer) bool {
		return a.SubmissionID == answer.SubmissionID && a.QuestionID == answer.QuestionID
	})
	if len(dup) > 0 {
		return repository.ErrDuplicate
	}
	row := *answer
	row.Question = model.Question{}
	t.insert(&row)
	answer.ID, answer.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (r *answerRepository) FindBySubmissionID(_ context.Context, submissionID uint) ([]model.Answer, error) {
	defer r.s.lock()()
	return r.s.db.t.answers.filter(func(a *model.Answer) bool { return a.SubmissionID == submissionID }), nil
}

func (r *answerRepository) FindBySubmissionIDs(_ context.Context, submissionIDs []uint) ([]model.Answer, error) {
	defer r.s.lock()()
	want := make(map[uint]bool, len(submissionIDs))
	for _, id := range submissionIDs {
		want[id] = true
	}
	return r.s.db.t.answers.filter(func(a *model.Answer) bool { return want[a.SubmissionID] }), nil
}
