// Package memory is an in-memory repository.Store: one arena slice per table
// with a primary-key index. It backs service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
)

type table[T any] struct {
	rows   []T
	index  map[uint]int
	nextID uint
	pk     func(*T) *uint
	stamp  func(*T, time.Time)
}

func newTable[T any](pk func(*T) *uint, stamp func(*T, time.Time)) *table[T] {
	return &table[T]{index: make(map[uint]int), pk: pk, stamp: stamp}
}

func (t *table[T]) insert(row *T) {
	t.nextID++
	*t.pk(row) = t.nextID
	if t.stamp != nil {
		t.stamp(row, time.Now().UTC())
	}
	t.index[t.nextID] = len(t.rows)
	t.rows = append(t.rows, *row)
}

func (t *table[T]) get(id uint) (T, bool) {
	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i], true
}

func (t *table[T]) replace(row T) bool {
	i, ok := t.index[*t.pk(&row)]
	if !ok {
		return false
	}
	t.rows[i] = row
	return true
}

func (t *table[T]) remove(pred func(*T) bool) int {
	kept := t.rows[:0]
	removed := 0
	for i := range t.rows {
		if pred(&t.rows[i]) {
			removed++
			continue
		}
		kept = append(kept, t.rows[i])
	}
	t.rows = kept
	t.index = make(map[uint]int, len(t.rows))
	for i := range t.rows {
		t.index[*t.pk(&t.rows[i])] = i
	}
	return removed
}

func (t *table[T]) filter(pred func(*T) bool) []T {
	out := make([]T, 0)
	for i := range t.rows {
		if pred(&t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return out
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		rows:   append([]T(nil), t.rows...),
		index:  make(map[uint]int, len(t.index)),
		nextID: t.nextID,
		pk:     t.pk,
		stamp:  t.stamp,
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}

type tables struct {
	users       *table[model.User]
	exams       *table[model.Exam]
	questions   *table[model.Question]
	submissions *table[model.Submission]
	answers     *table[model.Answer]
}

func (t *tables) clone() *tables {
	return &tables{
		users:       t.users.clone(),
		exams:       t.exams.clone(),
		questions:   t.questions.clone(),
		submissions: t.submissions.clone(),
		answers:     t.answers.clone(),
	}
}

// DB holds every table behind one mutex.
type DB struct {
	mu sync.Mutex
	t  *tables
}

func Open() *DB {
	return &DB{t: &tables{
		users: newTable(func(u *model.User) *uint { return &u.ID }, func(u *model.User, now time.Time) {
			u.CreatedAt, u.UpdatedAt = now, now
		}),
		exams: newTable(func(e *model.Exam) *uint { return &e.ID }, func(e *model.Exam, now time.Time) {
			e.CreatedAt, e.UpdatedAt = now, now
		}),
		questions: newTable(func(q *model.Question) *uint { return &q.ID }, func(q *model.Question, now time.Time) {
			q.CreatedAt, q.UpdatedAt = now, now
		}),
		submissions: newTable(func(s *model.Submission) *uint { return &s.ID }, func(s *model.Submission, now time.Time) {
			s.CreatedAt, s.UpdatedAt = now, now
		}),
		answers: newTable(func(a *model.Answer) *uint { return &a.ID }, func(a *model.Answer, now time.Time) {
			a.CreatedAt = now
		}),
	}}
}

type store struct {
	db   *DB
	inTx bool
}

var _ repository.Store = (*store)(nil)

func NewStore(db *DB) repository.Store {
	return &store{db: db}
}

func (s *store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func (s *store) Users() repository.UserRepository             { return &userRepository{s} }
func (s *store) Exams() repository.ExamRepository             { return &examRepository{s} }
func (s *store) Questions() repository.QuestionRepository     { return &questionRepository{s} }
func (s *store) Submissions() repository.SubmissionRepository { return &submissionRepository{s} }
func (s *store) Answers() repository.AnswerRepository         { return &answerRepository{s} }

// Transaction holds the DB lock for the whole of fn and restores the
// pre-transaction snapshot when fn fails.
func (s *store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.t.clone()
	err := fn(&store{db: s.db, inTx: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.db.t = snapshot
		return err
	}
	return nil
}
