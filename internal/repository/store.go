package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store groups the repositories so a service can run several of them inside
// one transaction.
type Store interface {
	Users() UserRepository
	Exams() ExamRepository
	Questions() QuestionRepository
	Submissions() SubmissionRepository
	Answers() AnswerRepository
	// Transaction runs fn against a transactional Store. Any error returned by
	// fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository             { return NewUserRepository(s.db) }
func (s *gormStore) Exams() ExamRepository             { return NewExamRepository(s.db) }
func (s *gormStore) Questions() QuestionRepository     { return NewQuestionRepository(s.db) }
func (s *gormStore) Submissions() SubmissionRepository { return NewSubmissionRepository(s.db) }
func (s *gormStore) Answers() AnswerRepository         { return NewAnswerRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
