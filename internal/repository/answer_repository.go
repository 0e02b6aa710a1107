package repository

import (
	"context"

	"github.com/lshigami/examroom/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerRepository has no Update: answers are immutable once graded.
type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	FindBySubmissionID(ctx context.Context, submissionID uint) ([]model.Answer, error)
	FindBySubmissionIDs(ctx context.Context, submissionIDs []uint) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *model.Answer) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(answer).Error)
}

func (r *answerRepository) FindBySubmissionID(ctx context.Context, submissionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).Order("id ASC").Find(&answers).Error
	return answers, translate(err)
}

func (r *answerRepository) FindBySubmissionIDs(ctx context.Context, submissionIDs []uint) ([]model.Answer, error) {
	var answers []model.Answer
	if len(submissionIDs) == 0 {
		return answers, nil
	}
	err := r.db.WithContext(ctx).Where("submission_id IN ?", submissionIDs).Order("id ASC").Find(&answers).Error
	return answers, translate(err)
}
