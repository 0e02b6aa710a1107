package repository

import (
	"context"

	"github.com/lshigami/examroom/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	FindByExamID(ctx context.Context, examID uint) ([]model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id uint) error
	DeleteByExamID(ctx context.Context, examID uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return translate(r.db.WithContext(ctx).Create(question).Error)
}

func (r *questionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r *questionRepository) FindByExamID(ctx context.Context, examID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).Where("exam_id = ?", examID).Order("position ASC, id ASC").Find(&questions).Error
	return questions, translate(err)
}

func (r *questionRepository) Update(ctx context.Context, question *model.Question) error {
	return translate(r.db.WithContext(ctx).Save(question).Error)
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Question{}, id).Error)
}

func (r *questionRepository) DeleteByExamID(ctx context.Context, examID uint) error {
	return translate(r.db.WithContext(ctx).Where("exam_id = ?", examID).Delete(&model.Question{}).Error)
}
