package repository

import (
	"context"

	"github.com/lshigami/examroom/internal/model"
	"gorm.io/gorm"
)

// ExamFilter narrows FindAll. Zero values mean "any".
type ExamFilter struct {
	CreatedBy     uint
	ClassName     string
	ExcludeDrafts bool
}

type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	FindByID(ctx context.Context, id uint) (*model.Exam, error)
	FindAll(ctx context.Context, filter ExamFilter) ([]model.Exam, error)
	Update(ctx context.Context, exam *model.Exam) error
	Delete(ctx context.Context, id uint) error
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(ctx context.Context, exam *model.Exam) error {
	return translate(r.db.WithContext(ctx).Omit("Questions").Create(exam).Error)
}

func (r *examRepository) FindByID(ctx context.Context, id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, translate(err)
	}
	return &exam, nil
}

func (r *examRepository) FindAll(ctx context.Context, filter ExamFilter) ([]model.Exam, error) {
	var exams []model.Exam
	query := r.db.WithContext(ctx).Model(&model.Exam{})
	if filter.CreatedBy != 0 {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.ClassName != "" {
		query = query.Where("class_name = ?", filter.ClassName)
	}
	if filter.ExcludeDrafts {
		query = query.Where("status <> ?", model.ExamStatusDraft)
	}
	err := query.Order("start_time ASC, id ASC").Find(&exams).Error
	return exams, translate(err)
}

func (r *examRepository) Update(ctx context.Context, exam *model.Exam) error {
	return translate(r.db.WithContext(ctx).Omit("Questions").Save(exam).Error)
}

func (r *examRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Exam{}, id).Error)
}
