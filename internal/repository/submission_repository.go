package repository

import (
	"context"

	"github.com/lshigami/examroom/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	Update(ctx context.Context, submission *model.Submission) error
	FindByID(ctx context.Context, id uint) (*model.Submission, error)
	// FindByExamAndUser locks the row for the rest of the enclosing
	// transaction when forUpdate is set.
	FindByExamAndUser(ctx context.Context, examID, userID uint, forUpdate bool) (*model.Submission, error)
	FindAllByUser(ctx context.Context, userID uint) ([]model.Submission, error)
	FindAllByExam(ctx context.Context, examID uint) ([]model.Submission, error)
	CountByExam(ctx context.Context, examID uint) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(submission).Error)
}

func (r *submissionRepository) Update(ctx context.Context, submission *model.Submission) error {
	return translate(r.db.WithContext(ctx).Model(submission).
		Updates(map[string]any{
			"end_time": submission.EndTime,
			"score":    submission.Score,
			"status":   submission.Status,
		}).Error)
}

func (r *submissionRepository) FindByID(ctx context.Context, id uint) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, translate(err)
	}
	return &submission, nil
}

func (r *submissionRepository) FindByExamAndUser(ctx context.Context, examID, userID uint, forUpdate bool) (*model.Submission, error) {
	var submission model.Submission
	query := r.db.WithContext(ctx).Where("exam_id = ? AND user_id = ?", examID, userID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&submission).Error; err != nil {
		return nil, translate(err)
	}
	return &submission, nil
}

func (r *submissionRepository) FindAllByUser(ctx context.Context, userID uint) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_time DESC").Find(&submissions).Error
	return submissions, translate(err)
}

func (r *submissionRepository) FindAllByExam(ctx context.Context, examID uint) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).Where("exam_id = ?", examID).Order("score DESC NULLS LAST, id ASC").Find(&submissions).Error
	return submissions, translate(err)
}

func (r *submissionRepository) CountByExam(ctx context.Context, examID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Submission{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, translate(err)
}
