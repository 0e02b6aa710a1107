package service

import (
	"context"
	"errors"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
	"github.com/rs/zerolog/log"
)

// ExamService covers exam authoring for teachers and the exam catalogue for
// students.
type ExamService interface {
	CreateExam(ctx context.Context, id Identity, req dto.ExamRequest) (*dto.ExamResponse, error)
	ListTeacherExams(ctx context.Context, id Identity) ([]dto.ExamResponse, error)
	GetTeacherExam(ctx context.Context, id Identity, examID uint) (*dto.ExamResponse, error)
	UpdateExam(ctx context.Context, id Identity, examID uint, req dto.ExamRequest) (*dto.ExamResponse, error)
	DeleteExam(ctx context.Context, id Identity, examID uint) error

	ListStudentExams(ctx context.Context, id Identity) ([]dto.StudentExamResponse, error)
	GetStudentExam(ctx context.Context, id Identity, examID uint) (*dto.StudentExamResponse, error)
}

type examService struct {
	store repository.Store
	now   Clock
}

func NewExamService(store repository.Store, now Clock) ExamService {
	return &examService{store: store, now: now}
}

// ownedExam loads an exam and checks the caller authored it.
func ownedExam(ctx context.Context, store repository.Store, id Identity, examID uint) (*model.Exam, error) {
	if err := id.require(model.RoleTeacher); err != nil {
		return nil, err
	}
	exam, err := store.Exams().FindByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err, "exam", examID)
	}
	if exam.CreatedBy != id.UserID {
		return nil, apperror.Forbidden("exam belongs to another teacher")
	}
	return exam, nil
}

func applyExamRequest(exam *model.Exam, req dto.ExamRequest) {
	exam.Title = req.Title
	exam.Subject = req.Subject
	exam.ClassName = req.ClassName
	exam.Topic = req.Topic
	exam.StartTime = req.StartTime.UTC()
	exam.EndTime = req.EndTime.UTC()
	exam.DurationMinutes = req.DurationMinutes
	exam.Status = model.ExamStatusUpcoming
	if req.Status == string(model.ExamStatusDraft) {
		exam.Status = model.ExamStatusDraft
	}
}

func validateExamWindow(req dto.ExamRequest) error {
	if !req.EndTime.After(req.StartTime) {
		return apperror.Validation("invalid exam window",
			apperror.FieldError{Field: "end_time", Error: "end_time must be after start_time"})
	}
	return nil
}

func (s *examService) CreateExam(ctx context.Context, id Identity, req dto.ExamRequest) (*dto.ExamResponse, error) {
	if err := id.require(model.RoleTeacher); err != nil {
		return nil, err
	}
	if err := validateExamWindow(req); err != nil {
		return nil, err
	}
	exam := &model.Exam{CreatedBy: id.UserID}
	applyExamRequest(exam, req)
	if err := s.store.Exams().Create(ctx, exam); err != nil {
		log.Error().Err(err).Uint("teacherID", id.UserID).Msg("CreateExam: failed to save exam")
		return nil, apperror.Internal("failed to create exam", err)
	}
	log.Info().Uint("examID", exam.ID).Uint("teacherID", id.UserID).Str("class", exam.ClassName).Msg("Exam created")
	resp := toExamResponse(exam, nil, s.now(), true)
	return &resp, nil
}

func (s *examService) ListTeacherExams(ctx context.Context, id Identity) ([]dto.ExamResponse, error) {
	if err := id.require(model.RoleTeacher); err != nil {
		return nil, err
	}
	exams, err := s.store.Exams().FindAll(ctx, repository.ExamFilter{CreatedBy: id.UserID})
	if err != nil {
		return nil, apperror.Internal("failed to list exams", err)
	}
	now := s.now()
	out := make([]dto.ExamResponse, 0, len(exams))
	for i := range exams {
		questions, err := s.store.Questions().FindByExamID(ctx, exams[i].ID)
		if err != nil {
			return nil, apperror.Internal("failed to load questions", err)
		}
		out = append(out, toExamResponse(&exams[i], questions, now, false))
	}
	return out, nil
}

func (s *examService) GetTeacherExam(ctx context.Context, id Identity, examID uint) (*dto.ExamResponse, error) {
	exam, err := ownedExam(ctx, s.store, id, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.Questions().FindByExamID(ctx, exam.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load questions", err)
	}
	resp := toExamResponse(exam, questions, s.now(), true)
	return &resp, nil
}

func (s *examService) UpdateExam(ctx context.Context, id Identity, examID uint, req dto.ExamRequest) (*dto.ExamResponse, error) {
	exam, err := ownedExam(ctx, s.store, id, examID)
	if err != nil {
		return nil, err
	}
	if err := validateExamWindow(req); err != nil {
		return nil, err
	}
	applyExamRequest(exam, req)
	if err := s.store.Exams().Update(ctx, exam); err != nil {
		return nil, apperror.Internal("failed to update exam", err)
	}
	questions, err := s.store.Questions().FindByExamID(ctx, exam.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load questions", err)
	}
	log.Info().Uint("examID", exam.ID).Msg("Exam updated")
	resp := toExamResponse(exam, questions, s.now(), true)
	return &resp, nil
}

func (s *examService) DeleteExam(ctx context.Context, id Identity, examID uint) error {
	exam, err := ownedExam(ctx, s.store, id, examID)
	if err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		count, err := tx.Submissions().CountByExam(ctx, exam.ID)
		if err != nil {
			return apperror.Internal("failed to count submissions", err)
		}
		if count > 0 {
			return apperror.Conflict("exam already has submissions and cannot be deleted")
		}
		if err := tx.Questions().DeleteByExamID(ctx, exam.ID); err != nil {
			return apperror.Internal("failed to delete questions", err)
		}
		if err := tx.Exams().Delete(ctx, exam.ID); err != nil {
			return apperror.Internal("failed to delete exam", err)
		}
		log.Info().Uint("examID", exam.ID).Msg("Exam deleted")
		return nil
	})
}

func (s *examService) ListStudentExams(ctx context.Context, id Identity) ([]dto.StudentExamResponse, error) {
	if err := id.require(model.RoleStudent); err != nil {
		return nil, err
	}
	exams, err := s.store.Exams().FindAll(ctx, repository.ExamFilter{ClassName: id.ClassName, ExcludeDrafts: true})
	if err != nil {
		return nil, apperror.Internal("failed to list exams", err)
	}
	now := s.now()
	out := make([]dto.StudentExamResponse, 0, len(exams))
	for i := range exams {
		questions, err := s.store.Questions().FindByExamID(ctx, exams[i].ID)
		if err != nil {
			return nil, apperror.Internal("failed to load questions", err)
		}
		resp := toStudentExamResponse(&exams[i], questions, now)
		if resp.SubmissionStatus, err = s.submissionStatus(ctx, exams[i].ID, id.UserID); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// GetStudentExam returns the exam without the answer key. Questions stay
// hidden until the exam window opens.
func (s *examService) GetStudentExam(ctx context.Context, id Identity, examID uint) (*dto.StudentExamResponse, error) {
	if err := id.require(model.RoleStudent); err != nil {
		return nil, err
	}
	exam, err := s.store.Exams().FindByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err, "exam", examID)
	}
	if exam.Status == model.ExamStatusDraft {
		return nil, apperror.NotFound("exam %d not found", examID)
	}
	if exam.ClassName != id.ClassName {
		return nil, apperror.Forbidden("exam is not assigned to your class")
	}
	questions, err := s.store.Questions().FindByExamID(ctx, exam.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load questions", err)
	}

	now := s.now()
	resp := toStudentExamResponse(exam, questions, now)
	if resp.SubmissionStatus, err = s.submissionStatus(ctx, exam.ID, id.UserID); err != nil {
		return nil, err
	}
	if exam.EffectiveStatus(now) != model.ExamStatusUpcoming {
		resp.Questions = make([]dto.StudentQuestionResponse, 0, len(questions))
		for i := range questions {
			resp.Questions = append(resp.Questions, toStudentQuestionResponse(&questions[i]))
		}
	}
	return &resp, nil
}

func (s *examService) submissionStatus(ctx context.Context, examID, userID uint) (string, error) {
	sub, err := s.store.Submissions().FindByExamAndUser(ctx, examID, userID, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", apperror.Internal("failed to load submission", err)
	}
	return string(sub.Status), nil
}
