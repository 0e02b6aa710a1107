package service

import (
	"context"
	"fmt"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type QuestionService interface {
	CreateQuestion(ctx context.Context, id Identity, examID uint, req dto.QuestionRequest) (*dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, id Identity, questionID uint, req dto.QuestionRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id Identity, questionID uint) error
	// DraftExplanation asks the LLM to explain the correct answer and stores
	// the result on the question.
	DraftExplanation(ctx context.Context, id Identity, questionID uint) (*dto.ExplanationResponse, error)
}

type questionService struct {
	store       repository.Store
	explanation ExplanationService
}

func NewQuestionService(store repository.Store, explanation ExplanationService) QuestionService {
	return &questionService{store: store, explanation: explanation}
}

// validateQuestion re-checks what binding already enforces so the service is
// safe to call without the HTTP layer.
func validateQuestion(req dto.QuestionRequest) error {
	var fields []apperror.FieldError
	if len(req.Options) != len(model.OptionLabels) {
		fields = append(fields, apperror.FieldError{Field: "options", Error: "options must contain exactly A, B, C and D"})
	}
	for _, label := range model.OptionLabels {
		if req.Options[label] == "" {
			fields = append(fields, apperror.FieldError{Field: "options." + label, Error: fmt.Sprintf("option %s is required", label)})
		}
	}
	if _, ok := req.Options[req.CorrectAnswer]; !ok {
		fields = append(fields, apperror.FieldError{Field: "correct_answer", Error: "correct_answer must be one of the option labels"})
	}
	if req.Points < 1 {
		fields = append(fields, apperror.FieldError{Field: "points", Error: "points must be at least 1"})
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid question", fields...)
	}
	return nil
}

func applyQuestionRequest(q *model.Question, req dto.QuestionRequest) {
	opts := make(model.Options, len(req.Options))
	for k, v := range req.Options {
		opts[k] = v
	}
	q.Content = req.Content
	q.Options = datatypes.NewJSONType(opts)
	q.CorrectAnswer = req.CorrectAnswer
	q.Points = req.Points
	q.Difficulty = model.DifficultyMedium
	if req.Difficulty != "" {
		q.Difficulty = model.Difficulty(req.Difficulty)
	}
	q.Topic = req.Topic
	q.Position = req.Position
}

var errExamHasSubmissions = apperror.Conflict("exam already has submissions and its questions cannot be changed")

// requireNoSubmissions keeps graded answers consistent with the questions they
// were scored against.
func requireNoSubmissions(ctx context.Context, tx repository.Store, examID uint) error {
	count, err := tx.Submissions().CountByExam(ctx, examID)
	if err != nil {
		return apperror.Internal("failed to count submissions", err)
	}
	if count > 0 {
		return errExamHasSubmissions
	}
	return nil
}

// ownedQuestion loads a question and checks the caller authored its exam.
func (s *questionService) ownedQuestion(ctx context.Context, id Identity, questionID uint) (*model.Question, error) {
	if err := id.require(model.RoleTeacher); err != nil {
		return nil, err
	}
	q, err := s.store.Questions().FindByID(ctx, questionID)
	if err != nil {
		return nil, storeErr(err, "question", questionID)
	}
	if _, err := ownedExam(ctx, s.store, id, q.ExamID); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *questionService) CreateQuestion(ctx context.Context, id Identity, examID uint, req dto.QuestionRequest) (*dto.QuestionResponse, error) {
	exam, err := ownedExam(ctx, s.store, id, examID)
	if err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	q := &model.Question{ExamID: exam.ID}
	applyQuestionRequest(q, req)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := requireNoSubmissions(ctx, tx, exam.ID); err != nil {
			return err
		}
		if err := tx.Questions().Create(ctx, q); err != nil {
			log.Error().Err(err).Uint("examID", exam.ID).Msg("Failed to create question")
			return apperror.Internal("failed to create question", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toQuestionResponse(q)
	return &resp, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, id Identity, questionID uint, req dto.QuestionRequest) (*dto.QuestionResponse, error) {
	q, err := s.ownedQuestion(ctx, id, questionID)
	if err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	applyQuestionRequest(q, req)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := requireNoSubmissions(ctx, tx, q.ExamID); err != nil {
			return err
		}
		if err := tx.Questions().Update(ctx, q); err != nil {
			return apperror.Internal("failed to update question", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toQuestionResponse(q)
	return &resp, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, id Identity, questionID uint) error {
	q, err := s.ownedQuestion(ctx, id, questionID)
	if err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := requireNoSubmissions(ctx, tx, q.ExamID); err != nil {
			return err
		}
		if err := tx.Questions().Delete(ctx, q.ID); err != nil {
			return apperror.Internal("failed to delete question", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Uint("questionID", q.ID).Uint("examID", q.ExamID).Msg("Question deleted")
	return nil
}

func (s *questionService) DraftExplanation(ctx context.Context, id Identity, questionID uint) (*dto.ExplanationResponse, error) {
	q, err := s.ownedQuestion(ctx, id, questionID)
	if err != nil {
		return nil, err
	}
	text, err := s.explanation.Explain(ctx, q)
	if err != nil {
		return nil, err
	}
	q.Explanation = text
	if err := s.store.Questions().Update(ctx, q); err != nil {
		return nil, apperror.Internal("failed to save explanation", err)
	}
	return &dto.ExplanationResponse{QuestionID: q.ID, Explanation: text}, nil
}
