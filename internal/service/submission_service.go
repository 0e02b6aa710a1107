package service

import (
	"context"
	"errors"
	"time"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
	"github.com/rs/zerolog/log"
)

// SubmissionService runs the student side of an exam: opening a session,
// grading the submitted batch and reading back results.
type SubmissionService interface {
	StartExam(ctx context.Context, id Identity, examID uint) (*dto.ExamSessionResponse, error)
	SubmitExam(ctx context.Context, id Identity, examID uint, req dto.SubmitExamRequest) (*dto.SubmissionResponse, error)
	ListMySubmissions(ctx context.Context, id Identity) ([]dto.SubmissionSummaryResponse, error)
	GetMySubmission(ctx context.Context, id Identity, submissionID uint) (*dto.SubmissionDetailResponse, error)
}

type submissionService struct {
	store          repository.Store
	scoreConverter ScoreConverterService
	now            Clock
}

func NewSubmissionService(store repository.Store, scoreConverter ScoreConverterService, now Clock) SubmissionService {
	return &submissionService{
		store:          store,
		scoreConverter: scoreConverter,
		now:            now,
	}
}

var (
	errAlreadySubmitted = apperror.Conflict("exam has already been submitted")
	errNotStarted       = apperror.Conflict("exam has not started yet")
)

// studentExam loads a published exam the caller's class is allowed to sit.
func (s *submissionService) studentExam(ctx context.Context, id Identity, examID uint) (*model.Exam, error) {
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
	return exam, nil
}

func (s *submissionService) StartExam(ctx context.Context, id Identity, examID uint) (*dto.ExamSessionResponse, error) {
	exam, err := s.studentExam(ctx, id, examID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if exam.EffectiveStatus(now) == model.ExamStatusUpcoming {
		return nil, errNotStarted
	}

	sub, err := s.store.Submissions().FindByExamAndUser(ctx, exam.ID, id.UserID, false)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		sub = &model.Submission{
			ExamID:    exam.ID,
			UserID:    id.UserID,
			StartTime: now,
			Status:    model.SubmissionInProgress,
		}
		if err := s.store.Submissions().Create(ctx, sub); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, apperror.Internal("failed to open exam session", err)
			}
			// Lost a race with a parallel start for the same student.
			if sub, err = s.store.Submissions().FindByExamAndUser(ctx, exam.ID, id.UserID, false); err != nil {
				return nil, apperror.Internal("failed to open exam session", err)
			}
		} else {
			log.Info().Uint("examID", exam.ID).Uint("userID", id.UserID).Uint("submissionID", sub.ID).Msg("Exam session started")
		}
	case err != nil:
		return nil, apperror.Internal("failed to load submission", err)
	}
	if sub.IsCompleted() {
		return nil, errAlreadySubmitted
	}

	stored, err := s.store.Answers().FindBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load answers", err)
	}
	answers := make([]dto.AnswerInput, 0, len(stored))
	for _, a := range stored {
		answers = append(answers, dto.AnswerInput{QuestionID: a.QuestionID, Answer: a.Answer})
	}

	remaining := int64(exam.EndTime.Sub(now) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return &dto.ExamSessionResponse{
		Submission:       toSubmissionResponse(sub),
		EndTime:          exam.EndTime,
		RemainingSeconds: remaining,
		Answers:          answers,
	}, nil
}

func (s *submissionService) SubmitExam(ctx context.Context, id Identity, examID uint, req dto.SubmitExamRequest) (*dto.SubmissionResponse, error) {
	if err := id.require(model.RoleStudent); err != nil {
		return nil, err
	}
	if len(req.Answers) == 0 {
		return nil, apperror.Validation("no answers submitted",
			apperror.FieldError{Field: "answers", Error: "answers must contain at least one item"})
	}
	exam, err := s.studentExam(ctx, id, examID)
	if err != nil {
		return nil, err
	}
	if exam.EffectiveStatus(s.now()) == model.ExamStatusUpcoming {
		return nil, errNotStarted
	}

	existing, err := s.store.Submissions().FindByExamAndUser(ctx, exam.ID, id.UserID, false)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("failed to load submission", err)
	}
	if existing != nil && existing.IsCompleted() {
		return nil, errAlreadySubmitted
	}

	var result *model.Submission
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		questions, err := tx.Questions().FindByExamID(ctx, exam.ID)
		if err != nil {
			return apperror.Internal("failed to load questions", err)
		}
		answers, score, err := gradeAnswers(questions, req.Answers)
		if err != nil {
			return err
		}

		now := s.now()
		sub, err := tx.Submissions().FindByExamAndUser(ctx, exam.ID, id.UserID, true)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			sub = &model.Submission{
				ExamID:    exam.ID,
				UserID:    id.UserID,
				StartTime: now,
				Status:    model.SubmissionInProgress,
			}
			if err := tx.Submissions().Create(ctx, sub); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return errAlreadySubmitted
				}
				return apperror.Internal("failed to create submission", err)
			}
		case err != nil:
			return apperror.Internal("failed to lock submission", err)
		case sub.IsCompleted():
			return errAlreadySubmitted
		}

		for i := range answers {
			answers[i].SubmissionID = sub.ID
			if err := tx.Answers().Create(ctx, &answers[i]); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return errAlreadySubmitted
				}
				return apperror.Internal("failed to save answer", err)
			}
		}

		sub.EndTime = &now
		sub.Score = &score
		sub.Status = model.SubmissionCompleted
		if err := tx.Submissions().Update(ctx, sub); err != nil {
			return apperror.Internal("failed to complete submission", err)
		}
		result = sub
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrInternal) {
			log.Error().Err(err).Uint("examID", exam.ID).Uint("userID", id.UserID).Msg("SubmitExam failed")
		}
		return nil, err
	}

	log.Info().
		Uint("examID", exam.ID).
		Uint("userID", id.UserID).
		Uint("submissionID", result.ID).
		Int("score", *result.Score).
		Int("answers", len(req.Answers)).
		Msg("Exam submitted")
	resp := toSubmissionResponse(result)
	return &resp, nil
}

func (s *submissionService) ListMySubmissions(ctx context.Context, id Identity) ([]dto.SubmissionSummaryResponse, error) {
	if err := id.require(model.RoleStudent); err != nil {
		return nil, err
	}
	subs, err := s.store.Submissions().FindAllByUser(ctx, id.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to list submissions", err)
	}

	out := make([]dto.SubmissionSummaryResponse, 0, len(subs))
	for i := range subs {
		exam, questions, err := s.examWithQuestions(ctx, subs[i].ExamID)
		if err != nil {
			return nil, err
		}
		out = append(out, s.summary(&subs[i], exam, questions))
	}
	return out, nil
}

func (s *submissionService) GetMySubmission(ctx context.Context, id Identity, submissionID uint) (*dto.SubmissionDetailResponse, error) {
	if err := id.require(model.RoleStudent); err != nil {
		return nil, err
	}
	sub, err := s.store.Submissions().FindByID(ctx, submissionID)
	if err != nil {
		return nil, storeErr(err, "submission", submissionID)
	}
	if sub.UserID != id.UserID {
		return nil, apperror.Forbidden("submission belongs to another student")
	}
	exam, questions, err := s.examWithQuestions(ctx, sub.ExamID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Answers().FindBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load answers", err)
	}
	byQuestion := make(map[uint]model.Answer, len(stored))
	for _, a := range stored {
		byQuestion[a.QuestionID] = a
	}

	detail := &dto.SubmissionDetailResponse{
		SubmissionSummaryResponse: s.summary(sub, exam, questions),
		Answers:                   make([]dto.AnswerResultResponse, 0, len(questions)),
	}
	for i := range questions {
		q := &questions[i]
		a := byQuestion[q.ID]
		item := dto.AnswerResultResponse{
			QuestionID: q.ID,
			Content:    q.Content,
			Options:    optionsOf(q),
			Answer:     a.Answer,
			IsCorrect:  a.IsCorrect,
			Points:     q.Points,
		}
		if sub.IsCompleted() {
			item.CorrectAnswer = q.CorrectAnswer
			item.Explanation = q.Explanation
		}
		detail.Answers = append(detail.Answers, item)
	}
	return detail, nil
}

func (s *submissionService) examWithQuestions(ctx context.Context, examID uint) (*model.Exam, []model.Question, error) {
	exam, err := s.store.Exams().FindByID(ctx, examID)
	if err != nil {
		return nil, nil, storeErr(err, "exam", examID)
	}
	questions, err := s.store.Questions().FindByExamID(ctx, examID)
	if err != nil {
		return nil, nil, apperror.Internal("failed to load questions", err)
	}
	return exam, questions, nil
}

func (s *submissionService) summary(sub *model.Submission, exam *model.Exam, questions []model.Question) dto.SubmissionSummaryResponse {
	total := maxScore(questions)
	pct, letter := grade(s.scoreConverter, sub.Score, total)
	return dto.SubmissionSummaryResponse{
		ID:         sub.ID,
		ExamID:     sub.ExamID,
		ExamTitle:  exam.Title,
		StartTime:  sub.StartTime,
		EndTime:    sub.EndTime,
		Score:      sub.Score,
		MaxScore:   total,
		Percentage: pct,
		Grade:      letter,
		Status:     string(sub.Status),
	}
}
