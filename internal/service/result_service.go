package service

import (
	"context"
	"math"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
)

// ResultService reports how a class did on an exam.
type ResultService interface {
	ExamResults(ctx context.Context, id Identity, examID uint) (*dto.ExamResultsResponse, error)
}

type resultService struct {
	store          repository.Store
	scoreConverter ScoreConverterService
	now            Clock
}

func NewResultService(store repository.Store, scoreConverter ScoreConverterService, now Clock) ResultService {
	return &resultService{store: store, scoreConverter: scoreConverter, now: now}
}

func (s *resultService) ExamResults(ctx context.Context, id Identity, examID uint) (*dto.ExamResultsResponse, error) {
	exam, err := ownedExam(ctx, s.store, id, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.Questions().FindByExamID(ctx, exam.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load questions", err)
	}
	subs, err := s.store.Submissions().FindAllByExam(ctx, exam.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load submissions", err)
	}

	userIDs := make([]uint, 0, len(subs))
	subIDs := make([]uint, 0, len(subs))
	for _, sub := range subs {
		userIDs = append(userIDs, sub.UserID)
		subIDs = append(subIDs, sub.ID)
	}
	users, err := s.store.Users().FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperror.Internal("failed to load students", err)
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	answers, err := s.store.Answers().FindBySubmissionIDs(ctx, subIDs)
	if err != nil {
		return nil, apperror.Internal("failed to load answers", err)
	}

	total := maxScore(questions)
	resp := &dto.ExamResultsResponse{
		Exam:        toExamResponse(exam, questions, s.now(), false),
		Submissions: make([]dto.StudentResultResponse, 0, len(subs)),
		Questions:   questionStats(questions, answers),
	}

	var sum, completed int
	for i := range subs {
		sub := &subs[i]
		pct, letter := grade(s.scoreConverter, sub.Score, total)
		resp.Submissions = append(resp.Submissions, dto.StudentResultResponse{
			SubmissionID: sub.ID,
			UserID:       sub.UserID,
			StudentName:  names[sub.UserID],
			Status:       string(sub.Status),
			Score:        sub.Score,
			Percentage:   pct,
			Grade:        letter,
			StartTime:    sub.StartTime,
			EndTime:      sub.EndTime,
		})
		if sub.IsCompleted() && sub.Score != nil {
			sum += *sub.Score
			completed++
		}
	}
	if completed > 0 {
		avg := math.Round(float64(sum)/float64(completed)*100) / 100
		resp.AverageScore = &avg
	}
	return resp, nil
}

// questionStats counts attempts and correct answers per question, keeping
// the exam's question order.
func questionStats(questions []model.Question, answers []model.Answer) []dto.QuestionStatResponse {
	stats := make([]dto.QuestionStatResponse, len(questions))
	index := make(map[uint]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
		stats[i] = dto.QuestionStatResponse{
			QuestionID: q.ID,
			Position:   q.Position,
			Content:    q.Content,
			Points:     q.Points,
		}
	}
	for _, a := range answers {
		i, ok := index[a.QuestionID]
		if !ok || a.Answer == nil {
			continue
		}
		stats[i].Answered++
		if a.IsCorrect {
			stats[i].Correct++
		}
	}
	for i := range stats {
		if stats[i].Answered > 0 {
			stats[i].CorrectRate = math.Round(float64(stats[i].Correct)/float64(stats[i].Answered)*1000) / 1000
		}
	}
	return stats
}
