package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lshigami/examroom/internal/dto"
)

var (
	ErrUnknownQuestion = errors.New("question is not part of this exam")
	ErrInvalidLabel    = errors.New("answer must be one of A, B, C or D")
	ErrInvalidIndex    = errors.New("question number out of range")
)

var validLabels = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// AnswerStore holds the options chosen so far and the questions flagged for
// review. Flags are keyed by position in the exam, answers by question id.
type AnswerStore struct {
	mu        sync.RWMutex
	questions []uint
	known     map[uint]bool
	chosen    map[uint]string
	flagged   map[int]bool
}

// NewAnswerStore creates an empty store for the given question ids, in exam order.
func NewAnswerStore(questionIDs []uint) *AnswerStore {
	s := &AnswerStore{
		questions: append([]uint(nil), questionIDs...),
		known:     make(map[uint]bool, len(questionIDs)),
		chosen:    make(map[uint]string, len(questionIDs)),
		flagged:   make(map[int]bool),
	}
	for _, id := range questionIDs {
		s.known[id] = true
	}
	return s
}

// Len returns the number of questions in the exam.
func (s *AnswerStore) Len() int {
	return len(s.questions)
}

// QuestionAt maps a zero-based position to its question id.
func (s *AnswerStore) QuestionAt(index int) (uint, error) {
	if index < 0 || index >= len(s.questions) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidIndex, index+1)
	}
	return s.questions[index], nil
}

// Select records label as the answer to questionID, replacing any earlier choice.
func (s *AnswerStore) Select(questionID uint, label string) error {
	if !s.known[questionID] {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if !validLabels[label] {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	s.mu.Lock()
	s.chosen[questionID] = label
	s.mu.Unlock()
	return nil
}

// ToggleFlag flips the review flag of the question at index and returns the new state.
func (s *AnswerStore) ToggleFlag(index int) (bool, error) {
	if index < 0 || index >= len(s.questions) {
		return false, fmt.Errorf("%w: %d", ErrInvalidIndex, index+1)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flagged[index] {
		delete(s.flagged, index)
		return false, nil
	}
	s.flagged[index] = true
	return true, nil
}

func (s *AnswerStore) IsAnswered(questionID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chosen[questionID]
	return ok
}

func (s *AnswerStore) IsFlagged(index int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flagged[index]
}

// Choice returns the label picked for questionID, if any.
func (s *AnswerStore) Choice(questionID uint) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label, ok := s.chosen[questionID]
	return label, ok
}

// Load restores answers saved on the server. Entries for other questions,
// blank entries and invalid labels are skipped; the number kept is returned.
func (s *AnswerStore) Load(answers []dto.AnswerInput) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := 0
	for _, a := range answers {
		if a.Answer == nil || !s.known[a.QuestionID] || !validLabels[*a.Answer] {
			continue
		}
		s.chosen[a.QuestionID] = *a.Answer
		kept++
	}
	return kept
}

// Answers returns the answered questions in exam order.
func (s *AnswerStore) Answers() []dto.AnswerInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]dto.AnswerInput, 0, len(s.chosen))
	for _, id := range s.questions {
		label, ok := s.chosen[id]
		if !ok {
			continue
		}
		out = append(out, dto.AnswerInput{QuestionID: id, Answer: &label})
	}
	return out
}

// Sheet returns every question in exam order, with a nil answer for blanks.
func (s *AnswerStore) Sheet() []dto.AnswerInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]dto.AnswerInput, len(s.questions))
	for i, id := range s.questions {
		out[i].QuestionID = id
		if label, ok := s.chosen[id]; ok {
			out[i].Answer = &label
		}
	}
	return out
}
