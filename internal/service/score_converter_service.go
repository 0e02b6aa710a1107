package service

import (
	"fmt"
	"math"
)

type ScoreConverterService interface {
	// Percentage converts a raw score into 0-100, rounded to one decimal.
	Percentage(score, maxScore int) (float64, error)
	LetterGrade(percentage float64) string
}

type scoreConverterService struct {
	bands []gradeBand
}

type gradeBand struct {
	min   float64
	grade string
}

func NewScoreConverterService() ScoreConverterService {
	return &scoreConverterService{
		bands: []gradeBand{
			{min: 90, grade: "A"},
			{min: 80, grade: "B"},
			{min: 70, grade: "C"},
			{min: 60, grade: "D"},
		},
	}
}

func (s *scoreConverterService) Percentage(score, maxScore int) (float64, error) {
	if maxScore <= 0 {
		return 0, fmt.Errorf("max score %d must be positive", maxScore)
	}
	if score < 0 || score > maxScore {
		return 0, fmt.Errorf("score %d is out of valid range (0-%d)", score, maxScore)
	}
	pct := float64(score) / float64(maxScore) * 100
	return math.Round(pct*10) / 10, nil
}

func (s *scoreConverterService) LetterGrade(percentage float64) string {
	for _, b := range s.bands {
		if percentage >= b.min {
			return b.grade
		}
	}
	return "F"
}

// grade fills percentage and letter for a completed score. Scores that
// cannot be converted (exam edited after grading, empty exam) are left blank.
func grade(conv ScoreConverterService, score *int, total int) (*float64, string) {
	if score == nil {
		return nil, ""
	}
	pct, err := conv.Percentage(*score, total)
	if err != nil {
		return nil, ""
	}
	return &pct, conv.LetterGrade(pct)
}
