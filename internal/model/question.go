package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// OptionLabels are the four choices every question carries, in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

// Options maps an option label (A-D) to its text.
type Options map[string]string

type Question struct {
	ID            uint                        `gorm:"primarykey" json:"id"`
	ExamID        uint                        `json:"exam_id" gorm:"not null;index"`
	Content       string                      `json:"content" gorm:"type:text;not null"`
	Options       datatypes.JSONType[Options] `json:"options" gorm:"type:jsonb;not null"`
	CorrectAnswer string                      `json:"correct_answer" gorm:"type:varchar(1);not null"`
	Points        int                         `json:"points" gorm:"not null;default:1"`
	Difficulty    Difficulty                  `json:"difficulty" gorm:"type:varchar(16);not null;default:'medium'"`
	Topic         string                      `json:"topic,omitempty"`
	Position      int                         `json:"position" gorm:"not null;default:0"`
	Explanation   string                      `json:"explanation,omitempty" gorm:"type:text"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`
}

// IsCorrect reports whether label matches the stored correct option.
func (q *Question) IsCorrect(label *string) bool {
	return label != nil && *label == q.CorrectAnswer
}
