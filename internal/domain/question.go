package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is returned when a question fails field validation.
// Use errors.Is to check for it.
var ErrValidation = errors.New("invalid question")

// Default memory state for a question that has never been reviewed.
const (
	DefaultDifficulty = 0.3
	DefaultStability  = 0.0
)

// Question is a single study item with its scheduling state.
// Difficulty and Stability are written only by the scheduler (or a
// history reset); everything else is user content.
type Question struct {
	ID         int64
	Book       string `validate:"required"`
	Page       int    `validate:"required,gt=0"`
	Content    string `validate:"required"`
	Answer     string `validate:"required"`
	Difficulty float64
	Stability  float64
	LastReview *time.Time
	DueDate    *time.Time // nil means new, immediately eligible
}

// ReviewEvent records one completed review of a question.
// Grade holds the rating ordinal (1: Again, 2: Hard, 3: Good, 4: Easy)
// as stored in the history table.
type ReviewEvent struct {
	ID         int64
	QuestionID int64
	Grade      float64
	ReviewDate time.Time
}

var validate = validator.New()

// Validate checks the user-supplied fields: book, content and answer
// must be non-empty and page must be a positive integer.
func (q *Question) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
