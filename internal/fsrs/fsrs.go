package fsrs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rsheridan/drillbook/internal/domain"
)

// ErrInvalidRating is returned for a rating outside again/hard/good/easy.
// Use errors.Is to check for it.
var ErrInvalidRating = errors.New("invalid rating")

// Rating is the user's self-reported recall outcome for a review.
type Rating int

const (
	Again Rating = 1 // failed, re-show the same day
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

var ratingNames = map[Rating]string{
	Again: "again",
	Hard:  "hard",
	Good:  "good",
	Easy:  "easy",
}

// String returns the canonical lowercase label for the rating.
// Invalid values render as "unknown".
func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether r is one of the four canonical ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// ParseRating maps a label ("again", "hard", "good", "easy") to its Rating.
func ParseRating(label string) (Rating, error) {
	for r, name := range ratingNames {
		if name == label {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, label)
}

// Weights is the model weight vector. Only w0 through w5 are read by this
// reduced model; the remaining slots are reserved so the vector keeps the
// shape expected by tooling that consumes full FSRS weight sets.
type Weights [11]float64

// DefaultWeights returns the fixed weight vector the scheduler ships with.
func DefaultWeights() Weights {
	return Weights{0.4, 0.6, 2.4, 5.8, 4.93, 0.94, 0.86, 0.01, 1.49, 0.14, 0.94}
}

// Scheduler computes the next review schedule for a question.
type Scheduler struct {
	w Weights
}

// New creates a Scheduler with the given weights.
func New(w Weights) *Scheduler {
	return &Scheduler{w: w}
}

// ComputeNextReview turns a review outcome into the values the caller
// persists back into the question: the rating ordinal (stored as the
// question's difficulty and as the history grade), the new stability,
// and the next due date. It is a pure function of its inputs; now is
// the review timestamp and is never read from the wall clock here.
func (s *Scheduler) ComputeNextReview(q domain.Question, rating Rating, now time.Time) (ordinal float64, stability float64, due time.Time, err error) {
	if !rating.IsValid() {
		return 0, 0, time.Time{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	newDifficulty := s.nextDifficulty(q.Difficulty, rating)
	newStability := s.nextStability(q.Stability, rating, newDifficulty)

	interval := s.interval(newStability, rating)
	nextDue := now.Add(time.Duration(interval * 24 * float64(time.Hour)))

	return float64(rating), newStability, nextDue, nil
}

// nextDifficulty applies the difficulty update. The result is not clamped:
// repeated again ratings drift toward 1 and repeated easy ratings toward 0.
func (s *Scheduler) nextDifficulty(difficulty float64, rating Rating) float64 {
	switch rating {
	case Again:
		return difficulty + s.w[0]*(1-difficulty)
	case Easy:
		return difficulty + s.w[0]*(0-difficulty)
	default:
		return difficulty + s.w[0]*(1/float64(rating)-1)
	}
}

// nextStability applies the stability update. An again rating collapses
// stability to the floor w1; otherwise stability grows multiplicatively,
// damped by an inverse power of the current stability and by difficulty.
func (s *Scheduler) nextStability(stability float64, rating Rating, difficulty float64) float64 {
	if rating == Again {
		return s.w[1]
	}
	grown := stability * (1 +
		math.Exp(s.w[2])*
			(11-float64(rating))*
			math.Pow(stability+1, -s.w[3])*
			math.Exp((1-difficulty)*s.w[4]))
	return math.Max(s.w[1], grown)
}

// interval converts the new stability into days until the next review.
// Intervals may be fractional; again always yields 0 so the question
// stays eligible the same day.
func (s *Scheduler) interval(stability float64, rating Rating) float64 {
	base := stability * math.Exp((1-stability)*s.w[5])
	switch rating {
	case Easy:
		return base * 1.3
	case Hard:
		return base * 0.8
	case Again:
		return 0
	default:
		return base
	}
}
