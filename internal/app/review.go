package app

import (
	"fmt"
	"time"

	"github.com/rsheridan/drillbook/internal/domain"
	"github.com/rsheridan/drillbook/internal/fsrs"
)

// reviewedOn reports whether the question's last review falls on the same
// calendar date as now, in now's location.
func reviewedOn(q *domain.Question, now time.Time) bool {
	if q.LastReview == nil {
		return false
	}
	y1, m1, d1 := q.LastReview.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Rate records a review outcome for a question: the scheduler computes the
// new state and this persists it together with a history entry. A question
// already reviewed on today's calendar date is refused without any state
// change; that refusal is reported, not an error.
func (a *App) Rate(id int64, label string) error {
	rating, err := fsrs.ParseRating(label)
	if err != nil {
		return err
	}

	q, err := a.db.GetQuestion(id)
	if err != nil {
		return err
	}

	now := a.now()
	if reviewedOn(q, now) {
		fmt.Fprintln(a.out, "This question has already been reviewed today.")
		return nil
	}

	ordinal, stability, due, err := a.fsrs.ComputeNextReview(*q, rating, now)
	if err != nil {
		return err
	}

	q.Difficulty = ordinal
	q.Stability = stability
	q.LastReview = &now
	q.DueDate = &due

	if err := a.db.RecordReview(*q, ordinal, now); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Next review: %s\n", due.Format(a.cfg.DatetimeFormat))
	return nil
}

// promptRating asks for a rating label and applies it via Rate. Guarded
// questions short-circuit before the prompt so the user is not asked to
// grade a review that would be refused anyway.
func (a *App) promptRating(q *domain.Question) error {
	if reviewedOn(q, a.now()) {
		fmt.Fprintln(a.out, "This question has already been reviewed today.")
		return nil
	}

	fmt.Fprintln(a.out, "How difficult was this question?")
	fmt.Fprintln(a.out, "  again - Need to review this again today")
	fmt.Fprintln(a.out, "  hard  - That was difficult")
	fmt.Fprintln(a.out, "  good  - Got it right")
	fmt.Fprintln(a.out, "  easy  - Too easy")

	for {
		label, err := a.prompt("Rating:")
		if err != nil {
			return err
		}
		if _, err := fsrs.ParseRating(label); err != nil {
			fmt.Fprintln(a.out, "Please answer again, hard, good or easy.")
			continue
		}
		return a.Rate(q.ID, label)
	}
}

// Review runs an interactive session over today's due questions, capped by
// the configured daily limit and presented in random order. The cap bounds
// session length; it implies no priority, hence the shuffle.
func (a *App) Review() error {
	questions, err := a.db.DueQuestions(a.cfg.QuestionsDuePerDay, a.now())
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Fprintln(a.out, "No questions due today!")
		return nil
	}

	a.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	for i := range questions {
		q := &questions[i]
		if err := a.ShowQuestion(q.ID); err != nil {
			return err
		}
		show, err := a.confirm("Show answer?")
		if err != nil {
			return err
		}
		if show {
			if err := a.ShowAnswer(q.ID); err != nil {
				return err
			}
		}
		if err := a.promptRating(q); err != nil {
			return err
		}
	}
	return nil
}
