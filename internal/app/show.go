package app

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rsheridan/drillbook/internal/domain"
	"github.com/rsheridan/drillbook/internal/fsrs"
)

// formatDue renders a due date with the configured format, or "New" for a
// question that has never been scheduled.
func (a *App) formatDue(due *time.Time) string {
	if due == nil {
		return "New"
	}
	return due.Format(a.cfg.DatetimeFormat)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// ShowDue prints a table of the questions currently due. A negative
// limit shows all of them.
func (a *App) ShowDue(limit int) error {
	questions, err := a.db.DueQuestions(limit, a.now())
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Fprintln(a.out, "No questions due today!")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBook\tPage\tQuestion\tDue Date")
	for _, q := range questions {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			q.ID, q.Book, q.Page, truncate(q.Content, 50), a.formatDue(q.DueDate))
	}
	return w.Flush()
}

// ShowAll prints every question with its due date, in insertion order.
// A negative limit shows all of them.
func (a *App) ShowAll(limit int) error {
	questions, err := a.db.ListQuestions(limit)
	if err != nil {
		return err
	}
	for _, q := range questions {
		fmt.Fprintf(a.out, "From: %s, Page: %d - Due date: %s\n", q.Book, q.Page, a.formatDue(q.DueDate))
		fmt.Fprintln(a.out, q.Content)
	}
	return nil
}

// ShowQuestion prints one question's prompt, provenance and review history.
func (a *App) ShowQuestion(id int64) error {
	q, err := a.db.GetQuestion(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "====================================")
	fmt.Fprintf(a.out, "From: %s, Page: %d\n", q.Book, q.Page)
	fmt.Fprintf(a.out, "Due date %s\n", a.formatDue(q.DueDate))
	fmt.Fprintf(a.out, "\n%s\n\n", q.Content)

	events, err := a.db.History(id)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		fmt.Fprintln(a.out, "Review History")
		for _, ev := range events {
			fmt.Fprintf(a.out, "%s on %s\n", gradeLabel(ev), ev.ReviewDate.Format(a.cfg.DatetimeFormat))
		}
	}
	return nil
}

// ShowAnswer prints the stored answer for a question.
func (a *App) ShowAnswer(id int64) error {
	q, err := a.db.GetQuestion(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nAnswer to Question %d\n%s\n", q.ID, q.Answer)
	return nil
}

// gradeLabel maps a logged grade ordinal back to its rating label.
// Grades outside the canonical scale render as "unknown".
func gradeLabel(ev domain.ReviewEvent) string {
	return fsrs.Rating(int(ev.Grade)).String()
}
