// Package app wires the question store and the scheduler into the
// interactive command flows the CLI exposes. All memory-state writes go
// through the scheduler; presentation here never edits difficulty or
// stability by hand.
package app

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rsheridan/drillbook/internal/config"
	"github.com/rsheridan/drillbook/internal/domain"
	"github.com/rsheridan/drillbook/internal/fsrs"
	"github.com/rsheridan/drillbook/internal/storage"
)

// App holds the dependencies for the command flows.
type App struct {
	db   *storage.DB
	fsrs *fsrs.Scheduler
	cfg  config.Config
	in   *bufio.Reader
	out  io.Writer
	now  func() time.Time
	rng  *rand.Rand
}

// New creates an App reading prompts from in and writing to out.
func New(db *storage.DB, cfg config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		db:   db,
		fsrs: fsrs.New(fsrs.DefaultWeights()),
		cfg:  cfg,
		in:   bufio.NewReader(in),
		out:  out,
		now:  time.Now,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// prompt prints a label and reads one line of input.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptDefault is prompt with a default used when the input is empty.
func (a *App) promptDefault(label, def string) (string, error) {
	answer, err := a.prompt(fmt.Sprintf("%s [%s]:", label, def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// confirm asks a yes/no question; anything but y/yes counts as no.
func (a *App) confirm(label string) (bool, error) {
	answer, err := a.prompt(label + " [y/N]:")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Create prompts for a new question's fields and stores it.
func (a *App) Create() error {
	book, err := a.prompt("Book title:")
	if err != nil {
		return err
	}
	pageStr, err := a.prompt("Page number:")
	if err != nil {
		return err
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return fmt.Errorf("%w: page %q is not a number", domain.ErrValidation, pageStr)
	}
	content, err := a.prompt("Question content:")
	if err != nil {
		return err
	}
	answer, err := a.prompt("Answer/Solution:")
	if err != nil {
		return err
	}

	id, err := a.db.CreateQuestion(domain.Question{
		Book:    book,
		Page:    page,
		Content: content,
		Answer:  answer,
	}, a.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created question %d\n", id)
	return nil
}

// Edit prompts for a question's fields, defaulting to the current values,
// and overwrites it. Memory state is carried over untouched.
func (a *App) Edit(id int64) error {
	q, err := a.db.GetQuestion(id)
	if err != nil {
		return err
	}

	book, err := a.promptDefault("Book title", q.Book)
	if err != nil {
		return err
	}
	pageStr, err := a.promptDefault("Page number", strconv.Itoa(q.Page))
	if err != nil {
		return err
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return fmt.Errorf("%w: page %q is not a number", domain.ErrValidation, pageStr)
	}
	content, err := a.promptDefault("Question content", q.Content)
	if err != nil {
		return err
	}
	answer, err := a.promptDefault("Answer/Solution", q.Answer)
	if err != nil {
		return err
	}

	q.Book = book
	q.Page = page
	q.Content = content
	q.Answer = answer
	if err := q.Validate(); err != nil {
		return err
	}
	if err := a.db.UpdateQuestion(*q); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated question %d\n", id)
	return nil
}

// Delete removes a question and its review history.
func (a *App) Delete(id int64) error {
	if err := a.db.DeleteQuestion(id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted question %d\n", id)
	return nil
}

// DeleteHistory resets one question's scheduling state and purges its log.
func (a *App) DeleteHistory(id int64) error {
	if err := a.db.DeleteHistory(id, a.now()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "History deleted for question %d\n", id)
	return nil
}

// DeleteAllHistory resets every question's scheduling state.
func (a *App) DeleteAllHistory() error {
	if err := a.db.DeleteAllHistory(a.now()); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "History deleted for all questions")
	return nil
}

// ResetDatabase drops all questions and progress after confirmation.
func (a *App) ResetDatabase() error {
	ok, err := a.confirm("Are you sure you want to reset the database? This will delete all questions and progress.")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Database reset cancelled")
		return nil
	}
	if err := a.db.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Database has been reset")
	return nil
}
