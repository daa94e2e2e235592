package app

import (
	"bufio"
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rsheridan/drillbook/internal/config"
	"github.com/rsheridan/drillbook/internal/domain"
	"github.com/rsheridan/drillbook/internal/fsrs"
	"github.com/rsheridan/drillbook/internal/storage"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	out := &bytes.Buffer{}
	cfg := config.Config{QuestionsDuePerDay: 10, DatetimeFormat: "2006-01-02"}
	a := New(db, cfg, strings.NewReader(""), out)
	a.now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }
	a.rng = rand.New(rand.NewSource(1))
	return a, out
}

func (a *App) setInput(s string) {
	a.in = bufio.NewReader(strings.NewReader(s))
}

func (a *App) advanceDays(days int) {
	base := a.now()
	a.now = func() time.Time { return base.Add(time.Duration(days) * 24 * time.Hour) }
}

func mustCreate(t *testing.T, a *App) int64 {
	t.Helper()
	id, err := a.db.CreateQuestion(domain.Question{
		Book:    "Rudin",
		Page:    42,
		Content: "State the theorem.",
		Answer:  "The statement.",
	}, a.now())
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	return id
}

func TestRateGoodOnNewQuestion(t *testing.T) {
	a, out := newTestApp(t)
	id := mustCreate(t, a)

	if err := a.Rate(id, "good"); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	q, err := a.db.GetQuestion(id)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	// The rating ordinal is what lands in the difficulty column.
	if q.Difficulty != 3 {
		t.Errorf("difficulty = %v, want ordinal 3", q.Difficulty)
	}
	// Prior stability 0 floors at w1 = 0.6.
	if q.Stability != 0.6 {
		t.Errorf("stability = %v, want 0.6", q.Stability)
	}
	if q.LastReview == nil || !q.LastReview.Equal(a.now()) {
		t.Errorf("last review = %v, want %v", q.LastReview, a.now())
	}
	if q.DueDate == nil || !q.DueDate.After(a.now()) {
		t.Errorf("due date = %v, want after %v", q.DueDate, a.now())
	}

	events, err := a.db.History(id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 1 || events[0].Grade != 3 {
		t.Errorf("history = %+v, want one grade-3 event", events)
	}

	if !strings.Contains(out.String(), "Next review:") {
		t.Errorf("output missing next review line: %q", out.String())
	}
}

func TestRateAgainStaysDueToday(t *testing.T) {
	a, _ := newTestApp(t)
	id := mustCreate(t, a)

	if err := a.Rate(id, "again"); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	q, _ := a.db.GetQuestion(id)
	if q.DueDate == nil || !q.DueDate.Equal(a.now()) {
		t.Errorf("due date = %v, want %v (zero interval)", q.DueDate, a.now())
	}

	due, err := a.db.DueQuestions(storage.NoLimit, a.now())
	if err != nil {
		t.Fatalf("DueQuestions: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("question should still be due after an again rating")
	}
}

func TestRateSameDayGuard(t *testing.T) {
	a, out := newTestApp(t)
	id := mustCreate(t, a)

	if err := a.Rate(id, "good"); err != nil {
		t.Fatalf("first Rate: %v", err)
	}
	before, _ := a.db.GetQuestion(id)

	out.Reset()
	if err := a.Rate(id, "easy"); err != nil {
		t.Fatalf("second Rate: %v", err)
	}
	if !strings.Contains(out.String(), "already been reviewed today") {
		t.Errorf("expected refusal message, got %q", out.String())
	}

	after, _ := a.db.GetQuestion(id)
	if after.Difficulty != before.Difficulty || after.Stability != before.Stability ||
		!after.DueDate.Equal(*before.DueDate) {
		t.Errorf("state changed despite guard: before %+v, after %+v", before, after)
	}
	events, _ := a.db.History(id)
	if len(events) != 1 {
		t.Errorf("got %d history events, want 1", len(events))
	}
}

func TestRateAllowedNextDay(t *testing.T) {
	a, _ := newTestApp(t)
	id := mustCreate(t, a)

	if err := a.Rate(id, "good"); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	a.advanceDays(1)
	if err := a.Rate(id, "good"); err != nil {
		t.Fatalf("next-day Rate: %v", err)
	}
	events, _ := a.db.History(id)
	if len(events) != 2 {
		t.Errorf("got %d history events, want 2", len(events))
	}
}

func TestRateErrors(t *testing.T) {
	a, _ := newTestApp(t)
	id := mustCreate(t, a)

	if err := a.Rate(id, "impossible"); !errors.Is(err, fsrs.ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating, got %v", err)
	}
	if err := a.Rate(999, "good"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewSessionHonorsDailyLimit(t *testing.T) {
	a, _ := newTestApp(t)
	a.cfg.QuestionsDuePerDay = 2
	for i := 0; i < 3; i++ {
		mustCreate(t, a)
	}

	// Per question: decline the answer reveal, then rate good.
	a.setInput(strings.Repeat("n\ngood\n", 2))
	if err := a.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}

	reviewed := 0
	qs, _ := a.db.ListQuestions(storage.NoLimit)
	for _, q := range qs {
		if q.LastReview != nil {
			reviewed++
		}
	}
	if reviewed != 2 {
		t.Errorf("reviewed %d questions, want the daily limit of 2", reviewed)
	}
}

func TestReviewNothingDue(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if !strings.Contains(out.String(), "No questions due today!") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCreateFlow(t *testing.T) {
	a, out := newTestApp(t)
	a.setInput("Axler\n12\nWhat is a vector space?\nA set with addition and scalar multiplication satisfying the axioms.\n")

	if err := a.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.Contains(out.String(), "Created question") {
		t.Errorf("output = %q", out.String())
	}

	qs, _ := a.db.ListQuestions(storage.NoLimit)
	if len(qs) != 1 || qs[0].Book != "Axler" || qs[0].Page != 12 {
		t.Errorf("stored question = %+v", qs)
	}
}

func TestCreateFlowRejectsBadPage(t *testing.T) {
	a, _ := newTestApp(t)
	a.setInput("Axler\ntwelve\nQ\nA\n")
	if err := a.Create(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestEditFlowKeepsDefaults(t *testing.T) {
	a, _ := newTestApp(t)
	id := mustCreate(t, a)

	// Empty answers keep every field, except the page we change.
	a.setInput("\n7\n\n\n")
	if err := a.Edit(id); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	q, _ := a.db.GetQuestion(id)
	if q.Book != "Rudin" || q.Page != 7 || q.Content != "State the theorem." {
		t.Errorf("edited question = %+v", q)
	}
}

func TestImportDeduplicates(t *testing.T) {
	a, out := newTestApp(t)

	path := filepath.Join(t.TempDir(), "notes.md")
	body := `B: Rudin
P: 1
Q: First
A: One
---
B: Rudin
P: 2
Q: Second
A: Two
---
B: Rudin
P: 0
Q: Broken page
A: Skipped
---
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := a.Import(path); err != nil {
		t.Fatalf("Import: %v", err)
	}
	qs, _ := a.db.ListQuestions(storage.NoLimit)
	if len(qs) != 2 {
		t.Fatalf("imported %d questions, want 2 (invalid draft skipped)", len(qs))
	}
	if !strings.Contains(out.String(), "Imported 2 questions") {
		t.Errorf("output = %q", out.String())
	}

	// Importing the same file again inserts nothing.
	out.Reset()
	if err := a.Import(path); err != nil {
		t.Fatalf("second Import: %v", err)
	}
	qs, _ = a.db.ListQuestions(storage.NoLimit)
	if len(qs) != 2 {
		t.Errorf("duplicate import grew the store to %d questions", len(qs))
	}
	if !strings.Contains(out.String(), "Imported 0 questions") {
		t.Errorf("output = %q", out.String())
	}
}

func TestShowDueEmpty(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.ShowDue(storage.NoLimit); err != nil {
		t.Fatalf("ShowDue: %v", err)
	}
	if !strings.Contains(out.String(), "No questions due today!") {
		t.Errorf("output = %q", out.String())
	}
}

func TestShowQuestionIncludesHistory(t *testing.T) {
	a, out := newTestApp(t)
	id := mustCreate(t, a)
	if err := a.Rate(id, "hard"); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	out.Reset()
	if err := a.ShowQuestion(id); err != nil {
		t.Fatalf("ShowQuestion: %v", err)
	}
	if !strings.Contains(out.String(), "hard on 2024-01-10") {
		t.Errorf("output missing history line: %q", out.String())
	}
}
