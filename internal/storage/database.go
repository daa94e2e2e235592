package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rsheridan/drillbook/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// ErrNotFound is returned when a question ID does not exist.
// Use errors.Is to check for it.
var ErrNotFound = errors.New("question not found")

// NoLimit disables the row cap on listing queries. A limit of 0 means
// zero rows; the two are deliberately distinct.
const NoLimit = -1

// DB wraps the SQL database connection holding all study state.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to
// date. Foreign keys are enabled so deleting a question cascades to its
// review history.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection keeps every
	// statement serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateQuestion validates and inserts a new question with the default
// memory state and a due date of now, returning its assigned ID.
func (db *DB) CreateQuestion(q domain.Question, now time.Time) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	res, err := db.conn.Exec(`
		INSERT INTO questions (book, page, content, answer, difficulty, stability, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		q.Book,
		q.Page,
		q.Content,
		q.Answer,
		domain.DefaultDifficulty,
		domain.DefaultStability,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetQuestion retrieves a question by ID.
func (db *DB) GetQuestion(id int64) (*domain.Question, error) {
	row := db.conn.QueryRow(`
		SELECT id, book, page, content, answer, difficulty, stability, last_review, due_date
		FROM questions WHERE id = ?
	`, id)

	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return q, nil
}

// ListQuestions returns questions in insertion order. A negative limit
// (NoLimit) returns all of them.
func (db *DB) ListQuestions(limit int) ([]domain.Question, error) {
	query := `
		SELECT id, book, page, content, answer, difficulty, stability, last_review, due_date
		FROM questions ORDER BY id`
	args := []any{}
	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	return collectQuestions(rows)
}

// UpdateQuestion overwrites all mutable fields of a question by ID.
func (db *DB) UpdateQuestion(q domain.Question) error {
	res, err := db.conn.Exec(`
		UPDATE questions
		SET book = ?, page = ?, content = ?, answer = ?, difficulty = ?,
			stability = ?, last_review = ?, due_date = ?
		WHERE id = ?
	`,
		q.Book,
		q.Page,
		q.Content,
		q.Answer,
		q.Difficulty,
		q.Stability,
		nullTime(q.LastReview),
		nullTime(q.DueDate),
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update question %d: %w", q.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update question %d: %w", q.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("question %d: %w", q.ID, ErrNotFound)
	}
	return nil
}

// DueQuestions returns the questions eligible at the given time, ordered
// by due date ascending with never-reviewed (NULL due) questions first.
// A negative limit (NoLimit) returns all of them.
func (db *DB) DueQuestions(limit int, now time.Time) ([]domain.Question, error) {
	query := `
		SELECT id, book, page, content, answer, difficulty, stability, last_review, due_date
		FROM questions
		WHERE due_date <= ? OR due_date IS NULL
		ORDER BY due_date ASC NULLS FIRST`
	args := []any{now}
	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get due questions: %w", err)
	}
	defer rows.Close()

	return collectQuestions(rows)
}

// DeleteQuestion removes a question; its review history is cascade-deleted.
func (db *DB) DeleteQuestion(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteHistory resets a question's memory state to the defaults, marks
// it due now, and purges its review log. The reset and the purge commit
// together or not at all.
func (db *DB) DeleteHistory(id int64, now time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE questions
		SET difficulty = ?, stability = ?, last_review = NULL, due_date = ?
		WHERE id = ?
	`, domain.DefaultDifficulty, domain.DefaultStability, now, id)
	if err != nil {
		return fmt.Errorf("failed to reset question %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reset question %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM question_history WHERE question_id = ?`, id); err != nil {
		return fmt.Errorf("failed to purge history for question %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history delete for question %d: %w", id, err)
	}
	return nil
}

// DeleteAllHistory applies DeleteHistory to every question atomically.
func (db *DB) DeleteAllHistory(now time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE questions
		SET difficulty = ?, stability = ?, last_review = NULL, due_date = ?
	`, domain.DefaultDifficulty, domain.DefaultStability, now); err != nil {
		return fmt.Errorf("failed to reset questions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM question_history`); err != nil {
		return fmt.Errorf("failed to purge history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history delete: %w", err)
	}
	return nil
}

// RecordReview persists a completed review: the question's new memory
// state and its history entry commit together or not at all, so a failed
// write never leaves an event without the matching state change.
func (db *DB) RecordReview(q domain.Question, grade float64, when time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE questions
		SET book = ?, page = ?, content = ?, answer = ?, difficulty = ?,
			stability = ?, last_review = ?, due_date = ?
		WHERE id = ?
	`,
		q.Book,
		q.Page,
		q.Content,
		q.Answer,
		q.Difficulty,
		q.Stability,
		nullTime(q.LastReview),
		nullTime(q.DueDate),
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update question %d: %w", q.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update question %d: %w", q.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("question %d: %w", q.ID, ErrNotFound)
	}

	if _, err := tx.Exec(`
		INSERT INTO question_history (question_id, difficulty, review_date)
		VALUES (?, ?, ?)
	`, q.ID, grade, when); err != nil {
		return fmt.Errorf("failed to append review for question %d: %w", q.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review for question %d: %w", q.ID, err)
	}
	return nil
}

// AppendEvent appends one review to a question's log. The grade is the
// rating ordinal recorded as a float, matching the history table layout.
func (db *DB) AppendEvent(questionID int64, grade float64, when time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO question_history (question_id, difficulty, review_date)
		VALUES (?, ?, ?)
	`, questionID, grade, when)
	if err != nil {
		return fmt.Errorf("failed to append review for question %d: %w", questionID, err)
	}
	return nil
}

// History returns a question's review events, newest first.
func (db *DB) History(questionID int64) ([]domain.ReviewEvent, error) {
	var exists bool
	err := db.conn.QueryRow(`SELECT EXISTS(SELECT 1 FROM questions WHERE id = ?)`, questionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check question %d: %w", questionID, err)
	}
	if !exists {
		return nil, fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}

	rows, err := db.conn.Query(`
		SELECT id, question_id, difficulty, review_date
		FROM question_history
		WHERE question_id = ?
		ORDER BY review_date DESC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for question %d: %w", questionID, err)
	}
	defer rows.Close()

	var events []domain.ReviewEvent
	for rows.Next() {
		var ev domain.ReviewEvent
		if err := rows.Scan(&ev.ID, &ev.QuestionID, &ev.Grade, &ev.ReviewDate); err != nil {
			return nil, fmt.Errorf("failed to scan review event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history for question %d: %w", questionID, err)
	}
	return events, nil
}

// Reset drops all questions and history and recreates the schema.
func (db *DB) Reset() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS question_history`); err != nil {
		return fmt.Errorf("failed to drop history table: %w", err)
	}
	if _, err := tx.Exec(`DROP TABLE IF EXISTS questions`); err != nil {
		return fmt.Errorf("failed to drop questions table: %w", err)
	}
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var q domain.Question
	var lastReview, dueDate sql.NullTime
	if err := row.Scan(
		&q.ID,
		&q.Book,
		&q.Page,
		&q.Content,
		&q.Answer,
		&q.Difficulty,
		&q.Stability,
		&lastReview,
		&dueDate,
	); err != nil {
		return nil, err
	}
	if lastReview.Valid {
		t := lastReview.Time
		q.LastReview = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		q.DueDate = &t
	}
	return &q, nil
}

func collectQuestions(rows *sql.Rows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read question rows: %w", err)
	}
	return questions, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
