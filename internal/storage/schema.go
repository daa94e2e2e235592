package storage

const schema = `
-- The 'questions' table stores each study question together with its
-- current memory state.
CREATE TABLE IF NOT EXISTS questions (
    id INTEGER PRIMARY KEY,
    book TEXT NOT NULL,
    page INTEGER NOT NULL,
    content TEXT NOT NULL,
    answer TEXT NOT NULL,
    difficulty REAL DEFAULT 0.3,
    stability REAL DEFAULT 0.0,
    last_review DATETIME,
    due_date DATETIME
);

-- The 'question_history' table is the append-only review log. The
-- 'difficulty' column holds the rating ordinal (1: again .. 4: easy).
CREATE TABLE IF NOT EXISTS question_history (
    id INTEGER PRIMARY KEY,
    question_id INTEGER NOT NULL,
    difficulty REAL NOT NULL,
    review_date DATETIME NOT NULL,

    FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_due_date ON questions(due_date);
CREATE INDEX IF NOT EXISTS idx_question_history ON question_history(question_id);
`
