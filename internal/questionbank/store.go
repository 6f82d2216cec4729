package questionbank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/learnmore-edu/extractor/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Validation failures reported to callers. The review layer matches on
// these messages to pick its user-facing text.
var (
	ErrContentRequired = errors.New("question content is required")
	ErrAnswerRequired  = errors.New("answer is required. Please fill in the answer field before saving.")
)

const schema = `
CREATE TABLE IF NOT EXISTS subjects (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS chapters (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	subject_id INTEGER NOT NULL REFERENCES subjects(id)
);

CREATE TABLE IF NOT EXISTS questions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	chapter_id  INTEGER NOT NULL REFERENCES chapters(id),
	content     TEXT NOT NULL,
	type        TEXT NOT NULL,
	options     TEXT,
	answer      TEXT NOT NULL,
	explanation TEXT NOT NULL DEFAULT '',
	difficulty  INTEGER NOT NULL DEFAULT 3,
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_questions_chapter ON questions(chapter_id);
`

const (
	defaultSubject = "General"
	importChapter  = "Imported Questions"
)

// Store is the durable question bank backed by SQLite
type Store struct {
	db *sql.DB
}

// Open opens the question bank at path, creating the schema if needed.
// Use ":memory:" for an ephemeral bank.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question bank: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize question bank schema: %w", err)
	}

	slog.Debug("Question bank opened", "path", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveQuestion validates and persists one finalized candidate. Imported
// questions are filed under a find-or-create "Imported Questions" chapter
// in the "General" subject; a later release will let the user pick.
func (s *Store) SaveQuestion(ctx context.Context, q models.QuestionCandidate) error {
	if strings.TrimSpace(q.Content) == "" {
		return ErrContentRequired
	}
	if q.Answer.IsEmpty() {
		return ErrAnswerRequired
	}

	chapterID, err := s.importChapterID(ctx)
	if err != nil {
		return err
	}

	var options sql.NullString
	if len(q.Options) > 0 {
		data, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}
		options = sql.NullString{String: string(data), Valid: true}
	}

	answer, err := json.Marshal(q.Answer)
	if err != nil {
		return fmt.Errorf("failed to encode answer: %w", err)
	}

	difficulty := q.Difficulty
	if difficulty == 0 {
		difficulty = 3
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (chapter_id, content, type, options, answer, explanation, difficulty)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		chapterID, q.Content, string(q.Type), options, string(answer), q.Explanation, difficulty,
	)
	if err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}

	id, _ := res.LastInsertId()
	slog.Info("Question saved", "id", id, "type", q.Type, "chapter_id", chapterID)
	return nil
}

// importChapterID finds or creates the chapter imported questions land in
func (s *Store) importChapterID(ctx context.Context) (int64, error) {
	var chapterID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM chapters WHERE title = ?`, importChapter).Scan(&chapterID)
	if err == nil {
		return chapterID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up import chapter: %w", err)
	}

	var subjectID int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM subjects WHERE name = ?`, defaultSubject).Scan(&subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		res, ierr := s.db.ExecContext(ctx, `INSERT INTO subjects (name, sort_order) VALUES (?, 999)`, defaultSubject)
		if ierr != nil {
			return 0, fmt.Errorf("failed to create default subject: %w", ierr)
		}
		subjectID, _ = res.LastInsertId()
	} else if err != nil {
		return 0, fmt.Errorf("failed to look up default subject: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO chapters (title, subject_id) VALUES (?, ?)`, importChapter, subjectID)
	if err != nil {
		return 0, fmt.Errorf("failed to create import chapter: %w", err)
	}
	chapterID, _ = res.LastInsertId()

	slog.Info("Created import chapter", "chapter_id", chapterID, "subject_id", subjectID)
	return chapterID, nil
}

// SavedQuestion is a persisted question bank row
type SavedQuestion struct {
	ID          int64             `json:"id"`
	ChapterID   int64             `json:"chapter_id"`
	Content     string            `json:"content"`
	Type        string            `json:"type"`
	Options     map[string]string `json:"options,omitempty"`
	Answer      models.Answer     `json:"answer"`
	Explanation string            `json:"explanation,omitempty"`
	Difficulty  int               `json:"difficulty"`
	CreatedAt   string            `json:"created_at"`
}

// ListQuestions returns all saved questions in insertion order
func (s *Store) ListQuestions(ctx context.Context) ([]SavedQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chapter_id, content, type, options, answer, explanation, difficulty, created_at
		 FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []SavedQuestion
	for rows.Next() {
		var q SavedQuestion
		var options sql.NullString
		var answer string
		if err := rows.Scan(&q.ID, &q.ChapterID, &q.Content, &q.Type, &options, &answer, &q.Explanation, &q.Difficulty, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		if options.Valid {
			if err := json.Unmarshal([]byte(options.String), &q.Options); err != nil {
				return nil, fmt.Errorf("failed to decode options for question %d: %w", q.ID, err)
			}
		}
		if err := json.Unmarshal([]byte(answer), &q.Answer); err != nil {
			return nil, fmt.Errorf("failed to decode answer for question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
