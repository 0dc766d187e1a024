// Package sqlite keeps an append-only journal of tutor interactions.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steveyiyo/tutor-relay/pkg/types"

	_ "modernc.org/sqlite"
)

type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database and applies migrations.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	// one writer; handlers run concurrently
	db.SetMaxOpenConns(1)
	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			connection_id TEXT NOT NULL,
			user_message TEXT NOT NULL,
			tutor_reply TEXT NOT NULL,
			learning_mode TEXT NOT NULL,
			difficulty_level TEXT NOT NULL,
			word_count INTEGER,
			grammar_issues INTEGER,
			fluency_score INTEGER,
			vocabulary_level TEXT,
			processing_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error_details TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_connection ON interactions(connection_id);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("journal: migrate: %w", err)
		}
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, l types.InteractionLog) error {
	var words, issues, fluency sql.NullInt64
	var vocab sql.NullString
	if a := l.SpeechAnalysis; a != nil {
		words = sql.NullInt64{Int64: int64(a.WordCount), Valid: true}
		issues = sql.NullInt64{Int64: int64(a.GrammarIssuesCount), Valid: true}
		fluency = sql.NullInt64{Int64: int64(a.FluencyScore), Valid: true}
		vocab = sql.NullString{String: a.VocabularyLevel, Valid: true}
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO interactions (created_at, connection_id, user_message, tutor_reply, learning_mode, difficulty_level,
			word_count, grammar_issues, fluency_score, vocabulary_level, processing_ms, success, error_details)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Timestamp, l.ConnectionID, l.UserMessage, l.TutorReply, l.LearningMode, l.DifficultyLevel,
		words, issues, fluency, vocab, l.ProcessingTimeMs, l.Success, l.ErrorDetails,
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}
