package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// SQLite is a single-file repository for self-hosted deployments
type SQLite struct {
	db           *sql.DB
	guide        *guideRepository
	progress     *progressRepository
	conversation *conversationRepository
}

var _ interfaces.Repository = &SQLite{}

const schema = `
CREATE TABLE IF NOT EXISTS guide_days (
	user_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	day INTEGER NOT NULL,
	title TEXT NOT NULL,
	approaches_json TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, topic, day)
);

CREATE TABLE IF NOT EXISTS progress (
	user_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	day INTEGER NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, topic, day)
);

CREATE TABLE IF NOT EXISTS conversations (
	session_id TEXT PRIMARY KEY,
	turns_json TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
`

// New opens (or creates) the database file at dbPath and applies the schema
func New(ctx context.Context, dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", dbPath))
	}

	// Pragmas apply to every pooled connection; transactions take the write lock at BEGIN.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("path", dbPath))
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.V("path", dbPath))
	}

	return &SQLite{
		db:           db,
		guide:        &guideRepository{db: db},
		progress:     &progressRepository{db: db},
		conversation: &conversationRepository{db: db},
	}, nil
}

func (s *SQLite) Guide() interfaces.GuideRepository {
	return s.guide
}

func (s *SQLite) Progress() interfaces.ProgressRepository {
	return s.progress
}

func (s *SQLite) Conversation() interfaces.ConversationRepository {
	return s.conversation
}

func (s *SQLite) Close(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database")
	}
	return nil
}
