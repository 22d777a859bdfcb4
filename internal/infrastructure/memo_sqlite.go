package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/zerolog/log"
)

// SQLiteMemo is an image memo stored in a SQLite database.
// Memos sharing a database are told apart by their namespace.
type SQLiteMemo struct {
	db        *sql.DB
	namespace string
}

// NewSQLiteMemo opens the database at path and creates the memo table if needed
func NewSQLiteMemo(path, namespace string) (*SQLiteMemo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The memo is small and writes must not interleave
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS image_memo (
		namespace TEXT NOT NULL,
		movie_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (namespace, movie_id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create image_memo table: %w", err)
	}
	log.Info().Str("path", path).Msg("Using SQLite image memo")

	return &SQLiteMemo{db: db, namespace: namespace}, nil
}

// Namespace returns a memo sharing the same database under another namespace
func (sm *SQLiteMemo) Namespace(namespace string) *SQLiteMemo {
	return &SQLiteMemo{db: sm.db, namespace: namespace}
}

// Close closes the database
func (sm *SQLiteMemo) Close() error {
	return sm.db.Close()
}

func (sm *SQLiteMemo) Get(ctx context.Context, id int) (string, bool, error) {
	var url string
	err := sm.db.QueryRowContext(ctx, "SELECT url FROM image_memo WHERE namespace = ? AND movie_id = ?", sm.namespace, id).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("memo get: %w", err)
	}
	return url, true, nil
}

func (sm *SQLiteMemo) SetIfAbsent(ctx context.Context, id int, url string) (string, error) {
	_, err := sm.db.ExecContext(ctx,
		"INSERT INTO image_memo (namespace, movie_id, url) VALUES (?, ?, ?) ON CONFLICT(namespace, movie_id) DO NOTHING",
		sm.namespace, id, url,
	)
	if err != nil {
		return "", fmt.Errorf("memo set: %w", err)
	}
	stored, _, err := sm.Get(ctx, id)
	return stored, err
}
