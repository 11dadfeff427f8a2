// Package storage keeps a local sqlite audit trail: every answered query
// and every dataset refresh. Writes are best-effort from the caller's point
// of view; a failed audit write is logged and never reaches the user.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Query outcomes recorded in the audit log.
const (
	OutcomeOK      = "ok"
	OutcomeNoData  = "no_data"
	OutcomeBadArgs = "bad_args"
	OutcomeError   = "error"
)

// QueryLogEntry is one answered (or failed) report query.
type QueryLogEntry struct {
	ID             int64
	ChatID         int64
	Command        string
	Params         string
	NetProfitCents int64
	Outcome        string
	CreatedAt      time.Time
}

// RefreshLogEntry is one dataset refresh attempt, attributed to the chat
// that requested it. ChatID is zero for refreshes with no requester.
type RefreshLogEntry struct {
	ID        int64
	ChatID    int64
	Source    string
	Bytes     int64
	Status    string
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RecordQuery appends one query to the audit log.
func (r *SQLiteRepository) RecordQuery(ctx context.Context, e QueryLogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO query_log (chat_id, command, params, net_profit_cents, outcome)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ChatID, e.Command, e.Params, e.NetProfitCents, e.Outcome)
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

// RecordRefresh appends one refresh attempt to the audit log.
func (r *SQLiteRepository) RecordRefresh(ctx context.Context, e RefreshLogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_log (chat_id, source, bytes, status) VALUES (?, ?, ?, ?)`,
		e.ChatID, e.Source, e.Bytes, e.Status)
	if err != nil {
		return fmt.Errorf("record refresh: %w", err)
	}
	return nil
}

// LastRefresh returns the most recent successful refresh, or sql.ErrNoRows
// when none has happened yet.
func (r *SQLiteRepository) LastRefresh(ctx context.Context) (RefreshLogEntry, error) {
	var e RefreshLogEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT id, chat_id, source, bytes, status, created_at
		 FROM refresh_log WHERE status = 'ok'
		 ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&e.ID, &e.ChatID, &e.Source, &e.Bytes, &e.Status, &e.CreatedAt)
	if err != nil {
		return RefreshLogEntry{}, err
	}
	return e, nil
}

// RecentQueries returns up to limit most recent queries for a chat, newest
// first.
func (r *SQLiteRepository) RecentQueries(ctx context.Context, chatID int64, limit int) ([]QueryLogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, command, params, net_profit_cents, outcome, created_at
		 FROM query_log WHERE chat_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent queries: %w", err)
	}
	defer rows.Close()

	var entries []QueryLogEntry
	for rows.Next() {
		var e QueryLogEntry
		if err := rows.Scan(&e.ID, &e.ChatID, &e.Command, &e.Params, &e.NetProfitCents, &e.Outcome, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
