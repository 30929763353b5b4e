package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jusunglee/singlish/internal/db"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Timestamps are stored as fixed-width UTC text so they sort as strings.
const timeFormat = "2006-01-02T15:04:05.000000Z"

var _ db.Repository = (*Repository)(nil)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements db.Repository using SQLite
type Repository struct {
	db *sql.DB
	q  queryer
	tx bool
}

// New creates a new SQLite repository
func New(ctx context.Context, dbPath string) (*Repository, error) {
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	isNew := dbPath == ":memory:"
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		isNew = true
	}

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		sqliteDB.SetMaxOpenConns(1)
	}

	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if isNew {
		slog.Info("created new SQLite database", "path", dbPath)
	}

	return &Repository{db: sqliteDB, q: sqliteDB}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.tx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{db: r.db, q: tx, tx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Passthrough word methods

func (r *Repository) AddPassthroughWord(ctx context.Context, arg db.AddPassthroughWordParams) (db.PassthroughWord, error) {
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO passthrough_words (word, added_by, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (word) DO NOTHING
		RETURNING id, word, added_by, created_at
	`, strings.ToLower(strings.TrimSpace(arg.Word)), nullString(arg.AddedBy), now())

	w, err := scanPassthroughWord(row)
	if db.IsNoRows(err) {
		return db.PassthroughWord{}, db.ErrAlreadyExists
	}
	return w, err
}

func (r *Repository) ListPassthroughWords(ctx context.Context) ([]db.PassthroughWord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, word, added_by, created_at
		FROM passthrough_words
		ORDER BY word
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []db.PassthroughWord
	for rows.Next() {
		w, err := scanPassthroughWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Feedback methods

func (r *Repository) CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.Feedback, error) {
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO feedback (input, output, expected, comment, ip_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, input, output, expected, comment, ip_hash, created_at
	`, arg.Input, arg.Output, arg.Expected, nullString(arg.Comment), arg.IpHash, now())
	return scanFeedback(row)
}

func (r *Repository) GetFeedback(ctx context.Context, id int64) (db.Feedback, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, input, output, expected, comment, ip_hash, created_at
		FROM feedback
		WHERE id = ?
	`, id)
	return scanFeedback(row)
}

func (r *Repository) ListFeedback(ctx context.Context, arg db.ListFeedbackParams) ([]db.Feedback, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, input, output, expected, comment, ip_hash, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []db.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repository) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count)
	return count, err
}

func (r *Repository) CountFeedbackByIP(ctx context.Context, arg db.CountFeedbackByIPParams) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM feedback WHERE ip_hash = ? AND created_at >= ?
	`, arg.IpHash, arg.Since.UTC().Format(timeFormat)).Scan(&count)
	return count, err
}

func (r *Repository) DeleteOldFeedback(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx, `
		DELETE FROM feedback WHERE created_at < ?
	`, before.UTC().Format(timeFormat))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanPassthroughWord(s scanner) (db.PassthroughWord, error) {
	var w db.PassthroughWord
	var createdAtStr string
	err := s.Scan(&w.ID, &w.Word, &w.AddedBy, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return db.PassthroughWord{}, db.ErrNoRows
	}
	if err != nil {
		return db.PassthroughWord{}, err
	}
	w.CreatedAt, _ = time.Parse(timeFormat, createdAtStr)
	return w, nil
}

func scanFeedback(s scanner) (db.Feedback, error) {
	var f db.Feedback
	var createdAtStr string
	err := s.Scan(&f.ID, &f.Input, &f.Output, &f.Expected, &f.Comment, &f.IpHash, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Feedback{}, db.ErrNoRows
	}
	if err != nil {
		return db.Feedback{}, err
	}
	f.CreatedAt, _ = time.Parse(timeFormat, createdAtStr)
	return f, nil
}

func now() string {
	return time.Now().UTC().Format(timeFormat)
}

func nullString(s sql.NullString) any {
	if s.Valid {
		return s.String
	}
	return nil
}
