package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/singlish/internal/db"
)

//go:embed schema.sql
var schemaSQL string

var _ db.Repository = (*Repository)(nil)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
	q    querier
	tx   bool
}

// New creates a new PostgreSQL repository and applies the schema.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Repository{pool: pool, q: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// PoolStats exposes connection pool statistics for metrics.
func (r *Repository) PoolStats() *pgxpool.Stat {
	return r.pool.Stat()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.tx {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// roll back on panic so the connection returns to the pool
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&Repository{pool: r.pool, q: tx, tx: true}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Passthrough word methods

func (r *Repository) AddPassthroughWord(ctx context.Context, arg db.AddPassthroughWordParams) (db.PassthroughWord, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO passthrough_words (word, added_by)
		VALUES ($1, $2)
		ON CONFLICT (word) DO NOTHING
		RETURNING id, word, added_by, created_at
	`, strings.ToLower(strings.TrimSpace(arg.Word)), textParam(arg.AddedBy))

	w, err := scanPassthroughWord(row)
	if db.IsNoRows(err) {
		return db.PassthroughWord{}, db.ErrAlreadyExists
	}
	return w, err
}

func (r *Repository) ListPassthroughWords(ctx context.Context) ([]db.PassthroughWord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, word, added_by, created_at
		FROM passthrough_words
		ORDER BY word
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.PassthroughWord, error) {
		return scanPassthroughWord(row)
	})
}

// Feedback methods

func (r *Repository) CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.Feedback, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO feedback (input, output, expected, comment, ip_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, input, output, expected, comment, ip_hash, created_at
	`, arg.Input, arg.Output, arg.Expected, textParam(arg.Comment), arg.IpHash)
	return scanFeedback(row)
}

func (r *Repository) GetFeedback(ctx context.Context, id int64) (db.Feedback, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, input, output, expected, comment, ip_hash, created_at
		FROM feedback
		WHERE id = $1
	`, id)
	return scanFeedback(row)
}

func (r *Repository) ListFeedback(ctx context.Context, arg db.ListFeedbackParams) ([]db.Feedback, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, input, output, expected, comment, ip_hash, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Feedback, error) {
		return scanFeedback(row)
	})
}

func (r *Repository) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count)
	return count, err
}

func (r *Repository) CountFeedbackByIP(ctx context.Context, arg db.CountFeedbackByIPParams) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM feedback WHERE ip_hash = $1 AND created_at >= $2
	`, arg.IpHash, arg.Since).Scan(&count)
	return count, err
}

func (r *Repository) DeleteOldFeedback(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM feedback WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Type conversion helpers

func scanPassthroughWord(row pgx.Row) (db.PassthroughWord, error) {
	var (
		w       db.PassthroughWord
		addedBy pgtype.Text
		created pgtype.Timestamptz
	)
	if err := row.Scan(&w.ID, &w.Word, &addedBy, &created); err != nil {
		return db.PassthroughWord{}, err
	}
	w.AddedBy = fromText(addedBy)
	w.CreatedAt = created.Time
	return w, nil
}

func scanFeedback(row pgx.Row) (db.Feedback, error) {
	var (
		f       db.Feedback
		comment pgtype.Text
		created pgtype.Timestamptz
	)
	if err := row.Scan(&f.ID, &f.Input, &f.Output, &f.Expected, &comment, &f.IpHash, &created); err != nil {
		return db.Feedback{}, err
	}
	f.Comment = fromText(comment)
	f.CreatedAt = created.Time
	return f, nil
}

func textParam(s sql.NullString) pgtype.Text {
	return pgtype.Text{String: s.String, Valid: s.Valid}
}

func fromText(t pgtype.Text) sql.NullString {
	return sql.NullString{String: t.String, Valid: t.Valid}
}
