package db

import (
	"context"
	"database/sql"
	"time"
)

// PassthroughWord is a word an operator registered to be left untouched
// by conversion, on top of the built-in list.
type PassthroughWord struct {
	ID        int64
	Word      string
	AddedBy   sql.NullString
	CreatedAt time.Time
}

// Feedback is a user report that a conversion was wrong.
type Feedback struct {
	ID        int64
	Input     string
	Output    string
	Expected  string
	Comment   sql.NullString
	IpHash    string
	CreatedAt time.Time
}

type AddPassthroughWordParams struct {
	Word    string
	AddedBy sql.NullString
}

type CreateFeedbackParams struct {
	Input    string
	Output   string
	Expected string
	Comment  sql.NullString
	IpHash   string
}

type ListFeedbackParams struct {
	Limit  int32
	Offset int32
}

type CountFeedbackByIPParams struct {
	IpHash string
	Since  time.Time
}

// Repository defines the interface for database operations
type Repository interface {
	// Passthrough words. Words are stored lowercased; adding an existing
	// word returns ErrAlreadyExists.
	AddPassthroughWord(ctx context.Context, arg AddPassthroughWordParams) (PassthroughWord, error)
	ListPassthroughWords(ctx context.Context) ([]PassthroughWord, error)

	// Feedback
	CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (Feedback, error)
	GetFeedback(ctx context.Context, id int64) (Feedback, error)
	ListFeedback(ctx context.Context, arg ListFeedbackParams) ([]Feedback, error)
	CountFeedback(ctx context.Context) (int64, error)
	CountFeedbackByIP(ctx context.Context, arg CountFeedbackByIPParams) (int64, error)

	// Retention/Cleanup
	DeleteOldFeedback(ctx context.Context, before time.Time) (int64, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Lifecycle
	Close() error
}
