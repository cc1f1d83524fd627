package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRemote marks every remote store failure (connectivity, auth, SQL).
	ErrRemote = errors.New("remote store unavailable")
	// ErrNotFound is returned when a delete by id matched no row.
	ErrNotFound = errors.New("remote keyword not found")
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func remoteErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
