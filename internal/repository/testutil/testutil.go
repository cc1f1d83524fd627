package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"phrasebook/internal/db"
	"phrasebook/internal/model"
	"phrasebook/internal/snowflake"

	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated SQLite database in a temp dir, closed on cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "remote.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// SeedKeyword inserts a row directly and returns its id.
func SeedKeyword(t *testing.T, database *sql.DB, userEmail string, kw model.RemoteKeyword) int64 {
	t.Helper()

	id := kw.ID
	if id == 0 {
		id = snowflake.NextID()
	}
	createdAt := kw.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	situation := kw.Situation
	if situation == "" {
		situation = string(model.SituationDaily)
	}
	_, err := database.Exec(
		`INSERT INTO english_tutor (id, korean, english, situation, user_email, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, kw.NativeText, kw.TargetText, situation, userEmail, createdAt.UTC().Format(time.RFC3339Nano),
	)
	require.NoError(t, err)
	return id
}

// CountKeywords returns the number of rows stored for userEmail.
func CountKeywords(t *testing.T, database *sql.DB, userEmail string) int {
	t.Helper()

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM english_tutor WHERE user_email = ?`, userEmail).Scan(&count))
	return count
}
