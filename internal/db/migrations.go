package db

import (
	"database/sql"
	"fmt"
)

// The table keeps the column names of the deployed english_tutor table so
// rows written by the first version of the app stay readable.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS english_tutor (
  id INTEGER PRIMARY KEY,
  korean TEXT NOT NULL,
  english TEXT NOT NULL,
  situation TEXT NOT NULL,
  user_email TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_english_tutor_user ON english_tutor(user_email, created_at);
CREATE INDEX IF NOT EXISTS idx_english_tutor_content ON english_tutor(user_email, korean, english);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS english_tutor (
  id BIGSERIAL PRIMARY KEY,
  korean TEXT NOT NULL,
  english TEXT NOT NULL,
  situation TEXT NOT NULL,
  user_email TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_english_tutor_user ON english_tutor(user_email, created_at);
CREATE INDEX IF NOT EXISTS idx_english_tutor_content ON english_tutor(user_email, korean, english);
`

// Migrate creates the keyword table when it is missing. Existing tables are
// left untouched.
func Migrate(db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == DialectPostgres {
		schema = postgresSchema
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate %s schema: %w", dialect, err)
	}
	return nil
}
