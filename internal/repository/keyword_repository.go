package repository

import (
	"context"
	"fmt"

	"phrasebook/internal/db"
	"phrasebook/internal/model"
	"phrasebook/internal/snowflake"
)

// KeywordRepository is the remote store. Every statement is scoped to the
// user identity the repository was built with.
type KeywordRepository interface {
	FetchAll(ctx context.Context) ([]model.RemoteKeyword, error)
	Insert(ctx context.Context, keyword model.Keyword) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteByContent(ctx context.Context, nativeText, targetText string) (int64, error)
}

type keywordRepository struct {
	db        dbtx
	dialect   db.Dialect
	userEmail string
}

func NewKeywordRepository(conn dbtx, dialect db.Dialect, userEmail string) KeywordRepository {
	return &keywordRepository{db: conn, dialect: dialect, userEmail: userEmail}
}

func (r *keywordRepository) FetchAll(ctx context.Context) ([]model.RemoteKeyword, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(
		`SELECT id, korean, english, situation, user_email, created_at FROM english_tutor WHERE user_email = ? ORDER BY created_at DESC, id DESC`),
		r.userEmail,
	)
	if err != nil {
		return nil, remoteErr("fetch keywords", err)
	}
	defer rows.Close()

	var keywords []model.RemoteKeyword
	for rows.Next() {
		var kw model.RemoteKeyword
		var createdAt string
		if err := rows.Scan(&kw.ID, &kw.NativeText, &kw.TargetText, &kw.Situation, &kw.UserEmail, &createdAt); err != nil {
			return nil, remoteErr("scan keyword", err)
		}
		kw.CreatedAt, err = model.ParseTimestamp(createdAt)
		if err != nil {
			return nil, remoteErr(fmt.Sprintf("parse keyword %d created_at", kw.ID), err)
		}
		keywords = append(keywords, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("iterate keywords", err)
	}

	return keywords, nil
}

func (r *keywordRepository) Insert(ctx context.Context, keyword model.Keyword) (int64, error) {
	if r.dialect == db.DialectPostgres {
		var id int64
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO english_tutor (korean, english, situation, user_email, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			keyword.NativeText,
			keyword.TargetText,
			string(keyword.Situation),
			r.userEmail,
			formatTime(keyword.CreatedAt),
		).Scan(&id)
		if err != nil {
			return 0, remoteErr("insert keyword", err)
		}
		return id, nil
	}

	// SQLite tables use snowflake primary keys (no AUTOINCREMENT)
	id := snowflake.NextID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO english_tutor (id, korean, english, situation, user_email, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		keyword.NativeText,
		keyword.TargetText,
		string(keyword.Situation),
		r.userEmail,
		formatTime(keyword.CreatedAt),
	)
	if err != nil {
		return 0, remoteErr("insert keyword", err)
	}
	return id, nil
}

func (r *keywordRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		`DELETE FROM english_tutor WHERE id = ? AND user_email = ?`),
		id,
		r.userEmail,
	)
	if err != nil {
		return remoteErr("delete keyword", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return remoteErr("delete keyword rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete keyword %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteByContent removes every row of the user with the given texts.
// Matching nothing is not an error.
func (r *keywordRepository) DeleteByContent(ctx context.Context, nativeText, targetText string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		`DELETE FROM english_tutor WHERE korean = ? AND english = ? AND user_email = ?`),
		nativeText,
		targetText,
		r.userEmail,
	)
	if err != nil {
		return 0, remoteErr("delete keyword by content", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, remoteErr("delete keyword by content rows affected", err)
	}
	return affected, nil
}
