package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"phrasebook/internal/db"
	"phrasebook/internal/model"
	"phrasebook/internal/repository"
	"phrasebook/internal/repository/testutil"

	"github.com/stretchr/testify/require"
)

const (
	owner = "doyousee2@naver.com"
	other = "someone@else.test"
)

func TestKeywordRepository_InsertAndFetch(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)
	ctx := context.Background()

	createdAt := time.Date(2025, 5, 4, 12, 0, 0, 500, time.UTC)
	id, err := repo.Insert(ctx, model.Keyword{
		ID:         "1746360000000",
		NativeText: "안녕",
		TargetText: "Hello",
		Situation:  model.SituationDaily,
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	rows, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, model.RemoteKeyword{
		ID:         id,
		NativeText: "안녕",
		TargetText: "Hello",
		Situation:  "daily-conversation",
		UserEmail:  owner,
		CreatedAt:  createdAt,
	}, rows[0])
}

func TestKeywordRepository_InsertAssignsDistinctIDs(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)
	ctx := context.Background()

	kw := model.Keyword{NativeText: "a", TargetText: "b", Situation: model.SituationHobby, CreatedAt: time.Now()}
	first, err := repo.Insert(ctx, kw)
	require.NoError(t, err)
	second, err := repo.Insert(ctx, kw)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestKeywordRepository_FetchAll_ScopedToUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)

	testutil.SeedKeyword(t, database, owner, model.RemoteKeyword{NativeText: "학교", TargetText: "School"})
	testutil.SeedKeyword(t, database, other, model.RemoteKeyword{NativeText: "병원", TargetText: "Hospital"})

	rows, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "학교", rows[0].NativeText)
}

func TestKeywordRepository_FetchAll_NewestFirst(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedKeyword(t, database, owner, model.RemoteKeyword{ID: 1, NativeText: "old", TargetText: "old", CreatedAt: base})
	testutil.SeedKeyword(t, database, owner, model.RemoteKeyword{ID: 2, NativeText: "new", TargetText: "new", CreatedAt: base.Add(time.Hour)})

	rows, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].ID)
	require.Equal(t, int64(1), rows[1].ID)
}

func TestKeywordRepository_FetchAll_LegacyTimestamp(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)

	_, err := database.Exec(
		`INSERT INTO english_tutor (id, korean, english, situation, user_email, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		7, "여행", "Travel", "여행", owner, "2024-08-01T09:15:30.123456",
	)
	require.NoError(t, err)

	rows, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, time.Date(2024, 8, 1, 9, 15, 30, 123456000, time.UTC), rows[0].CreatedAt)
	require.Equal(t, "여행", rows[0].Situation)
}

func TestKeywordRepository_FetchAll_Empty(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)

	rows, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestKeywordRepository_DeleteByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)
	ctx := context.Background()

	id := testutil.SeedKeyword(t, database, owner, model.RemoteKeyword{NativeText: "쇼핑", TargetText: "Shopping"})

	require.NoError(t, repo.DeleteByID(ctx, id))
	require.Equal(t, 0, testutil.CountKeywords(t, database, owner))

	err := repo.DeleteByID(ctx, id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestKeywordRepository_DeleteByID_OtherUserUntouched(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)

	id := testutil.SeedKeyword(t, database, other, model.RemoteKeyword{NativeText: "x", TargetText: "y"})

	err := repo.DeleteByID(context.Background(), id)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Equal(t, 1, testutil.CountKeywords(t, database, other))
}

func TestKeywordRepository_DeleteByContent(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)
	ctx := context.Background()

	testutil.SeedKeyword(t, database, owner, model.RemoteKeyword{NativeText: "카페", TargetText: "Café"})
	testutil.SeedKeyword(t, database, owner, model.RemoteKeyword{NativeText: "카페", TargetText: "Café"})
	testutil.SeedKeyword(t, database, owner, model.RemoteKeyword{NativeText: "카페", TargetText: "Coffee shop"})
	testutil.SeedKeyword(t, database, other, model.RemoteKeyword{NativeText: "카페", TargetText: "Café"})

	removed, err := repo.DeleteByContent(ctx, "카페", "Café")
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)
	require.Equal(t, 1, testutil.CountKeywords(t, database, owner))
	require.Equal(t, 1, testutil.CountKeywords(t, database, other))

	removed, err = repo.DeleteByContent(ctx, "카페", "Café")
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestKeywordRepository_ClosedDB(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewKeywordRepository(database, db.DialectSQLite, owner)
	require.NoError(t, database.Close())
	ctx := context.Background()

	_, err := repo.FetchAll(ctx)
	require.ErrorIs(t, err, repository.ErrRemote)

	_, err = repo.Insert(ctx, model.Keyword{NativeText: "a", TargetText: "b", Situation: model.SituationTravel})
	require.ErrorIs(t, err, repository.ErrRemote)

	err = repo.DeleteByID(ctx, 1)
	require.ErrorIs(t, err, repository.ErrRemote)
	require.False(t, errors.Is(err, repository.ErrNotFound))

	_, err = repo.DeleteByContent(ctx, "a", "b")
	require.ErrorIs(t, err, repository.ErrRemote)
}
