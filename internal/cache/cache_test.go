package cache_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"phrasebook/internal/cache"
	"phrasebook/internal/model"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func sampleKeywords() []model.Keyword {
	return []model.Keyword{
		{
			ID:         "42",
			RemoteID:   int64Ptr(42),
			NativeText: "카페",
			TargetText: "Café",
			Situation:  model.SituationDining,
			CreatedAt:  time.Date(2025, 3, 1, 10, 30, 0, 123456789, time.UTC),
		},
		{
			ID:         "1700000000000",
			NativeText: "학교",
			TargetText: "School",
			Situation:  model.SituationSchool,
			CreatedAt:  time.Date(2024, 11, 20, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "keywords_data.json"))

	keywords, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, keywords)
	require.Empty(t, keywords)
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "nested", "keywords_data.json"))
	ctx := context.Background()
	want := sampleKeywords()

	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFileStore_RoundTripEmpty(t *testing.T) {
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "keywords_data.json"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleKeywords()))
	require.NoError(t, store.Save(ctx, nil))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFileStore_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords_data.json")
	store := cache.NewFileStore(path)
	require.NoError(t, store.Save(context.Background(), sampleKeywords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, cache.FormatVersion, doc["version"])
	require.NotEmpty(t, doc["saved_at"])

	keywords, ok := doc["keywords"].([]any)
	require.True(t, ok)
	require.Len(t, keywords, 2)

	first := keywords[0].(map[string]any)
	require.Equal(t, "42", first["id"])
	require.Equal(t, float64(42), first["remote_id"])
	require.Equal(t, "dining", first["situation"])

	second := keywords[1].(map[string]any)
	_, hasRemote := second["remote_id"]
	require.False(t, hasRemote)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := cache.NewFileStore(filepath.Join(dir, "keywords_data.json"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, sampleKeywords()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "keywords_data.json", entries[0].Name())
}

func TestFileStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"keywords": [`), 0o644))

	_, err := cache.NewFileStore(path).Load(context.Background())
	require.ErrorIs(t, err, cache.ErrCache)
}

const legacyDocument = `{
  "keywords": [
    {"id": "1709985600123", "korean": "카페", "english": "Café", "situation": "레스토랑", "createdAt": "2024-03-09T12:00:00.123456"},
    {"id": "17", "supabase_id": 17, "korean": "학교", "english": "School", "situation": "학교", "createdAt": "2024-03-08T09:00:00+09:00"},
    {"id": "3", "korean": "네", "english": "Yes", "situation": "일상대화", "createdAt": "yesterday"}
  ],
  "saved_at": "2024-03-09T12:00:01.000001",
  "version": "1.0.0"
}`

func TestFileStore_LoadLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords_data.json")
	require.NoError(t, os.WriteFile(path, []byte(legacyDocument), 0o644))

	got, err := cache.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, model.Keyword{
		ID:         "1709985600123",
		NativeText: "카페",
		TargetText: "Café",
		Situation:  "레스토랑",
		CreatedAt:  time.Date(2024, 3, 9, 12, 0, 0, 123456000, time.UTC),
	}, got[0])

	require.Equal(t, int64Ptr(17), got[1].RemoteID)
	require.Equal(t, "학교", got[1].NativeText)
	require.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), got[1].CreatedAt)

	// unreadable timestamps are left for the caller to drop
	require.Equal(t, "3", got[2].ID)
	require.True(t, got[2].CreatedAt.IsZero())
}

func TestFileStore_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"keywords": [], "version": "2.0.0"}`), 0o644))

	_, err := cache.NewFileStore(path).Load(context.Background())
	require.ErrorIs(t, err, cache.ErrCache)
}

func TestFileStore_SaveFailureKeepsPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords_data.json")
	store := cache.NewFileStore(path)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleKeywords()))

	// a directory in the way of the target makes the final rename fail
	blocked := cache.NewFileStore(filepath.Join(dir, "blocked"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blocked", "child"), 0o755))
	err := blocked.Save(ctx, sampleKeywords())
	require.ErrorIs(t, err, cache.ErrCache)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, sampleKeywords(), got)
}

func TestFileStore_CancelledContext(t *testing.T) {
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "keywords_data.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Save(ctx, sampleKeywords()), cache.ErrCache)
	_, err := store.Load(ctx)
	require.ErrorIs(t, err, cache.ErrCache)
}

func TestFileStore_GoldenDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords_data.json")
	savedAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	store := cache.NewFileStore(path, cache.WithClock(func() time.Time { return savedAt }))
	require.NoError(t, store.Save(context.Background(), sampleKeywords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "keywords_data", data)
}
