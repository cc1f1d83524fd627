package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"phrasebook/internal/cache"
	"phrasebook/internal/handler"
	"phrasebook/internal/model"
	"phrasebook/internal/repository"
	"phrasebook/internal/repository/mock"
	"phrasebook/internal/service"
)

func newTestServer(t *testing.T, remote repository.KeywordRepository) (*echo.Echo, service.KeywordService) {
	t.Helper()
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "keywords_data.json"))
	clock := func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	svc := service.NewKeywordService(remote, store, service.WithClock(clock))

	e := echo.New()
	handler.NewKeywordHandler(svc).RegisterRoutes(e.Group("/api"))
	return e, svc
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestKeywordHandler_CreateAndList(t *testing.T) {
	e, svc := newTestServer(t, nil)

	rec := do(t, e, http.MethodPost, "/api/keywords", `{"native":"카페 어디예요?","target":"Where is the café?","situation":"레스토랑"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	require.Equal(t, "dining", created["situation"])
	require.Equal(t, "2025-05-01T12:00:00Z", created["createdAt"])
	require.NotEmpty(t, created["id"])
	require.NotContains(t, created, "remoteId")

	rec = do(t, e, http.MethodPost, "/api/keywords", `{"native":"기차역","target":"Train station","situation":"travel"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	svc.Wait()

	rec = do(t, e, http.MethodGet, "/api/keywords?q=CAF%C3%89&situation=dining", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]map[string]any](t, rec)
	require.Len(t, found, 1)
	require.Equal(t, "Where is the café?", found[0]["target"])

	rec = do(t, e, http.MethodGet, "/api/keywords?situation=all", "")
	require.Len(t, decode[[]map[string]any](t, rec), 2)
}

func TestKeywordHandler_Create_Invalid(t *testing.T) {
	e, _ := newTestServer(t, nil)

	rec := do(t, e, http.MethodPost, "/api/keywords", `{"native":"","target":"Hi","situation":"travel"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid native: must not be empty", decode[map[string]string](t, rec)["error"])

	rec = do(t, e, http.MethodPost, "/api/keywords", `{"native":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeywordHandler_GetAndDelete(t *testing.T) {
	e, svc := newTestServer(t, nil)

	kw, err := svc.Add(context.Background(), "네", "Yes", "daily-conversation")
	require.NoError(t, err)

	rec := do(t, e, http.MethodGet, "/api/keywords/"+kw.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Yes", decode[map[string]any](t, rec)["target"])

	rec = do(t, e, http.MethodDelete, "/api/keywords/"+kw.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"deleted": true}, decode[map[string]any](t, rec))

	rec = do(t, e, http.MethodDelete, "/api/keywords/"+kw.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"deleted": false}, decode[map[string]any](t, rec))

	rec = do(t, e, http.MethodGet, "/api/keywords/"+kw.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKeywordHandler_Delete_ReportsRemoteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := mock.NewMockKeywordRepository(ctrl)
	remote.EXPECT().FetchAll(gomock.Any()).Return([]model.RemoteKeyword{
		{ID: 3, NativeText: "안녕", TargetText: "Hi", Situation: "일상대화", CreatedAt: time.Now()},
	}, nil)
	remote.EXPECT().DeleteByID(gomock.Any(), int64(3)).Return(repository.ErrRemote)
	remote.EXPECT().DeleteByContent(gomock.Any(), "안녕", "Hi").Return(int64(0), repository.ErrRemote)

	e, svc := newTestServer(t, remote)
	svc.Load(context.Background())

	rec := do(t, e, http.MethodDelete, "/api/keywords/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	require.Equal(t, true, body["deleted"])
	require.Contains(t, body["remoteError"], "remote store unavailable")
	require.Empty(t, svc.List())
}

func TestKeywordHandler_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := mock.NewMockKeywordRepository(ctrl)
	remote.EXPECT().FetchAll(gomock.Any()).Return([]model.RemoteKeyword{
		{ID: 1, NativeText: "안녕", TargetText: "Hi", Situation: "daily-conversation", CreatedAt: time.Now()},
		{ID: 2, NativeText: "우주", TargetText: "Space", Situation: "astronomy", CreatedAt: time.Now()},
	}, nil)

	e, _ := newTestServer(t, remote)

	rec := do(t, e, http.MethodPost, "/api/keywords/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	require.Equal(t, "remote", body["source"])
	require.Equal(t, float64(1), body["count"])
	require.Equal(t, float64(1), body["skipped"])
}

func TestKeywordHandler_StatsAndSituations(t *testing.T) {
	e, svc := newTestServer(t, nil)

	for _, in := range [][3]string{
		{"커피 주세요", "Coffee, please", "dining"},
		{"물 주세요", "Water, please", "dining"},
		{"회의가 있어요", "I have a meeting", "business"},
	} {
		_, err := svc.Add(context.Background(), in[0], in[1], in[2])
		require.NoError(t, err)
	}

	rec := do(t, e, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	require.Equal(t, float64(3), stats["total"])
	require.Equal(t, map[string]any{"dining": float64(2), "business": float64(1)}, stats["bySituation"])
	require.Equal(t, false, stats["remoteEnabled"])

	rec = do(t, e, http.MethodGet, "/api/situations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	situations := decode[map[string][]string](t, rec)
	require.Equal(t, []string{"business", "dining"}, situations["present"])
	require.Len(t, situations["available"], 8)
}
