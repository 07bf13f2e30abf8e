package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/camuig/sina-stock-bot/internal/config"
	"github.com/camuig/sina-stock-bot/internal/logger"
	"github.com/camuig/sina-stock-bot/internal/market"
	"github.com/camuig/sina-stock-bot/internal/storage"
	"github.com/camuig/sina-stock-bot/internal/subscription"
)

type memoryPersister struct{}

func (memoryPersister) Load() (*subscription.Document, error) { return nil, nil }
func (memoryPersister) Save(*subscription.Document) error     { return nil }

func newTestServer(t *testing.T) (*Server, *subscription.Store, *storage.Repository) {
	t.Helper()
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := storage.NewRepository(db)
	store := subscription.NewStore(memoryPersister{}, logger.Discard())
	return NewServer(store, repo, config.WebConfig{Port: 0}, logger.Discard()), store, repo
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	s, store, repo := newTestServer(t)

	require.NoError(t, store.Add("-1001", market.Security{Type: "31", Code: "00700", Name: "腾讯控股"}))
	require.NoError(t, repo.SavePushLog(&storage.PushLog{RunID: "r", GroupID: "-1001", Trigger: "1-5 09:35", Securities: 1, Status: storage.PushStatusFailed, Error: "kicked"}))

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	require.Contains(t, body, "腾讯控股")
	require.Contains(t, body, "港股")
	require.Contains(t, body, "1-5 09:35")
	require.Contains(t, body, "kicked")
	require.Contains(t, body, `<span class="failed">failed</span>`)
}

func TestGroupViewsCarryLastPush(t *testing.T) {
	t.Parallel()
	s, store, repo := newTestServer(t)
	sec := market.Security{Type: "11", Code: "sh600519", Name: "贵州茅台"}

	require.NoError(t, store.Add("a", sec))
	require.NoError(t, store.Add("b", sec))
	require.NoError(t, repo.SavePushLog(&storage.PushLog{RunID: "r1", GroupID: "a", Trigger: "1-5 09:35", Status: storage.PushStatusFailed}))
	require.NoError(t, repo.SavePushLog(&storage.PushLog{RunID: "r2", GroupID: "a", Trigger: "1-5 11:31", Status: storage.PushStatusOK}))

	views := s.groupViews()
	require.Len(t, views, 2)
	require.Equal(t, "a", views[0].ID)
	require.NotNil(t, views[0].LastPush)
	require.Equal(t, "1-5 11:31", views[0].LastPush.Trigger)
	require.Nil(t, views[1].LastPush)
}

func TestDashboardEmpty(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "没有订阅列表")
	require.Contains(t, rec.Body.String(), "暂无推送记录")
}

func TestUnknownPathNotFound(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	require.Equal(t, http.StatusNotFound, get(t, s, "/nope").Code)
}

func TestAPIGroups(t *testing.T) {
	t.Parallel()
	s, store, _ := newTestServer(t)
	moutai := market.Security{Type: "11", Code: "sh600519", Name: "贵州茅台"}
	require.NoError(t, store.Add("42", moutai))

	rec := get(t, s, "/api/groups")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc subscription.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, []market.Security{moutai}, doc.Group["42"].List)
	require.True(t, doc.Group["42"].Notify)
}

func TestAPIPushes(t *testing.T) {
	t.Parallel()
	s, _, repo := newTestServer(t)

	rec := get(t, s, "/api/pushes")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	for _, gid := range []string{"1", "2", "3"} {
		require.NoError(t, repo.SavePushLog(&storage.PushLog{RunID: "r", GroupID: gid, Status: storage.PushStatusOK}))
	}

	rec = get(t, s, "/api/pushes?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var pushes []storage.PushLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pushes))
	require.Len(t, pushes, 2)
	require.Equal(t, "3", pushes[0].GroupID)

	require.Equal(t, http.StatusBadRequest, get(t, s, "/api/pushes?limit=abc").Code)
	require.Equal(t, http.StatusBadRequest, get(t, s, "/api/pushes?limit=0").Code)
}

func TestAPIRejectsPost(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/groups", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
