package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/incomeatlas/internal/app"
	"github.com/templui/incomeatlas/internal/config"
	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/routes"
)

type testServer struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
	app    *app.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "development",
		DBDriver:       "sqlite",
		DBConnection:   filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)",
		SeedOnStart:    true,
		SessionSecret:  "0123456789abcdef0123456789abcdef",
		SessionMaxAge:  time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	server := httptest.NewServer(routes.SetupRoutes(a))
	t.Cleanup(server.Close)

	return &testServer{t: t, server: server, client: newClient(t), app: a}
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (s *testServer) do(client *http.Client, method, path, body string) (int, []byte) {
	s.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, data
}

func (s *testServer) request(method, path, body string) (int, []byte) {
	return s.do(s.client, method, path, body)
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func strategyIDs(strategies []model.Strategy) []string {
	out := []string{}
	for _, s := range strategies {
		out = append(out, s.ID)
	}
	return out
}

func TestStrategies_List(t *testing.T) {
	s := newTestServer(t)

	status, body := s.request(http.MethodGet, "/api/strategies", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]model.Strategy](t, body), 20)

	status, body = s.request(http.MethodGet, "/api/strategies?category=Investment", "")
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{"4", "7", "11"}, strategyIDs(decode[[]model.Strategy](t, body)))

	status, body = s.request(http.MethodGet, "/api/strategies?category=all&search=sales", "")
	require.Equal(t, http.StatusOK, status)
	got := decode[[]model.Strategy](t, body)
	assert.Subset(t, strategyIDs(got), []string{"3", "9"})
	for _, st := range got {
		text := strings.ToLower(st.Title + " " + st.Description + " " + string(st.Category))
		assert.Contains(t, text, "sales")
	}

	status, body = s.request(http.MethodGet, "/api/strategies?search=sales%20", "")
	require.Equal(t, http.StatusOK, status)
	padded := decode[[]model.Strategy](t, body)
	assert.NotContains(t, strategyIDs(padded), "8")
	for _, st := range padded {
		text := strings.ToLower(st.Title + "\n" + st.Description + "\n" + string(st.Category))
		assert.Contains(t, text, "sales ")
	}

	status, body = s.request(http.MethodGet, "/api/strategies?category=Nope", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"Unknown category"}`, string(body))
}

func TestStrategies_Show(t *testing.T) {
	s := newTestServer(t)

	status, body := s.request(http.MethodGet, "/api/strategies/1", "")
	require.Equal(t, http.StatusOK, status)
	strategy := decode[model.Strategy](t, body)
	assert.Equal(t, "Software Engineering (FAANG)", strategy.Title)
	assert.Equal(t, 180000, strategy.PotentialIncome)
	assert.NotEmpty(t, strategy.Steps)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	for _, key := range []string{"potentialIncome", "timeToStart", "initialCapital", "requiredSkills", "steps"} {
		assert.Contains(t, raw, key)
	}

	status, _ = s.request(http.MethodGet, "/api/strategies/404", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategoriesAndStats(t *testing.T) {
	s := newTestServer(t)

	status, body := s.request(http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]string](t, body), 6)

	status, body = s.request(http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, status)
	stats := decode[model.CatalogStats](t, body)
	assert.Equal(t, 20, stats.Total)
	assert.Equal(t, 200000, stats.HighestIncome)

	status, body = s.request(http.MethodGet, "/api/stats?category=Investment", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, decode[model.CatalogStats](t, body).Total)

	status, _ = s.request(http.MethodGet, "/api/stats?category=Nope", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProgress_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	status, body := s.request(http.MethodGet, "/api/progress/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))

	status, body = s.request(http.MethodPost, "/api/progress/1", `{"status":"started"}`)
	require.Equal(t, http.StatusOK, status)
	p := decode[model.UserProgress](t, body)
	assert.Equal(t, model.ProgressStarted, p.Status)
	require.NotNil(t, p.StartedAt)
	startedAt := *p.StartedAt

	status, body = s.request(http.MethodPost, "/api/progress/1", `{"notes":"x"}`)
	require.Equal(t, http.StatusOK, status)
	p = decode[model.UserProgress](t, body)
	assert.Equal(t, model.ProgressStarted, p.Status)
	require.NotNil(t, p.Notes)
	assert.Equal(t, "x", *p.Notes)
	require.NotNil(t, p.StartedAt)
	assert.Equal(t, startedAt, *p.StartedAt)

	status, body = s.request(http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]model.UserProgress](t, body), 1)

	status, _ = s.request(http.MethodDelete, "/api/progress/1", "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.request(http.MethodDelete, "/api/progress/1", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = s.request(http.MethodGet, "/api/progress/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))
}

func TestProgress_CompletedWithoutStart(t *testing.T) {
	s := newTestServer(t)

	status, body := s.request(http.MethodPost, "/api/progress/5", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, status)

	p := decode[model.UserProgress](t, body)
	assert.Equal(t, model.ProgressCompleted, p.Status)
	require.NotNil(t, p.StartedAt)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, *p.StartedAt, *p.CompletedAt)
}

func TestProgress_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"status":"abandoned"}`,
		`{"userId":"user_1_evil"}`,
		`{"startedAt":"last week"}`,
		`not json`,
	} {
		status, resp := s.request(http.MethodPost, "/api/progress/1", body)
		assert.Equal(t, http.StatusBadRequest, status, body)

		var e struct {
			Error   string `json:"error"`
			Details []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"details"`
		}
		require.NoError(t, json.Unmarshal(resp, &e))
		assert.Equal(t, "Invalid progress data", e.Error)
		assert.NotEmpty(t, e.Details)
	}

	status, _ := s.request(http.MethodPost, "/api/progress/999", `{"status":"started"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProgress_NullFieldsRejected(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.request(http.MethodPost, "/api/progress/1", `{"notes":"x"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := s.request(http.MethodPost, "/api/progress/1", `{"notes":null}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"Invalid progress data","details":[{"field":"notes","message":"must not be null"}]}`, string(body))

	status, _ = s.request(http.MethodPost, "/api/progress/2", `{"status":null,"notes":null}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.request(http.MethodGet, "/api/progress/1", "")
	require.Equal(t, http.StatusOK, status)
	p := decode[model.UserProgress](t, body)
	require.NotNil(t, p.Notes)
	assert.Equal(t, "x", *p.Notes)

	status, body = s.request(http.MethodGet, "/api/progress/2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))
}

func TestProgress_BodyTooLarge(t *testing.T) {
	s := newTestServer(t)

	body := `{"notes":"` + strings.Repeat("a", 80<<10) + `"}`
	status, resp := s.request(http.MethodPost, "/api/progress/1", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.JSONEq(t, `{"error":"Request body too large"}`, string(resp))
}

func TestProgress_SessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.request(http.MethodPost, "/api/progress/2", `{"status":"interested"}`)
	require.Equal(t, http.StatusOK, status)

	other := newClient(t)
	status, body := s.do(other, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]model.UserProgress](t, body))
}

func TestBookmarks_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	status, body := s.request(http.MethodGet, "/api/bookmarks/3", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"isBookmarked":false}`, string(body))

	status, body = s.request(http.MethodPost, "/api/bookmarks/3", "")
	require.Equal(t, http.StatusCreated, status)
	b := decode[model.UserBookmark](t, body)
	assert.Equal(t, "3", b.StrategyID)

	status, body = s.request(http.MethodGet, "/api/bookmarks/3", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"isBookmarked":true}`, string(body))

	status, _ = s.request(http.MethodPost, "/api/bookmarks/3", "")
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.request(http.MethodGet, "/api/bookmarks", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]model.UserBookmark](t, body), 1)

	status, _ = s.request(http.MethodDelete, "/api/bookmarks/3", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = s.request(http.MethodGet, "/api/bookmarks/3", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"isBookmarked":false}`, string(body))

	status, _ = s.request(http.MethodPost, "/api/bookmarks/999", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBookmarks_ConcurrentCreate(t *testing.T) {
	s := newTestServer(t)

	// Establish the session first so every request shares it.
	status, _ := s.request(http.MethodGet, "/api/bookmarks", "")
	require.Equal(t, http.StatusOK, status)

	var mu sync.Mutex
	codes := map[int]int{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPost, s.server.URL+"/api/bookmarks/10", nil)
			resp, err := s.client.Do(req)
			if err != nil {
				t.Error(err)
				return
			}
			resp.Body.Close()
			mu.Lock()
			codes[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, codes[http.StatusCreated])
	assert.Equal(t, 7, codes[http.StatusConflict])
}

func TestSessionCookie(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.server.URL + "/api/bookmarks")
	require.NoError(t, err)
	resp.Body.Close()

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.False(t, cookies[0].Secure)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, body := s.request(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	s.request(http.MethodGet, "/api/strategies/1", "")
	status, body = s.request(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="GET /api/strategies/{id}",status="200"} 1`)

	require.NoError(t, s.app.DB.Close())
	status, _ = s.request(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{
		AppEnv:         "development",
		DBDriver:       "sqlite",
		DBConnection:   filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)",
		SeedOnStart:    true,
		SessionSecret:  "0123456789abcdef0123456789abcdef",
		SessionMaxAge:  time.Hour,
		RateLimitRPS:   0.001,
		RateLimitBurst: 2,
	}
	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	server := httptest.NewServer(routes.SetupRoutes(a))
	t.Cleanup(server.Close)

	s := &testServer{t: t, server: server, client: newClient(t), app: a}

	s.request(http.MethodGet, "/api/progress", "")
	codes := []int{}
	for i := 0; i < 3; i++ {
		status, _ := s.request(http.MethodPost, "/api/progress/1", `{}`)
		codes = append(codes, status)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	status, _ := s.request(http.MethodGet, "/api/progress", "")
	assert.Equal(t, http.StatusOK, status)
}
