package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(now time.Time) *Manager {
	m := NewManager(testSecret, 30*24*time.Hour, true)
	m.now = func() time.Time { return now }
	return m
}

func TestEnsureUserID_MintsAndSetsCookie(t *testing.T) {
	m := newTestManager(time.UnixMilli(1700000000000))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)

	userID, err := m.EnsureUserID(rec, req)
	require.NoError(t, err)
	assert.True(t, ValidUserID(userID))
	assert.Contains(t, userID, "user_1700000000000_")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 30*24*60*60, c.MaxAge)
}

func TestEnsureUserID_ReusesValidCookie(t *testing.T) {
	m := newTestManager(time.UnixMilli(1700000000000))

	first := httptest.NewRecorder()
	userID, err := m.EnsureUserID(first, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(first.Result().Cookies()[0])
	rec := httptest.NewRecorder()

	again, err := m.EnsureUserID(rec, req)
	require.NoError(t, err)
	assert.Equal(t, userID, again)
	assert.Empty(t, rec.Result().Cookies())
}

func TestEnsureUserID_ReplacesBadCookies(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	m := newTestManager(now)

	rec := httptest.NewRecorder()
	original, err := m.EnsureUserID(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	valid := rec.Result().Cookies()[0].Value

	other := NewManager("another-secret-another-secret-xx", time.Hour, false)
	foreign, err := other.sign("user_1_abc")
	require.NoError(t, err)

	expired := newTestManager(now.Add(31 * 24 * time.Hour))

	tests := []struct {
		name    string
		manager *Manager
		value   string
	}{
		{name: "garbage", manager: m, value: "not-a-token"},
		{name: "tampered", manager: m, value: valid + "x"},
		{name: "wrong secret", manager: m, value: foreign},
		{name: "expired", manager: expired, value: valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.value})
			rec := httptest.NewRecorder()

			_, err := tt.manager.UserID(req)
			require.ErrorIs(t, err, ErrInvalidSession)

			userID, err := tt.manager.EnsureUserID(rec, req)
			require.NoError(t, err)
			assert.True(t, ValidUserID(userID))
			assert.NotEqual(t, original, userID)
			assert.Len(t, rec.Result().Cookies(), 1)
		})
	}
}

func TestUserID_NoCookie(t *testing.T) {
	m := newTestManager(time.Now())
	_, err := m.UserID(httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestNewUserID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := NewUserID(time.UnixMilli(42))
		require.NoError(t, err)
		assert.Regexp(t, `^user_42_[0-9a-z]{1,9}$`, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestValidUserID(t *testing.T) {
	assert.True(t, ValidUserID("user_1700000000000_k3j5h2"))
	assert.False(t, ValidUserID("user_abc_k3j5h2"))
	assert.False(t, ValidUserID("admin"))
	assert.False(t, ValidUserID("user_1_K3J"))
}
