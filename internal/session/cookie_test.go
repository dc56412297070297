package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestCookieStoreSaveLoadClear(t *testing.T) {
	store := NewCookieStore(testSecret, true)

	assert.False(t, store.Load(httptest.NewRequest(http.MethodGet, "/", nil)).Valid())

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), Session{Token: "T1"}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	assert.Equal(t, "T1", store.Load(req).Token)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(c)
	require.NoError(t, store.Clear(rec, req))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestCookieStoreRejectsForeignSignature(t *testing.T) {
	rec := httptest.NewRecorder()
	other := NewCookieStore([]byte("ffffffffffffffffffffffffffffffff"), false)
	require.NoError(t, other.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), Session{Token: "T1"}))

	store := NewCookieStore(testSecret, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	assert.False(t, store.Load(req).Valid())

	// Saving over a foreign cookie starts a fresh session.
	rec = httptest.NewRecorder()
	require.NoError(t, store.Save(rec, req, Session{Token: "T2"}))
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	assert.Equal(t, "T2", store.Load(next).Token)
}

func TestCookieStoreTokenDoesNotExpireWithSession(t *testing.T) {
	store := NewCookieStore(testSecret, false)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), Session{Token: "T1"}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, TokenMaxAge, cookies[0].MaxAge)
	assert.True(t, cookies[0].Expires.After(time.Now().AddDate(9, 0, 0)))

	gs, ok := store.store.(*sessions.CookieStore)
	require.True(t, ok)
	assert.Equal(t, TokenMaxAge, gs.Options.MaxAge)
}
