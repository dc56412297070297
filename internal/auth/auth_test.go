package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteboard/internal/remote"
	"noteboard/internal/remote/remotetest"
	"noteboard/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T) (*remotetest.Server, *Client) {
	t.Helper()
	api := remotetest.New(t)
	api.AddUser("alice", "a@b.com", "x", "T1")
	return api, NewClient(remote.New(api.URL, nil, discardLogger()))
}

func TestLogin(t *testing.T) {
	api, c := newClient(t)

	sess, err := c.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, session.Session{Token: "T1"}, sess)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/auth/login", reqs[0].Path)
	assert.Empty(t, reqs[0].Auth)
	assert.JSONEq(t, `{"email":"a@b.com","password":"x"}`, reqs[0].Body)
}

func TestLoginFailureCarriesServerMessage(t *testing.T) {
	_, c := newClient(t)

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", UserMessage(err, MsgLoginFailed))
}

func TestRegister(t *testing.T) {
	api, c := newClient(t)

	sess, err := c.Register(context.Background(), "bob", "bob@b.com", "pw")
	require.NoError(t, err)
	assert.True(t, sess.Valid())
	assert.JSONEq(t, `{"username":"bob","email":"bob@b.com","password":"pw"}`, api.Requests()[0].Body)

	_, err = c.Register(context.Background(), "bob", "bob@b.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "User already exists", UserMessage(err, MsgRegisterFailed))
}

func TestEmptyTokenIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewClient(remote.New(srv.URL, nil, nil)).Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.Equal(t, MsgLoginFailed, UserMessage(err, MsgLoginFailed))
}

func TestUserMessageFallbacks(t *testing.T) {
	assert.Equal(t, MsgLoginFailed, UserMessage(errors.New("dial tcp: refused"), MsgLoginFailed))
	assert.Equal(t, MsgRegisterFailed, UserMessage(&remote.APIError{Status: 500}, MsgRegisterFailed))
	assert.Equal(t, "nope", UserMessage(&remote.APIError{Status: 400, Message: "nope"}, MsgRegisterFailed))
}

func newHandler(t *testing.T) (*remotetest.Server, *session.CookieStore, *Handler) {
	t.Helper()
	api, c := newClient(t)
	store := session.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false)
	return api, store, NewHandler(c, store, discardLogger())
}

func postForm(h http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestLoginHandlerStoresTokenAndRedirects(t *testing.T) {
	_, store, h := newHandler(t)

	rec := postForm(h.Login, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	assert.Equal(t, "T1", store.Load(next).Token)
}

func TestLoginHandlerShowsErrorAndKeepsState(t *testing.T) {
	_, _, h := newHandler(t)

	rec := postForm(h.Login, "/login", url.Values{"email": {"a@b.com"}, "password": {"bad"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	body := rec.Body.String()
	assert.Contains(t, body, "Invalid credentials")
	assert.Contains(t, body, `value="a@b.com"`)
}

func TestLoginHandlerFallbackMessage(t *testing.T) {
	api, _, h := newHandler(t)
	api.Fail(http.MethodPost, "/api/auth/login", http.StatusInternalServerError, "")

	rec := postForm(h.Login, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})

	assert.Contains(t, rec.Body.String(), MsgLoginFailed)
}

func TestRegisterHandler(t *testing.T) {
	_, _, h := newHandler(t)

	rec := postForm(h.Register, "/register", url.Values{"username": {"bob"}, "email": {"bob@b.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = postForm(h.Register, "/register", url.Values{"username": {"bob"}, "email": {"bob@b.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
	assert.Contains(t, rec.Body.String(), `value="bob"`)
}

func TestAuthPagesLinkToEachOther(t *testing.T) {
	_, _, h := newHandler(t)

	rec := httptest.NewRecorder()
	h.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Contains(t, rec.Body.String(), "Don't have an account?")
	assert.Contains(t, rec.Body.String(), `href="/register"`)

	rec = httptest.NewRecorder()
	h.RegisterPage(rec, httptest.NewRequest(http.MethodGet, "/register", nil))
	assert.Contains(t, rec.Body.String(), "Already have an account?")
	assert.Contains(t, rec.Body.String(), `href="/login"`)
}
