package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSendsBearerAndDecodes(t *testing.T) {
	var gotAuth, gotType, gotBody, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"token":"T1"}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil, nil)
	var out struct {
		Token string `json:"token"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/api/x", url.Values{"q": {"a b"}}, "T1", map[string]string{"k": "v"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "T1", out.Token)
	assert.Equal(t, "Bearer T1", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"k":"v"}`, gotBody)
	assert.Equal(t, "q=a+b", gotQuery)
	assert.Equal(t, srv.URL, c.BaseURL())
}

func TestDoWithoutTokenSendsNoAuthorization(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]any
	err := New(srv.URL, nil, nil).Do(context.Background(), http.MethodGet, "/", nil, "", nil, &out)
	require.NoError(t, err)
	assert.False(t, hadAuth)
	assert.Nil(t, out)
}

func TestDoEmptySuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out []string
	err := New(srv.URL, nil, nil).Do(context.Background(), http.MethodGet, "/", nil, "t", nil, &out)
	assert.NoError(t, err)
}

func TestDoErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
	}{
		{"error field", http.StatusBadRequest, `{"error":"Invalid credentials"}`, "Invalid credentials", nil},
		{"message field", http.StatusNotFound, `{"message":"Note not found"}`, "Note not found", ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, `{"error":"Unauthorized"}`, "Unauthorized", ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ``, "", ErrUnauthorized},
		{"not json", http.StatusInternalServerError, `boom`, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := New(srv.URL, nil, nil).Do(context.Background(), http.MethodGet, "/", nil, "t", nil, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			} else {
				assert.NotErrorIs(t, err, ErrUnauthorized)
				assert.NotErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestDoDecodeFailureIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":`)
	}))
	defer srv.Close()

	var out map[string]string
	err := New(srv.URL, nil, nil).Do(context.Background(), http.MethodGet, "/", nil, "t", nil, &out)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	err := New(addr, nil, nil).Do(context.Background(), http.MethodGet, "/api/notes", nil, "t", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /api/notes")
}
