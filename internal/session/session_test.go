package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, FromRequest(req).Valid())

	req.Header.Set("Authorization", "Bearer T1")
	assert.Equal(t, Session{Token: "T1"}, FromRequest(req))

	req.Header.Set("Authorization", "bearer  T2 ")
	assert.Equal(t, "T2", FromRequest(req).Token)

	req.Header.Set("Authorization", "Basic abc")
	assert.False(t, FromRequest(req).Valid())
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), Session{Token: "T1"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "Bearer T1", s.Header())

	_, ok = FromContext(NewContext(context.Background(), Session{}))
	assert.False(t, ok)
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func TestViewerID(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", ""},
		{"opaque", "T1", ""},
		{"id claim", signed(t, jwt.MapClaims{"id": "u1"}), "u1"},
		{"userId claim", signed(t, jwt.MapClaims{"userId": "u2"}), "u2"},
		{"sub claim", signed(t, jwt.MapClaims{"sub": "u3"}), "u3"},
		{"nested user", signed(t, jwt.MapClaims{"user": map[string]any{"id": "u4"}}), "u4"},
		{"no id", signed(t, jwt.MapClaims{"name": "x"}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewerID(Session{Token: tt.token}))
		})
	}
}
