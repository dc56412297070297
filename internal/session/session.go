// Package session holds the caller's bearer token and the places it is kept between requests.
//
// A Session is passed explicitly to every authenticated remote call. The browser surface keeps
// the token in a cookie (CookieStore), the terminal surface in a file (FileStore); both store it
// under the fixed key Key and keep nothing else.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Key is the fixed name the token is stored under.
const Key = "token"

// ErrNoToken is returned when an operation needs a session and none is stored.
var ErrNoToken = errors.New("no session token")

// Session is an authenticated caller.
type Session struct {
	Token string
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool {
	return s.Token != ""
}

// Header returns the Authorization header value for the session.
func (s Session) Header() string {
	return "Bearer " + s.Token
}

type contextKey struct{}

// NewContext returns ctx carrying s. Only request boundaries (middleware, MCP transport) use it.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok && s.Valid()
}

// FromRequest reads a bearer token from the Authorization header.
func FromRequest(r *http.Request) Session {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return Session{}
	}
	return Session{Token: strings.TrimSpace(h[7:])}
}

// ViewerID returns the user id carried in the token claims, if the token is a JWT.
// The signature is not checked: the id only labels notes in views, the remote API does the
// real authorization.
func ViewerID(s Session) string {
	if !s.Valid() {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return ""
	}
	for _, k := range []string{"id", "userId", "_id", "sub"} {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	if u, ok := claims["user"].(map[string]any); ok {
		if v, ok := u["id"].(string); ok {
			return v
		}
	}
	return ""
}
