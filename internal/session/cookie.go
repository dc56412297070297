package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// CookieName is the browser cookie holding the token.
const CookieName = "noteboard"

// TokenMaxAge is ten years: the token stays until logout, and expiry is left to the API.
const TokenMaxAge = 86400 * 365 * 10

// Store is the subset of gorilla's session store the cookie store needs.
type Store interface {
	Get(r *http.Request, name string) (*sessions.Session, error)
	New(r *http.Request, name string) (*sessions.Session, error)
	Save(r *http.Request, w http.ResponseWriter, s *sessions.Session) error
}

// CookieStore keeps the token in a signed browser cookie, the browser's local storage for it.
type CookieStore struct {
	store Store
}

// NewCookieStore signs cookies with secret. secure marks the cookie HTTPS-only.
func NewCookieStore(secret []byte, secure bool) *CookieStore {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	// Sets the cookie attribute and the codecs' timestamp check together.
	cs.MaxAge(TokenMaxAge)
	return &CookieStore{store: cs}
}

// NewCookieStoreFrom wraps an existing gorilla store.
func NewCookieStoreFrom(store Store) *CookieStore {
	return &CookieStore{store: store}
}

// Load returns the stored session. A missing or unreadable cookie yields an empty session.
func (c *CookieStore) Load(r *http.Request) Session {
	sess, err := c.store.Get(r, CookieName)
	if err != nil || sess == nil {
		return Session{}
	}
	tok, _ := sess.Values[Key].(string)
	return Session{Token: tok}
}

// Save stores s in the cookie.
func (c *CookieStore) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	sess, err := c.store.Get(r, CookieName)
	if err != nil {
		// A cookie signed with an old secret; start over.
		sess, err = c.store.New(r, CookieName)
		if err != nil && sess == nil {
			return fmt.Errorf("new cookie session: %w", err)
		}
	}
	sess.Values[Key] = s.Token
	if err := c.store.Save(r, w, sess); err != nil {
		return fmt.Errorf("save cookie session: %w", err)
	}
	return nil
}

// Clear removes the token from the browser.
func (c *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := c.store.Get(r, CookieName)
	if err != nil && sess == nil {
		return nil
	}
	delete(sess.Values, Key)
	if sess.Options == nil {
		sess.Options = &sessions.Options{Path: "/"}
	}
	sess.Options.MaxAge = -1
	if err := c.store.Save(r, w, sess); err != nil {
		return fmt.Errorf("clear cookie session: %w", err)
	}
	return nil
}
