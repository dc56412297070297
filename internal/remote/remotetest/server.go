// Package remotetest runs an in-memory stand-in for the remote notes API. Tests use it to check
// which calls the client issues and with which credentials.
package remotetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
)

// Note mirrors the API's note document.
type Note struct {
	ID         string   `json:"_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Owner      string   `json:"owner"`
	SharedWith []string `json:"sharedWith"`
}

// Request is one call the server received.
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

type user struct {
	ID       string
	Username string
	Email    string
	Password string
}

type failure struct {
	status  int
	message string
}

// Server is a fake notes API backed by maps.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	seq      int
	users    map[string]*user // by email
	tokens   map[string]string
	notes    []*Note
	requests []Request
	failures map[string]failure
}

// New starts a server that is closed when t ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("GET /api/notes", s.authed(s.list))
	mux.HandleFunc("POST /api/notes", s.authed(s.create))
	mux.HandleFunc("GET /api/notes/search", s.authed(s.search))
	mux.HandleFunc("PUT /api/notes/{id}", s.authed(s.update))
	mux.HandleFunc("DELETE /api/notes/{id}", s.authed(s.remove))
	mux.HandleFunc("POST /api/notes/{id}/share", s.authed(s.share))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// AddUser registers an account whose logins yield token. It returns the user id.
func (s *Server) AddUser(username, email, password, token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	u := &user{ID: fmt.Sprintf("u%d", s.seq), Username: username, Email: email, Password: password}
	s.users[email] = u
	s.tokens[token] = u.ID
	return u.ID
}

// AddNote stores n as is, keeping its ID.
func (s *Server) AddNote(n Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.SharedWith == nil {
		n.SharedWith = []string{}
	}
	s.notes = append(s.notes, &n)
}

// Notes returns a copy of every stored note.
func (s *Server) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = *n
	}
	return out
}

// Fail makes every "METHOD /path" call answer status with message until Reset.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Reset clears injected failures and the request log.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
	s.requests = nil
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count is the number of calls received for method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			writeJSON(w, f.status, map[string]string{"error": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(next func(w http.ResponseWriter, r *http.Request, uid string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		uid, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next(w, r, uid)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[in.Email]
	if !ok || u.Password != in.Password {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": s.tokenFor(u.ID)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "User already exists"})
		return
	}
	s.seq++
	u := &user{ID: fmt.Sprintf("u%d", s.seq), Username: in.Username, Email: in.Email, Password: in.Password}
	s.users[in.Email] = u
	token := "token-" + u.ID
	s.tokens[token] = u.ID
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// tokenFor must be called with mu held.
func (s *Server) tokenFor(uid string) string {
	for token, id := range s.tokens {
		if id == uid {
			return token
		}
	}
	token := "token-" + uid
	s.tokens[token] = uid
	return token
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.visible(uid, ""))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, uid string) {
	q := strings.ToLower(r.URL.Query().Get("query"))
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.visible(uid, q))
}

// visible must be called with mu held.
func (s *Server) visible(uid, query string) []Note {
	out := []Note{}
	for _, n := range s.notes {
		if n.Owner != uid && !slices.Contains(n.SharedWith, uid) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(n.Title), query) &&
			!strings.Contains(strings.ToLower(n.Content), query) {
			continue
		}
		out = append(out, *n)
	}
	return out
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, uid string) {
	var in struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	n := &Note{
		ID:         fmt.Sprintf("n%d", s.seq),
		Title:      in.Title,
		Content:    in.Content,
		Owner:      uid,
		SharedWith: []string{},
	}
	s.notes = append(s.notes, n)
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, uid string) {
	var in struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.find(r.PathValue("id"))
	if n == nil || n.Owner != uid {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Note not found"})
		return
	}
	n.Title, n.Content = in.Title, in.Content
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request, uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	for i, n := range s.notes {
		if n.ID == id && n.Owner == uid {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Note not found"})
}

func (s *Server) share(w http.ResponseWriter, r *http.Request, uid string) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.find(r.PathValue("id"))
	if n == nil || n.Owner != uid {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Note not found"})
		return
	}
	target, ok := s.users[in.Email]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	if !slices.Contains(n.SharedWith, target.ID) {
		n.SharedWith = append(n.SharedWith, target.ID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Note shared"})
}

// find must be called with mu held.
func (s *Server) find(id string) *Note {
	for _, n := range s.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
