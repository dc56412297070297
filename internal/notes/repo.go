package notes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"noteboard/internal/remote"
	"noteboard/internal/session"
)

var (
	ErrNoteNotFound = errors.New("note not found")
)

// Repo reads and writes notes through the remote API. Every call carries the caller's session.
type Repo struct {
	api *remote.Client
}

func NewRepo(api *remote.Client) *Repo {
	return &Repo{api: api}
}

// List fetches every note visible to the session
func (r *Repo) List(ctx context.Context, s session.Session) ([]Note, error) {
	var notes []Note
	if err := r.api.Do(ctx, http.MethodGet, "/api/notes", nil, s.Token, nil, &notes); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// Insert creates a new note
func (r *Repo) Insert(ctx context.Context, s session.Session, in NoteInput) (*Note, error) {
	var note Note
	if err := r.api.Do(ctx, http.MethodPost, "/api/notes", nil, s.Token, in, &note); err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &note, nil
}

// Update replaces the title and content of a note
func (r *Repo) Update(ctx context.Context, s session.Session, id string, in NoteInput) (*Note, error) {
	var note Note
	err := r.api.Do(ctx, http.MethodPut, notePath(id), nil, s.Token, in, &note)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, fmt.Errorf("update note %s: %w", id, ErrNoteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update note %s: %w", id, err)
	}
	return &note, nil
}

// Delete removes a note by ID
func (r *Repo) Delete(ctx context.Context, s session.Session, id string) error {
	err := r.api.Do(ctx, http.MethodDelete, notePath(id), nil, s.Token, nil, nil)
	if errors.Is(err, remote.ErrNotFound) {
		return fmt.Errorf("delete note %s: %w", id, ErrNoteNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}

// Share grants read access on a note to the given email
func (r *Repo) Share(ctx context.Context, s session.Session, id, email string) error {
	err := r.api.Do(ctx, http.MethodPost, notePath(id)+"/share", nil, s.Token, ShareInput{Email: email}, nil)
	if errors.Is(err, remote.ErrNotFound) {
		return fmt.Errorf("share note %s: %w", id, ErrNoteNotFound)
	}
	if err != nil {
		return fmt.Errorf("share note %s: %w", id, err)
	}
	return nil
}

// Search runs the remote free-text search
func (r *Repo) Search(ctx context.Context, s session.Session, query string) ([]Note, error) {
	var notes []Note
	q := url.Values{"query": []string{query}}
	if err := r.api.Do(ctx, http.MethodGet, "/api/notes/search", q, s.Token, nil, &notes); err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

func notePath(id string) string {
	return "/api/notes/" + url.PathEscape(id)
}
