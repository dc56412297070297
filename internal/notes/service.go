package notes

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"noteboard/internal/session"
)

type Service struct {
	repo *Repo
	md   goldmark.Markdown
}

func NewService(repo *Repo) *Service {
	return &Service{
		repo: repo,
		md:   goldmark.New(),
	}
}

// List fetches the caller's notes
func (s *Service) List(ctx context.Context, sess session.Session) ([]Note, error) {
	if !sess.Valid() {
		return nil, session.ErrNoToken
	}
	return s.repo.List(ctx, sess)
}

// Create creates a new note. Empty titles and contents are passed through; the API decides.
func (s *Service) Create(ctx context.Context, sess session.Session, input NoteInput) (*Note, error) {
	if !sess.Valid() {
		return nil, session.ErrNoToken
	}
	return s.repo.Insert(ctx, sess, input)
}

// Update edits an existing note
func (s *Service) Update(ctx context.Context, sess session.Session, id string, input NoteInput) (*Note, error) {
	if !sess.Valid() {
		return nil, session.ErrNoToken
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("note ID required")
	}
	return s.repo.Update(ctx, sess, id, input)
}

// Delete removes a note by ID
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.Valid() {
		return session.ErrNoToken
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("note ID required")
	}
	return s.repo.Delete(ctx, sess, id)
}

// Share grants email read access to a note
func (s *Service) Share(ctx context.Context, sess session.Session, id, email string) error {
	if !sess.Valid() {
		return session.ErrNoToken
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("note ID required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	return s.repo.Share(ctx, sess, id, email)
}

// Search performs the remote free-text search
func (s *Service) Search(ctx context.Context, sess session.Session, query string) ([]Note, error) {
	if !sess.Valid() {
		return nil, session.ErrNoToken
	}
	return s.repo.Search(ctx, sess, query)
}

// RenderMarkdown converts markdown content to HTML
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return html.EscapeString(content)
	}
	return buf.String()
}
