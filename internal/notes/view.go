package notes

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"noteboard/internal/session"
)

// User-facing outcomes. Every failure of an action degrades to the same message for that action.
const (
	NoticeShared       = "Note shared successfully"
	NoticeFetchFailed  = "Failed to fetch notes"
	NoticeCreateFailed = "Failed to create note"
	NoticeUpdateFailed = "Failed to update note"
	NoticeDeleteFailed = "Failed to delete note"
	NoticeShareFailed  = "Failed to share note"
	NoticeSearchFailed = "Failed to search notes"
)

// View is the state behind one mounted notes page: the rendered list, the form drafts and a
// pending notice. Network calls run outside the lock, so concurrent fetches are not coalesced
// and whichever resolves last sets the list.
type View struct {
	ID string

	sess session.Session
	svc  *Service
	log  *slog.Logger

	mu      sync.Mutex
	notes   []Note
	draft   Draft
	edit    *EditDraft
	query   string
	notice  string
	touched time.Time

	// redirected is set while the browser follows an action's redirect back to the page.
	redirected bool
}

func NewView(id string, sess session.Session, svc *Service, log *slog.Logger) *View {
	if log == nil {
		log = slog.Default()
	}
	return &View{
		ID:      id,
		sess:    sess,
		svc:     svc,
		log:     log.With("view", id),
		notes:   []Note{},
		touched: time.Now(),
	}
}

// Session returns the session the view was mounted with.
func (v *View) Session() session.Session {
	return v.sess
}

// Load is the mount-time fetch. Without a token it fails with session.ErrNoToken before any
// request is issued.
func (v *View) Load(ctx context.Context) error {
	if !v.sess.Valid() {
		return session.ErrNoToken
	}
	return v.Refresh(ctx)
}

// Refresh replaces the list with the server's current one. Any search result or local order
// is discarded.
func (v *View) Refresh(ctx context.Context) error {
	notes, err := v.svc.List(ctx, v.sess)
	if err != nil {
		v.fail(NoticeFetchFailed, err)
		return err
	}
	v.mu.Lock()
	v.notes = notes
	v.touch()
	v.mu.Unlock()
	return nil
}

// SetDraft records the new-note form fields.
func (v *View) SetDraft(title, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = Draft{Title: title, Content: content}
	v.touch()
}

// Create submits the draft. On success the draft is reset and the list re-fetched.
func (v *View) Create(ctx context.Context) error {
	v.mu.Lock()
	in := NoteInput{Title: v.draft.Title, Content: v.draft.Content}
	v.mu.Unlock()

	if _, err := v.svc.Create(ctx, v.sess, in); err != nil {
		v.fail(NoticeCreateFailed, err)
		return err
	}

	v.mu.Lock()
	v.draft = Draft{}
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// BeginEdit copies a listed note into the edit draft. It reports false if id is not listed.
func (v *View) BeginEdit(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.notes {
		if n.ID == id {
			v.edit = &EditDraft{ID: n.ID, Title: n.Title, Content: n.Content}
			v.touch()
			return true
		}
	}
	return false
}

// SetEdit records the edit form fields, starting an edit of id if none is in progress.
func (v *View) SetEdit(id, title, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.edit = &EditDraft{ID: id, Title: title, Content: content}
	v.touch()
}

// CancelEdit drops the edit draft.
func (v *View) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.edit = nil
	v.touch()
}

// Update submits the edit draft. On success edit state is cleared and the list re-fetched.
// With no edit in progress it does nothing.
func (v *View) Update(ctx context.Context) error {
	v.mu.Lock()
	if v.edit == nil {
		v.mu.Unlock()
		return nil
	}
	e := *v.edit
	v.mu.Unlock()

	if _, err := v.svc.Update(ctx, v.sess, e.ID, NoteInput{Title: e.Title, Content: e.Content}); err != nil {
		v.fail(NoticeUpdateFailed, err)
		return err
	}

	v.mu.Lock()
	v.edit = nil
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Delete removes a note and re-fetches the list.
func (v *View) Delete(ctx context.Context, id string) error {
	if err := v.svc.Delete(ctx, v.sess, id); err != nil {
		v.fail(NoticeDeleteFailed, err)
		return err
	}
	return v.Refresh(ctx)
}

// Share grants email access to a note and posts a confirmation. The list is not re-fetched, so
// the new grant shows up only after the next unrelated fetch.
func (v *View) Share(ctx context.Context, id, email string) error {
	if err := v.svc.Share(ctx, v.sess, id, email); err != nil {
		v.fail(NoticeShareFailed, err)
		return err
	}
	v.mu.Lock()
	v.notice = NoticeShared
	v.touch()
	v.mu.Unlock()
	return nil
}

// SetQuery records the search field.
func (v *View) SetQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = q
	v.touch()
}

// Search replaces the list with the server's results for the current query. There is no way
// back to the unfiltered list short of a re-fetch.
func (v *View) Search(ctx context.Context) error {
	v.mu.Lock()
	q := v.query
	v.mu.Unlock()

	notes, err := v.svc.Search(ctx, v.sess, q)
	if err != nil {
		v.fail(NoticeSearchFailed, err)
		return err
	}
	v.mu.Lock()
	v.notes = notes
	v.touch()
	v.mu.Unlock()
	return nil
}

// Reorder moves the note at from to position to, in memory only. Out of range indices are
// ignored and reported as false.
func (v *View) Reorder(from, to int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := len(v.notes)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	moved := v.notes[from]
	items := make([]Note, 0, n)
	items = append(items, v.notes[:from]...)
	items = append(items, v.notes[from+1:]...)
	items = append(items[:to], append([]Note{moved}, items[to:]...)...)
	v.notes = items
	v.touch()
	return true
}

// Reset clears the form state the page holds: drafts, edit and search query. The list and any
// pending notice are kept.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = Draft{}
	v.edit = nil
	v.query = ""
	v.touch()
}

// MarkRedirect records that the next page load is the redirect following an action.
func (v *View) MarkRedirect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.redirected = true
}

// TakeRedirect reports and clears the mark left by MarkRedirect.
func (v *View) TakeRedirect() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	r := v.redirected
	v.redirected = false
	return r
}

// Snapshot copies the view state. The pending notice is included but not consumed.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := State{
		Notes:  append([]Note(nil), v.notes...),
		Draft:  v.draft,
		Query:  v.query,
		Notice: v.notice,
	}
	if v.edit != nil {
		e := *v.edit
		st.Edit = &e
	}
	return st
}

// TakeNotice returns and clears the pending notice.
func (v *View) TakeNotice() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := v.notice
	v.notice = ""
	return n
}

// LastActive is when the view last changed.
func (v *View) LastActive() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.touched
}

func (v *View) fail(notice string, err error) {
	v.log.Error(notice, "error", err)
	v.mu.Lock()
	v.notice = notice
	v.mu.Unlock()
}

// touch must be called with mu held.
func (v *View) touch() {
	v.touched = time.Now()
}
