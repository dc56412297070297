package notes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-contrib/sse"

	"noteboard/internal/push"
	"noteboard/internal/session"
	"noteboard/views/components"
	"noteboard/views/models"
	"noteboard/views/pages"
)

// FragmentHeader asks an action endpoint to answer with the notes panel instead of a redirect.
const FragmentHeader = "X-Noteboard-Fragment"

const (
	heartbeatInterval = 25 * time.Second
	// retryMillis is the EventSource reconnect delay sent with the first event.
	retryMillis = 3000
)

type Handler struct {
	svc   *Service
	views *Registry
	store *session.CookieStore
	hub   *push.Hub
	log   *slog.Logger
}

// NewHandler wires the notes web handlers. hub may be nil, in which case /events tells the
// browser there is no live channel.
func NewHandler(svc *Service, views *Registry, store *session.CookieStore, hub *push.Hub, log *slog.Logger) *Handler {
	return &Handler{svc: svc, views: views, store: store, hub: hub, log: log}
}

// --- Pages ---

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	sess, ok := h.pageSession(w, r)
	if !ok {
		return
	}

	// A failed load leaves its notice on the view; the page still renders.
	v, ok := h.views.Get(r.URL.Query().Get("view"), sess)
	switch {
	case !ok:
		v = h.views.Mount(sess)
		_ = v.Load(r.Context())
	case !v.TakeRedirect():
		// A reload enters the page afresh: full list, local order and forms dropped.
		v.Reset()
		_ = v.Load(r.Context())
	}

	h.render(w, r, pages.NotesPage(h.pageView(v, true)))
}

// NotesFragment handles GET /fragments/notes (live refresh partial)
func (h *Handler) NotesFragment(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Load(r)
	if !sess.Valid() {
		h.jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	v, ok := h.views.Get(r.URL.Query().Get("view"), sess)
	if !ok {
		h.jsonError(w, "view not found", http.StatusNotFound)
		return
	}
	h.render(w, r, components.NotesPanel(h.pageView(v, false)))
}

// --- Actions ---

// CreateNote handles POST /notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	v.SetDraft(r.PostForm.Get("title"), r.PostForm.Get("content"))
	if err := v.Create(r.Context()); err != nil {
		h.log.Error("failed to create note", "error", err)
	}
	h.back(w, r, v)
}

// EditNote handles POST /notes/{id}/edit
func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	if !v.BeginEdit(r.PathValue("id")) {
		h.log.Warn("edit of unlisted note", "id", r.PathValue("id"))
	}
	h.back(w, r, v)
}

// CancelEdit handles POST /notes/edit/cancel
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	v.CancelEdit()
	h.back(w, r, v)
}

// UpdateNote handles POST /notes/{id}/update
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	v.SetEdit(r.PathValue("id"), r.PostForm.Get("title"), r.PostForm.Get("content"))
	if err := v.Update(r.Context()); err != nil {
		h.log.Error("failed to update note", "error", err)
	}
	h.back(w, r, v)
}

// DeleteNote handles POST /notes/{id}/delete
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	if err := v.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.log.Error("failed to delete note", "error", err)
	}
	h.back(w, r, v)
}

// ShareNote handles POST /notes/{id}/share
func (h *Handler) ShareNote(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	if err := v.Share(r.Context(), r.PathValue("id"), email); err != nil {
		h.log.Error("failed to share note", "error", err)
	}
	h.back(w, r, v)
}

// Search handles POST /search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	v.SetQuery(r.PostForm.Get("query"))
	if err := v.Search(r.Context()); err != nil {
		h.log.Error("failed to search notes", "error", err)
	}
	h.back(w, r, v)
}

// Reorder handles POST /notes/reorder
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	v, ok := h.formView(w, r)
	if !ok {
		return
	}
	from := h.parseInt(r.PostForm.Get("from"), -1)
	to := h.parseInt(r.PostForm.Get("to"), -1)
	if !v.Reorder(from, to) {
		h.log.Debug("reorder ignored", "from", from, "to", to)
	}
	h.back(w, r, v)
}

// Logout handles POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Load(r)
	if sess.Valid() {
		n := h.views.UnmountSession(sess)
		h.log.Debug("views unmounted", "count", n)
	}
	if err := h.store.Clear(w, r); err != nil {
		h.log.Error("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// --- Live refresh ---

// Events handles GET /events. The stream opens with a "ready" event and carries a "ping" event
// on every heartbeat. Each push signal re-fetches the view's notes and then emits one "notes"
// event telling the browser to pull the fragment.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Load(r)
	if !sess.Valid() {
		h.jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	v, ok := h.views.Get(r.URL.Query().Get("view"), sess)
	if !ok {
		h.jsonError(w, "view not found", http.StatusNotFound)
		return
	}
	if h.hub == nil {
		// 204 stops EventSource from reconnecting.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	signals, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	if err := sse.Encode(w, sse.Event{Event: "ready", Retry: retryMillis, Data: v.ID}); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Error("event stream not flushable", "error", err)
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sse.Encode(w, sse.Event{Event: "ping", Data: time.Now().UnixMilli()}); err != nil {
				return
			}
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if err := v.Refresh(ctx); err != nil {
				h.log.Error("failed to refresh notes", "error", err)
			}
			if err := sse.Encode(w, sse.Event{Event: "notes", Data: sig.At.UnixMilli()}); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// --- Helper methods ---

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.log.Error("failed to render", "error", err)
	}
}

// pageSession returns the browser's session, or redirects to the login page when there is none.
func (h *Handler) pageSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess := h.store.Load(r)
	if !sess.Valid() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return sess, false
	}
	return sess, true
}

// formView resolves the view named by the posted "view" field. An unknown view sends the browser
// back to / for a fresh mount.
func (h *Handler) formView(w http.ResponseWriter, r *http.Request) (*View, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil, false
	}
	sess, ok := h.pageSession(w, r)
	if !ok {
		return nil, false
	}
	v, ok := h.views.Get(r.PostForm.Get("view"), sess)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return v, true
}

// back finishes an action: a fragment for script-driven requests, otherwise a redirect to the
// view's page, which renders the view as the action left it.
func (h *Handler) back(w http.ResponseWriter, r *http.Request, v *View) {
	if r.Header.Get(FragmentHeader) != "" {
		h.render(w, r, components.NotesPanel(h.pageView(v, false)))
		return
	}
	v.MarkRedirect()
	http.Redirect(w, r, "/?view="+url.QueryEscape(v.ID), http.StatusSeeOther)
}

// pageView snapshots v for rendering and consumes its pending notice.
func (h *Handler) pageView(v *View, live bool) models.NotesPageView {
	st := v.Snapshot()
	v.TakeNotice()

	noteViews := h.notesToViews(st.Notes, session.ViewerID(v.Session()))
	renderedContent := make(map[string]string)
	for _, note := range noteViews {
		renderedContent[note.ID] = h.svc.RenderMarkdown(note.Content)
	}

	pv := models.NotesPageView{
		ViewID:       v.ID,
		Notes:        noteViews,
		Rendered:     renderedContent,
		DraftTitle:   st.Draft.Title,
		DraftContent: st.Draft.Content,
		Query:        st.Query,
		Notice:       st.Notice,
		Live:         live && h.hub != nil,
	}
	if st.Edit != nil {
		pv.Edit = &models.EditView{ID: st.Edit.ID, Title: st.Edit.Title, Content: st.Edit.Content}
	}
	return pv
}

// --- View model converters ---

func (h *Handler) notesToViews(notes []Note, viewer string) []models.NoteView {
	views := make([]models.NoteView, len(notes))
	for i, note := range notes {
		views[i] = models.NoteView{
			ID:         note.ID,
			Title:      note.Title,
			Content:    note.Content,
			Owner:      note.Owner,
			SharedWith: note.SharedWith,
			SharedWithViewer: viewer != "" && note.Owner != viewer &&
				slices.Contains(note.SharedWith, viewer),
		}
	}
	return views
}
