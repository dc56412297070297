package components

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"noteboard/views/models"
)

// NotesPanel is the live part of the notes page: the pending notice and the list. The
// /fragments/notes endpoint renders it alone.
func NotesPanel(v models.NotesPageView) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.f(`<section id="notes-panel" data-view="%s">`, v.ViewID)
		if v.Notice != "" {
			p.f(`<p class="notice" role="status">%s</p>`, v.Notice)
		}
		p.render(ctx, NoteCardList(v.ViewID, v.Notes, v.Rendered, v.Edit))
		p.raw(`</section>`)
	})
}

// NoteCardList renders the notes as draggable cards. The card matching edit is rendered as an
// edit form instead.
func NoteCardList(viewID string, notes []models.NoteView, rendered map[string]string, edit *models.EditView) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		if len(notes) == 0 {
			p.raw(`<p class="empty">No notes yet.</p>`)
			return
		}
		p.f(`<ul id="note-list" class="note-list" data-view="%s">`, viewID)
		for i, n := range notes {
			p.f(`<li class="note-card" draggable="true" data-index="%s" data-id="%s">`, strconv.Itoa(i), n.ID)
			if edit != nil && edit.ID == n.ID {
				p.render(ctx, EditForm(viewID, *edit))
			} else {
				p.render(ctx, NoteCard(viewID, n, rendered[n.ID]))
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul>`)
	})
}

// NoteCard shows one note with its edit, delete and share actions. html is the note content
// already rendered from Markdown.
func NoteCard(viewID string, n models.NoteView, html string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		action := "/notes/" + url.PathEscape(n.ID)

		p.f(`<h3 class="note-title">%s</h3>`, n.Title)
		p.raw(`<div class="note-content prose">`)
		p.raw(html)
		p.raw(`</div>`)

		p.raw(`<p class="note-meta">`)
		if n.Owner != "" {
			p.f(`<span class="owner">Owner: %s</span>`, n.Owner)
		}
		if n.SharedWithViewer {
			p.raw(` <span class="badge shared">Shared with you</span>`)
		}
		if len(n.SharedWith) > 0 {
			p.f(` <span class="shared-with">Shared with: %s</span>`, strings.Join(n.SharedWith, ", "))
		}
		p.raw(`</p>`)

		p.raw(`<div class="note-actions">`)
		p.f(`<form method="post" action="%s/edit">`, action)
		p.render(ctx, viewField(viewID))
		p.raw(`<button type="submit">Edit</button></form>`)

		p.f(`<form method="post" action="%s/delete">`, action)
		p.render(ctx, viewField(viewID))
		p.raw(`<button type="submit" class="danger">Delete</button></form>`)

		p.f(`<form method="post" action="%s/share" class="share-form">`, action)
		p.render(ctx, viewField(viewID))
		p.raw(`<input type="email" name="email" placeholder="Share with email" required>`)
		p.raw(`<button type="submit">Share</button></form>`)
		p.raw(`</div>`)
	})
}

// EditForm edits one note in place.
func EditForm(viewID string, e models.EditView) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.f(`<form method="post" action="/notes/%s/update" class="edit-form">`, url.PathEscape(e.ID))
		p.render(ctx, viewField(viewID))
		p.f(`<input type="text" name="title" value="%s" required>`, e.Title)
		p.f(`<textarea name="content" rows="5" required>%s</textarea>`, e.Content)
		p.raw(`<button type="submit">Update</button></form>`)

		p.raw(`<form method="post" action="/notes/edit/cancel">`)
		p.render(ctx, viewField(viewID))
		p.raw(`<button type="submit" class="secondary">Cancel</button></form>`)
	})
}

func viewField(viewID string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.f(`<input type="hidden" name="view" value="%s">`, viewID)
	})
}
