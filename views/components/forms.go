package components

import (
	"context"

	"github.com/a-h/templ"

	"noteboard/views/models"
)

// NoteForm creates a note from the draft fields.
func NoteForm(viewID, title, content string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<form method="post" action="/notes" class="note-form">`)
		p.render(ctx, viewField(viewID))
		p.f(`<input type="text" name="title" placeholder="Title" value="%s" required>`, title)
		p.f(`<textarea name="content" rows="4" placeholder="Content (Markdown)" required>%s</textarea>`, content)
		p.raw(`<button type="submit">Add Note</button></form>`)
	})
}

func SearchForm(viewID, query string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<form method="post" action="/search" class="search-form">`)
		p.render(ctx, viewField(viewID))
		p.f(`<input type="search" name="query" placeholder="Search notes" value="%s">`, query)
		p.raw(`<button type="submit">Search</button></form>`)
	})
}

func LogoutForm(viewID string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<form method="post" action="/logout" class="logout-form">`)
		p.render(ctx, viewField(viewID))
		p.raw(`<button type="submit" class="secondary">Logout</button></form>`)
	})
}

func LoginForm(v models.AuthPageView) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<form method="post" action="/login" class="auth-form">`)
		p.render(ctx, formError(v.Error))
		p.f(`<input type="email" name="email" placeholder="Email" value="%s" required>`, v.Email)
		p.raw(`<input type="password" name="password" placeholder="Password" required>`)
		p.raw(`<button type="submit">Login</button></form>`)
		p.raw(`<p class="auth-switch">Don't have an account? <a href="/register">Register here</a></p>`)
	})
}

func RegisterForm(v models.AuthPageView) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<form method="post" action="/register" class="auth-form">`)
		p.render(ctx, formError(v.Error))
		p.f(`<input type="text" name="username" placeholder="Username" value="%s" required>`, v.Username)
		p.f(`<input type="email" name="email" placeholder="Email" value="%s" required>`, v.Email)
		p.raw(`<input type="password" name="password" placeholder="Password" required>`)
		p.raw(`<button type="submit">Register</button></form>`)
		p.raw(`<p class="auth-switch">Already have an account? <a href="/login">Login here</a></p>`)
	})
}

func formError(msg string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		if msg != "" {
			p.f(`<p class="error" role="alert">%s</p>`, msg)
		}
	})
}
