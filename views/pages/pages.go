package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"noteboard/views/components"
	"noteboard/views/models"
)

// NotesPage is the main view: note form, search, the live notes panel and logout.
func NotesPage(v models.NotesPageView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		live := "false"
		if v.Live {
			live = "true"
		}
		if _, err := io.WriteString(w, `<div class="notes-page" data-view="`+templ.EscapeString(v.ViewID)+`" data-live="`+live+`">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div class="toolbar"><h1>My Notes</h1>`); err != nil {
			return err
		}
		if err := components.LogoutForm(v.ViewID).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div>`); err != nil {
			return err
		}
		for _, c := range []templ.Component{
			components.NoteForm(v.ViewID, v.DraftTitle, v.DraftContent),
			components.SearchForm(v.ViewID, v.Query),
			components.NotesPanel(v),
		} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
	return components.Layout("Notes", body)
}

func LoginPage(v models.AuthPageView) templ.Component {
	return components.Layout("Login", authBody("Login", components.LoginForm(v)))
}

func RegisterPage(v models.AuthPageView) templ.Component {
	return components.Layout("Register", authBody("Register", components.RegisterForm(v)))
}

func authBody(heading string, form templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="auth-card"><h1>`+templ.EscapeString(heading)+`</h1>`); err != nil {
			return err
		}
		if err := form.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
