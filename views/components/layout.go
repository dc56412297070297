package components

import (
	"context"

	"github.com/a-h/templ"
)

// Layout is the app shell around every page. The theme button toggles the dark class on the
// document root in the browser; nothing remembers the choice across reloads.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.f(`<title>%s · noteboard</title>`, title)
		p.raw(`<link rel="stylesheet" href="/static/app.css">`)
		p.raw(`<script src="/static/app.js" defer></script>`)
		p.raw(`</head><body><header class="shell">`)
		p.raw(`<a class="brand" href="/">noteboard</a>`)
		p.raw(`<button type="button" id="theme-toggle" class="theme-toggle">Dark Mode</button>`)
		p.raw(`</header><main class="container">`)
		p.render(ctx, body)
		p.raw(`</main></body></html>`)
	})
}
