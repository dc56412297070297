// Package components holds the HTML building blocks shared by the pages: the app shell, note
// cards and forms. Components are plain templ.Component values so they compose with anything
// else implementing the templ interface.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// printer accumulates the first write error so components can emit markup without checking
// every call.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text writes s escaped for element content or a quoted attribute value.
func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

// f writes a format string whose %s arguments are escaped.
func (p *printer) f(format string, args ...string) {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = templ.EscapeString(a)
	}
	p.raw(fmt.Sprintf(format, escaped...))
}

func (p *printer) render(ctx context.Context, c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

func component(fn func(ctx context.Context, p *printer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		fn(ctx, p)
		return p.err
	})
}
