package views

import (
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first error, so components can
// be written as straight-line code and checked once at the end.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) text(s string) {
	hw.raw(html.EscapeString(s))
}

// open writes a start tag with attributes given as name/value pairs.
func (hw *htmlWriter) open(tag string, attrs ...string) {
	hw.raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		hw.raw(" " + attrs[i] + `="` + html.EscapeString(attrs[i+1]) + `"`)
	}
	hw.raw(">")
}

func (hw *htmlWriter) close(tag string) {
	hw.raw("</" + tag + ">")
}

// element writes <tag attrs>text</tag> with text escaped.
func (hw *htmlWriter) element(tag, text string, attrs ...string) {
	hw.open(tag, attrs...)
	hw.text(text)
	hw.close(tag)
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// newComponent builds a templ.Component from a function writing to an htmlWriter.
func newComponent(fn func(ctx context.Context, hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		fn(ctx, hw)
		return hw.err
	})
}
