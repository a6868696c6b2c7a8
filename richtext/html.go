package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
)

// Component returns a templ.Component that renders t as HTML.
func Component(t Text) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderHTML(&buf, t)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// AsHTML renders t to an HTML string.
func AsHTML(t Text) string {
	var buf bytes.Buffer
	RenderHTML(&buf, t)
	return buf.String()
}

// RenderHTML writes the HTML representation of t to buf. Consecutive list
// items are grouped into a single <ul> or <ol>.
func RenderHTML(buf *bytes.Buffer, t Text) {
	imageCount := 0
	inList := false
	inOrderedList := false

	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}
	flushOrderedList := func() {
		if inOrderedList {
			buf.WriteString("</ol>")
			inOrderedList = false
		}
	}

	for _, n := range t {
		switch n.Type {
		case TypeListItem:
			flushOrderedList()
			if !inList {
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatInline(n.Text, n.Spans))
			buf.WriteString("</li>")
			continue
		case TypeOListItem:
			flushList()
			if !inOrderedList {
				buf.WriteString("<ol>")
				inOrderedList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatInline(n.Text, n.Spans))
			buf.WriteString("</li>")
			continue
		}

		flushList()
		flushOrderedList()

		switch n.Type {
		case TypeHeading1, TypeHeading2, TypeHeading3, TypeHeading4, TypeHeading5, TypeHeading6:
			tag := "h" + strings.TrimPrefix(n.Type, "heading")
			buf.WriteString("<" + tag + ">")
			buf.WriteString(FormatInline(n.Text, n.Spans))
			buf.WriteString("</" + tag + ">")
		case TypePreformatted:
			buf.WriteString("<pre>")
			buf.WriteString(FormatInline(n.Text, n.Spans))
			buf.WriteString("</pre>")
		case TypeImage:
			src := SafeURL(n.URL)
			if src == "" {
				continue
			}
			imageCount++
			loadAttr := `loading="lazy"`
			if imageCount == 1 {
				loadAttr = `fetchpriority="high"`
			}
			buf.WriteString(`<img ` + loadAttr + ` src="` + src + `" alt="` + html.EscapeString(n.Alt) + `"`)
			if n.Dims != nil && n.Dims.Width > 0 && n.Dims.Height > 0 {
				buf.WriteString(` width="` + strconv.Itoa(n.Dims.Width) + `" height="` + strconv.Itoa(n.Dims.Height) + `"`)
			}
			buf.WriteString(` decoding="async"/>`)
		case TypeEmbed:
			// Provider markup is trusted CMS content.
			if n.OEmbed != nil && n.OEmbed.HTML != "" {
				buf.WriteString(`<div class="embed">` + n.OEmbed.HTML + `</div>`)
			}
		default:
			buf.WriteString("<p>")
			buf.WriteString(FormatInline(n.Text, n.Spans))
			buf.WriteString("</p>")
		}
	}
	flushList()
	flushOrderedList()
}

// FormatInline escapes text and wraps the ranges covered by spans in the
// matching inline tags. Offsets count UTF-16 code units, as the CMS
// computes them. Overlapping spans are closed and reopened so the output
// stays well nested.
func FormatInline(text string, spans []Span) string {
	text = strings.ReplaceAll(text, "\r", "")
	if len(spans) == 0 {
		return escapeText(text)
	}
	units := utf16.Encode([]rune(text))

	ordered := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > len(units) || s.Start >= s.End {
			continue
		}
		ordered = append(ordered, s)
	}
	// Outer spans first: earlier start, then longer range.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End > ordered[j].End
	})

	var b strings.Builder
	var open []Span
	next := 0
	lowHalf := false
	for i := 0; i <= len(units); i++ {
		// close spans ending here, reopening any inner span that continues
		for k := len(open) - 1; k >= 0; k-- {
			if open[k].End != i {
				continue
			}
			var reopen []Span
			for len(open)-1 > k {
				top := open[len(open)-1]
				open = open[:len(open)-1]
				b.WriteString(closeTag(top))
				if top.End != i {
					reopen = append(reopen, top)
				}
			}
			b.WriteString(closeTag(open[k]))
			open = open[:k]
			for r := len(reopen) - 1; r >= 0; r-- {
				b.WriteString(openTag(reopen[r]))
				open = append(open, reopen[r])
			}
		}
		for next < len(ordered) && ordered[next].Start == i {
			b.WriteString(openTag(ordered[next]))
			open = append(open, ordered[next])
			next++
		}
		switch {
		case i == len(units):
		case lowHalf:
			// second half of a surrogate pair, already written
			lowHalf = false
		default:
			r := rune(units[i])
			if utf16.IsSurrogate(r) && i+1 < len(units) {
				r = utf16.DecodeRune(r, rune(units[i+1]))
				lowHalf = true
			}
			b.WriteString(escapeText(string(r)))
		}
	}
	return b.String()
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}

func openTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "<strong>"
	case SpanEm:
		return "<em>"
	case SpanHyperlink:
		if s.Data == nil {
			return "<span>"
		}
		href := SafeURL(s.Data.URL)
		if href == "" {
			return "<span>"
		}
		attrs := ""
		if s.Data.Target == "_blank" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>`
	case SpanLabel:
		if s.Data != nil && s.Data.Label != "" {
			return `<span class="` + html.EscapeString(s.Data.Label) + `">`
		}
		return "<span>"
	default:
		return "<span>"
	}
}

func closeTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "</strong>"
	case SpanEm:
		return "</em>"
	case SpanHyperlink:
		if s.Data == nil || SafeURL(s.Data.URL) == "" {
			return "</span>"
		}
		return "</a>"
	default:
		return "</span>"
	}
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
