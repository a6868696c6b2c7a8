// Package views is the default set of page templates for spacetraveling.
package views

import (
	"strings"

	spacetraveling "github.com/eringen/spacetraveling"
)

// Default returns the bundled templates.
func Default() spacetraveling.ViewFuncs {
	return spacetraveling.ViewFuncs{
		Home:        Home,
		PostList:    PostList,
		Post:        Post,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

func htmlLang(locale string) string {
	if locale == "" {
		return "pt-BR"
	}
	return strings.ReplaceAll(locale, "_", "-")
}

// layout writes the document shell around body.
func layout(hw *htmlWriter, cfg spacetraveling.SiteConfig, meta spacetraveling.PageMeta, jsonLD string, preview bool, body func()) {
	hw.raw("<!DOCTYPE html>")
	hw.open("html", "lang", htmlLang(cfg.Locale))
	hw.raw("<head>")
	hw.raw(`<meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	hw.element("title", meta.Title)
	if meta.Description != "" {
		hw.open("meta", "name", "description", "content", meta.Description)
	}
	if meta.URL != "" {
		hw.open("link", "rel", "canonical", "href", meta.URL)
		hw.open("meta", "property", "og:url", "content", meta.URL)
	}
	hw.open("meta", "property", "og:title", "content", meta.Title)
	if meta.OGType != "" {
		hw.open("meta", "property", "og:type", "content", meta.OGType)
	}
	if meta.Image != "" {
		hw.open("meta", "property", "og:image", "content", meta.Image)
	}
	hw.open("link", "rel", "icon", "type", "image/svg+xml", "href", "/favicon.svg")
	hw.open("link", "rel", "alternate", "type", "application/rss+xml", "title", cfg.Name, "href", "/feed.xml")
	hw.open("link", "rel", "stylesheet", "href", "/public/styles.css")
	if jsonLD != "" {
		hw.raw(`<script type="application/ld+json">`)
		hw.raw(strings.ReplaceAll(jsonLD, "</", `<\/`))
		hw.raw(`</script>`)
	}
	hw.raw("</head><body>")
	header(hw)
	if preview {
		hw.open("aside", "class", "preview")
		hw.text("Modo preview ")
		hw.element("a", "Sair do modo preview", "href", "/api/exit-preview/")
		hw.close("aside")
	}
	body()
	hw.raw(`<script src="/public/loadmore.js" defer></script>`)
	hw.raw("</body></html>")
}

func header(hw *htmlWriter) {
	hw.open("header", "class", "header")
	hw.open("a", "href", "/")
	hw.open("img", "src", "/public/logo.svg", "alt", "logo")
	hw.close("a")
	hw.close("header")
}
