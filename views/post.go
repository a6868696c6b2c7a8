package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/richtext"
)

// Post renders a post page with its banner, byline and reading time.
func Post(cfg spacetraveling.SiteConfig, page spacetraveling.PostPage) templ.Component {
	d := page.Post
	return newComponent(func(ctx context.Context, hw *htmlWriter) {
		layout(hw, cfg, spacetraveling.PostMeta(cfg, d), spacetraveling.BlogPostingJsonLD(d, cfg), page.Preview, func() {
			if src := richtext.SafeURL(d.BannerURL); src != "" {
				// SafeURL already escaped the value.
				hw.raw(`<img class="banner" src="` + src + `" alt="Banner"/>`)
			}
			hw.open("main", "class", "container post")
			hw.open("div", "class", "post-header")
			hw.element("h1", d.Title)
			hw.open("div", "class", "info")
			if page.Date != "" {
				hw.element("time", page.Date, "class", "calendar")
			}
			hw.element("span", d.Author, "class", "author")
			hw.element("span", strconv.Itoa(page.ReadingTime)+" min", "class", "clock")
			hw.close("div")
			hw.close("div")

			for _, block := range d.Content {
				hw.open("article", "class", "post-section")
				hw.element("h2", block.HeadingText())
				hw.open("div", "class", "post-content")
				hw.component(ctx, richtext.Component(block.Body))
				hw.close("div")
				hw.close("article")
			}
			hw.close("main")
		})
	})
}
