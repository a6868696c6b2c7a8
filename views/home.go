package views

import (
	"context"

	"github.com/a-h/templ"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/post"
)

const loadMoreLabel = "Carregar mais posts"

// Home renders the post list page.
func Home(cfg spacetraveling.SiteConfig, page spacetraveling.HomePage) templ.Component {
	return newComponent(func(ctx context.Context, hw *htmlWriter) {
		layout(hw, cfg, spacetraveling.HomeMeta(cfg), spacetraveling.WebsiteJsonLD(cfg), page.Preview, func() {
			hw.open("main", "class", "container")
			hw.open("div", "class", "posts", "id", "posts")
			postItems(hw, page.Posts)
			loadMoreButton(hw, cfg, page)
			hw.close("div")
			hw.close("main")
		})
	})
}

// PostList renders the fragment returned by the load-more endpoint: the new
// entries and, when more remain, a new load-more control.
func PostList(cfg spacetraveling.SiteConfig, page spacetraveling.HomePage) templ.Component {
	return newComponent(func(ctx context.Context, hw *htmlWriter) {
		postItems(hw, page.Posts)
		loadMoreButton(hw, cfg, page)
	})
}

func postItems(hw *htmlWriter, posts []post.Summary) {
	for _, p := range posts {
		hw.open("a", "class", "post-item", "href", p.Link())
		hw.element("h3", p.Title)
		hw.element("p", p.Subtitle)
		hw.open("div", "class", "info")
		if p.Date != "" {
			var datetime string
			if p.FirstPublicationDate != nil {
				datetime = p.FirstPublicationDate.UTC().Format("2006-01-02")
			}
			hw.element("time", p.Date, "class", "calendar", "datetime", datetime)
		}
		hw.element("span", p.Author, "class", "author")
		hw.close("div")
		hw.close("a")
	}
}

func loadMoreButton(hw *htmlWriter, cfg spacetraveling.SiteConfig, page spacetraveling.HomePage) {
	if !page.HasMore() {
		return
	}
	hw.open("button",
		"type", "button",
		"class", "load-more",
		"data-load-more", "",
		"data-cursor", page.NextPage,
		"data-endpoint", page.LoadMoreURL,
		"data-locale", htmlLang(cfg.Locale),
	)
	hw.text(loadMoreLabel)
	hw.close("button")
}
