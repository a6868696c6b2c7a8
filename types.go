package spacetraveling

import (
	"github.com/eringen/spacetraveling/post"
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
}

// HomePage is what the post list templates receive.
type HomePage struct {
	Posts []post.Summary
	// NextPage is the CMS cursor of the following page, "" on the last page.
	NextPage string
	// LoadMoreURL is the fragment endpoint the "load more" control calls with
	// the cursor. Empty in static builds, where the browser follows the
	// cursor against the CMS directly.
	LoadMoreURL string
	Preview     bool
}

// HasMore reports whether another page can be loaded.
func (h HomePage) HasMore() bool {
	return h.NextPage != ""
}

// PostPage is what the post detail template receives.
type PostPage struct {
	Post        post.Detail
	Date        string // publication date for display, "" when unknown
	ReadingTime int    // minutes
	Preview     bool
}
