// Package post holds the blog's content model together with the two pieces
// of logic the pages depend on: the "load more" paginator and the reading
// time estimate.
package post

import (
	"time"

	"github.com/eringen/spacetraveling/richtext"
)

// Summary is a post as it appears in the home page list.
type Summary struct {
	UID                  string
	FirstPublicationDate *time.Time // nil when the CMS has no valid date
	Title                string
	Subtitle             string
	Author               string

	// Date is FirstPublicationDate rendered for display. Empty when unknown.
	Date string
}

// Link returns the site path of the post.
func (s Summary) Link() string {
	return "/post/" + s.UID + "/"
}

// Page is one page of summaries. An empty NextPage means there are no more pages.
type Page struct {
	Results  []Summary
	NextPage string
}

// Detail is a full post.
type Detail struct {
	UID                  string
	FirstPublicationDate *time.Time
	LastPublicationDate  *time.Time
	Title                string
	Subtitle             string
	Author               string
	BannerURL            string

	// Content is nil when the document has no content field at all.
	Content []ContentBlock
}

// Link returns the site path of the post.
func (d Detail) Link() string {
	return "/post/" + d.UID + "/"
}

// ContentBlock is one heading plus its rich text body. A nil Heading or
// Body marks a block the CMS sent without that field.
type ContentBlock struct {
	Heading *string
	Body    richtext.Text
}

// HeadingText returns the heading, or "" when missing.
func (b ContentBlock) HeadingText() string {
	if b.Heading == nil {
		return ""
	}
	return *b.Heading
}
