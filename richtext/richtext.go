// Package richtext models Prismic structured text and renders it as plain
// text or as HTML through a templ component.
package richtext

import (
	"strings"
)

// Block types emitted by the Prismic rich text field.
const (
	TypeHeading1     = "heading1"
	TypeHeading2     = "heading2"
	TypeHeading3     = "heading3"
	TypeHeading4     = "heading4"
	TypeHeading5     = "heading5"
	TypeHeading6     = "heading6"
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Span types.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// Text is an ordered sequence of rich text blocks.
type Text []Node

// Node is one block of rich text: a paragraph, heading, list item, image or embed.
type Node struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`

	// image blocks
	URL  string      `json:"url,omitempty"`
	Alt  string      `json:"alt,omitempty"`
	Dims *Dimensions `json:"dimensions,omitempty"`

	// embed blocks
	OEmbed *OEmbed `json:"oembed,omitempty"`
}

// Dimensions of an image block.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OEmbed carries the provider markup of an embed block.
type OEmbed struct {
	HTML string `json:"html"`
}

// Span marks a range of a node's text. Start and End are character offsets.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData holds the link target of a hyperlink span or the name of a label.
type SpanData struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label,omitempty"`
}

// AsText flattens rich text to plain text, joining blocks with a single space.
// Blocks without text (images, embeds) contribute nothing.
func AsText(t Text) string {
	parts := make([]string, 0, len(t))
	for _, n := range t {
		if n.Text == "" {
			continue
		}
		parts = append(parts, n.Text)
	}
	return strings.Join(parts, " ")
}

// WordCount returns the number of whitespace-delimited words in the
// plain-text rendering of t.
func WordCount(t Text) int {
	return len(strings.Fields(AsText(t)))
}
