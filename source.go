package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

var (
	// ErrNotFound is returned when a requested post does not exist.
	ErrNotFound = prismic.ErrNotFound
	// ErrInvalidCursor is returned for a load-more cursor that does not
	// point at the configured CMS repository.
	ErrInvalidCursor = errors.New("spacetraveling: invalid page cursor")
)

// ContentSource is where posts come from. An empty ref means the published
// content; a preview ref selects unpublished changes.
type ContentSource interface {
	FirstPage(ctx context.Context, ref string) (post.Page, error)
	FetchPage(ctx context.Context, cursor string) (post.Page, error)
	AllPages(ctx context.Context, ref string) (post.Page, error)
	Post(ctx context.Context, uid, ref string) (post.Detail, error)
	PostUIDByID(ctx context.Context, id, ref string) (string, error)
	OwnsCursor(cursor string) bool
}

// PrismicSource reads posts of one custom type from a Prismic repository.
type PrismicSource struct {
	client    *prismic.Client
	postType  string
	pageSize  int
	pathsSize int
	ordering  string
}

// NewPrismicSource builds a source for cfg's post type on client.
func NewPrismicSource(client *prismic.Client, cfg SiteConfig) *PrismicSource {
	cfg.setDefaults()
	return &PrismicSource{
		client:    client,
		postType:  cfg.PostType,
		pageSize:  cfg.PageSize,
		pathsSize: cfg.PathsPageSize,
		ordering:  cfg.PostOrdering,
	}
}

var _ ContentSource = (*PrismicSource)(nil)

type summaryData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
}

type detailData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Banner   struct {
		URL string `json:"url"`
	} `json:"banner"`
	Content []contentData `json:"content"`
}

type contentData struct {
	Heading *string       `json:"heading"`
	Body    richtext.Text `json:"body"`
}

func (s *PrismicSource) listFields() []string {
	return []string{s.postType + ".title", s.postType + ".subtitle", s.postType + ".author"}
}

// FirstPage returns the first page of the home list.
func (s *PrismicSource) FirstPage(ctx context.Context, ref string) (post.Page, error) {
	resp, err := s.client.GetByType(ctx, s.postType, prismic.QueryOptions{
		Ref:       ref,
		PageSize:  s.pageSize,
		Fetch:     s.listFields(),
		Orderings: s.ordering,
	})
	if err != nil {
		return post.Page{}, fmt.Errorf("list %s: %w", s.postType, err)
	}
	return toPage(resp)
}

// FetchPage follows a cursor returned by an earlier page.
func (s *PrismicSource) FetchPage(ctx context.Context, cursor string) (post.Page, error) {
	if !s.OwnsCursor(cursor) {
		return post.Page{}, ErrInvalidCursor
	}
	resp, err := s.client.FetchURL(ctx, cursor)
	if err != nil {
		return post.Page{}, fmt.Errorf("fetch page: %w", err)
	}
	return toPage(resp)
}

// AllPages returns the first page of a listing sized for enumerating every
// post. Callers walk the rest with a post.Paginator.
func (s *PrismicSource) AllPages(ctx context.Context, ref string) (post.Page, error) {
	resp, err := s.client.GetByType(ctx, s.postType, prismic.QueryOptions{
		Ref:       ref,
		PageSize:  s.pathsSize,
		Fetch:     s.listFields(),
		Orderings: s.ordering,
	})
	if err != nil {
		return post.Page{}, fmt.Errorf("list all %s: %w", s.postType, err)
	}
	return toPage(resp)
}

// Post returns the post with the given uid.
func (s *PrismicSource) Post(ctx context.Context, uid, ref string) (post.Detail, error) {
	doc, err := s.client.GetByUID(ctx, s.postType, uid, prismic.QueryOptions{Ref: ref})
	if err != nil {
		return post.Detail{}, err
	}
	return toDetail(doc)
}

// PostUIDByID resolves a document id, as sent by preview links, to a uid.
func (s *PrismicSource) PostUIDByID(ctx context.Context, id, ref string) (string, error) {
	doc, err := s.client.GetByID(ctx, id, prismic.QueryOptions{Ref: ref})
	if err != nil {
		return "", err
	}
	if doc.Type != s.postType || doc.UID == "" {
		return "", ErrNotFound
	}
	return doc.UID, nil
}

// OwnsCursor reports whether cursor points at the configured repository.
func (s *PrismicSource) OwnsCursor(cursor string) bool {
	return cursor != "" && s.client.OwnsURL(cursor)
}

func toPage(resp prismic.Response) (post.Page, error) {
	results := make([]post.Summary, 0, len(resp.Results))
	for _, doc := range resp.Results {
		var data summaryData
		if err := doc.DecodeData(&data); err != nil {
			return post.Page{}, fmt.Errorf("decode %s: %w", doc.ID, err)
		}
		results = append(results, post.Summary{
			UID:                  doc.UID,
			FirstPublicationDate: parseDate(doc.FirstPublicationDate),
			Title:                data.Title,
			Subtitle:             data.Subtitle,
			Author:               data.Author,
		})
	}
	return post.Page{Results: results, NextPage: prismic.RedactToken(resp.Next())}, nil
}

func toDetail(doc prismic.Document) (post.Detail, error) {
	var data detailData
	if err := doc.DecodeData(&data); err != nil {
		return post.Detail{}, fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	d := post.Detail{
		UID:                  doc.UID,
		FirstPublicationDate: parseDate(doc.FirstPublicationDate),
		LastPublicationDate:  parseDate(doc.LastPublicationDate),
		Title:                data.Title,
		Subtitle:             data.Subtitle,
		Author:               data.Author,
		BannerURL:            data.Banner.URL,
	}
	if data.Content != nil {
		d.Content = make([]post.ContentBlock, len(data.Content))
		for i, c := range data.Content {
			d.Content[i] = post.ContentBlock{Heading: c.Heading, Body: c.Body}
		}
	}
	return d, nil
}

func parseDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	return post.ParseTimestamp(*raw)
}
