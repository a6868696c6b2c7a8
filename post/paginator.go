package post

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLoadInProgress is returned by LoadMore while an earlier call is still fetching.
var ErrLoadInProgress = errors.New("post: load already in progress")

// PageFetcher fetches the page a cursor points to.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (Page, error)
}

// Paginator accumulates pages of summaries on demand. The list only grows
// by appending a whole fetched page; a failed fetch leaves it unchanged.
type Paginator struct {
	fetcher PageFetcher
	dates   DateFormatter

	mu       sync.Mutex
	posts    []Summary
	next     string
	inFlight bool
}

// NewPaginator seeds a Paginator with first. The dates of first are
// formatted here, once.
func NewPaginator(fetcher PageFetcher, first Page, dates DateFormatter) *Paginator {
	posts := make([]Summary, len(first.Results))
	copy(posts, first.Results)
	dates.FormatPage(posts)
	return &Paginator{
		fetcher: fetcher,
		dates:   dates,
		posts:   posts,
		next:    first.NextPage,
	}
}

// LoadMore fetches the next page and appends it, returning the appended
// summaries. Without a cursor it does nothing and returns nil. Only one
// fetch runs at a time; an overlapping call gets ErrLoadInProgress.
func (p *Paginator) LoadMore(ctx context.Context) ([]Summary, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	cursor := p.next
	if cursor == "" {
		p.mu.Unlock()
		return nil, nil
	}
	p.inFlight = true
	p.mu.Unlock()

	page, err := p.fetcher.FetchPage(ctx, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}

	added := make([]Summary, len(page.Results))
	copy(added, page.Results)
	p.dates.FormatPage(added)
	p.posts = append(p.posts, added...)
	p.next = page.NextPage
	return added, nil
}

// Posts returns a copy of the accumulated summaries in fetch order.
func (p *Paginator) Posts() []Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Summary, len(p.posts))
	copy(out, p.posts)
	return out
}

// HasMore reports whether a cursor to another page is held.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next != ""
}

// Cursor returns the cursor of the next page, or "" when there is none.
func (p *Paginator) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}
