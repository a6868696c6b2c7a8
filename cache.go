package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/spacetraveling/post"
)

// sharedFetchTimeout bounds a fetch made on behalf of several requests.
// Walking every page of the listing is the slowest of them.
const sharedFetchTimeout = time.Minute

// PostCache keeps the published home page, the full post listing and
// recently read posts in memory for a TTL, so pages are generated once and
// then served until they go stale. Preview requests never go through it.
type PostCache struct {
	source ContentSource
	ttl    time.Duration
	dates  post.DateFormatter
	format func([]post.Summary)

	mu         sync.RWMutex
	first      post.Page
	firstAt    time.Time
	hasFirst   bool
	all        []post.Summary
	allAt      time.Time
	hasAll     bool
	generation uint64

	details *expirable.LRU[string, post.Detail]
	group   singleflight.Group
}

// NewPostCache creates a PostCache backed by the given source. Listing
// dates are formatted with dates when a page is fetched.
func NewPostCache(src ContentSource, ttl time.Duration, size int, dates post.DateFormatter) *PostCache {
	return &PostCache{
		source:  src,
		ttl:     ttl,
		dates:   dates,
		format:  dates.FormatPage,
		details: expirable.NewLRU[string, post.Detail](size, nil, ttl),
	}
}

func (c *PostCache) fresh(at time.Time, ok bool) bool {
	return ok && time.Since(at) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.first = post.Page{}
	c.hasFirst = false
	c.all = nil
	c.hasAll = false
	c.generation++
	c.mu.Unlock()
	c.details.Purge()
}

// shared runs fn once for all concurrent callers of key. fn gets a context
// detached from the caller that started it, so one visitor going away does
// not fail the others; each caller still stops waiting on its own ctx.
func (c *PostCache) shared(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return fn(fctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *PostCache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// FirstPage returns the first page of the published post list with its
// dates already formatted.
func (c *PostCache) FirstPage(ctx context.Context) (post.Page, error) {
	c.mu.RLock()
	if c.fresh(c.firstAt, c.hasFirst) {
		page := copyPage(c.first)
		c.mu.RUnlock()
		cacheLookups.WithLabelValues("list", "hit").Inc()
		return page, nil
	}
	c.mu.RUnlock()
	cacheLookups.WithLabelValues("list", "miss").Inc()

	gen := c.currentGeneration()
	v, err := c.shared(ctx, "list", func(ctx context.Context) (any, error) {
		page, err := c.source.FirstPage(ctx, "")
		if err != nil {
			return nil, err
		}
		c.format(page.Results)
		c.mu.Lock()
		if c.generation == gen {
			c.first = page
			c.firstAt = time.Now()
			c.hasFirst = true
		}
		c.mu.Unlock()
		return page, nil
	})
	if err != nil {
		return post.Page{}, err
	}
	return copyPage(v.(post.Page)), nil
}

// AllPosts returns every published post summary in listing order, as
// used by the sitemap and the feed.
func (c *PostCache) AllPosts(ctx context.Context) ([]post.Summary, error) {
	c.mu.RLock()
	if c.fresh(c.allAt, c.hasAll) {
		posts := append([]post.Summary(nil), c.all...)
		c.mu.RUnlock()
		cacheLookups.WithLabelValues("all", "hit").Inc()
		return posts, nil
	}
	c.mu.RUnlock()
	cacheLookups.WithLabelValues("all", "miss").Inc()

	gen := c.currentGeneration()
	v, err := c.shared(ctx, "all", func(ctx context.Context) (any, error) {
		posts, err := walkPosts(ctx, c.source, c.dates)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.generation == gen {
			c.all = posts
			c.allAt = time.Now()
			c.hasAll = true
		}
		c.mu.Unlock()
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]post.Summary(nil), v.([]post.Summary)...), nil
}

// Post returns a published post by uid. Misses are not cached.
func (c *PostCache) Post(ctx context.Context, uid string) (post.Detail, error) {
	if d, ok := c.details.Get(uid); ok {
		cacheLookups.WithLabelValues("post", "hit").Inc()
		return d, nil
	}
	cacheLookups.WithLabelValues("post", "miss").Inc()

	gen := c.currentGeneration()
	v, err := c.shared(ctx, "post:"+uid, func(ctx context.Context) (any, error) {
		d, err := c.source.Post(ctx, uid, "")
		if err != nil {
			return nil, err
		}
		if c.currentGeneration() == gen {
			c.details.Add(uid, d)
		}
		return d, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return post.Detail{}, ErrNotFound
		}
		return post.Detail{}, err
	}
	return v.(post.Detail), nil
}

func copyPage(p post.Page) post.Page {
	return post.Page{
		Results:  append([]post.Summary(nil), p.Results...),
		NextPage: p.NextPage,
	}
}
