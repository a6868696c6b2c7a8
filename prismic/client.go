// Package prismic is a small client for the Prismic REST API v2: repository
// refs, document search by type, lookups by UID or ID, and following the
// next_page links of a search.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignURL is returned when asked to fetch a URL outside the repository.
	ErrForeignURL = errors.New("prismic: url does not belong to the repository")
	// ErrNoMasterRef is returned when the API root lists no master ref.
	ErrNoMasterRef = errors.New("prismic: repository has no master ref")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prismic: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Config holds what a Client needs to reach a repository.
type Config struct {
	Endpoint    string        // e.g. https://my-repo.cdn.prismic.io/api/v2
	AccessToken string        // optional for public repositories
	Timeout     time.Duration // per request (default 10s)
	RefTTL      time.Duration // how long the master ref is reused (default 30s)
	MaxRetries  int           // retries of the API root request (default 3)
	Logger      *slog.Logger
}

// Client talks to one Prismic repository. It is safe for concurrent use.
type Client struct {
	endpoint *url.URL
	token    string
	logger   *slog.Logger

	// docs serves document queries. They are not retried: a failed page
	// load is reported to the caller as is.
	docs *http.Client
	// root serves the API root request, which is idempotent and retried.
	root *http.Client

	refTTL time.Duration
	mu     sync.Mutex
	ref    string
	refAt  time.Time
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("prismic: endpoint is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint must be an absolute http(s) url, got %q", cfg.Endpoint)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RefTTL == 0 {
		cfg.RefTTL = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("subsystem", "prismic")

	docs := cleanhttp.DefaultPooledClient()
	docs.Timeout = cfg.Timeout

	retry := retryablehttp.NewClient()
	retry.HTTPClient = cleanhttp.DefaultPooledClient()
	retry.RetryMax = cfg.MaxRetries
	retry.RetryWaitMin = 200 * time.Millisecond
	retry.RetryWaitMax = 2 * time.Second
	retry.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: logger})
	root := retry.StandardClient()
	root.Timeout = cfg.Timeout

	return &Client{
		endpoint: u,
		token:    cfg.AccessToken,
		logger:   logger,
		docs:     docs,
		root:     root,
		refTTL:   cfg.RefTTL,
	}, nil
}

// leveledSlog adapts slog to retryablehttp's logger. Intermediate request
// failures are logged as warnings since they are retried.
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, keysAndValues ...any) { l.inner.Warn(msg, keysAndValues...) }
func (l leveledSlog) Warn(msg string, keysAndValues ...any)  { l.inner.Warn(msg, keysAndValues...) }
func (l leveledSlog) Info(msg string, keysAndValues ...any)  { l.inner.Debug(msg, keysAndValues...) }
func (l leveledSlog) Debug(msg string, keysAndValues ...any) { l.inner.Debug(msg, keysAndValues...) }

// API fetches the repository root document.
func (c *Client) API(ctx context.Context) (API, error) {
	var api API
	if err := c.getJSON(ctx, c.root, "api", c.withToken(*c.endpoint), &api); err != nil {
		return API{}, err
	}
	return api, nil
}

// MasterRef returns the current master ref, reusing it for RefTTL.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.ref != "" && time.Since(c.refAt) < c.refTTL {
		ref := c.ref
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	api, err := c.API(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch api root: %w", err)
	}
	ref, ok := api.MasterRef()
	if !ok {
		return "", ErrNoMasterRef
	}

	c.mu.Lock()
	c.ref = ref
	c.refAt = time.Now()
	c.mu.Unlock()
	return ref, nil
}

// QueryOptions narrow a documents search.
type QueryOptions struct {
	Ref       string   // content release; the master ref when empty
	PageSize  int      // server default (20) when zero
	Page      int      // 1-based; first page when zero
	Fetch     []string // restrict returned fields, e.g. "posts.title"
	Orderings string   // e.g. "[document.first_publication_date desc]"
	Lang      string
}

// Query runs a documents search for the given predicates.
func (c *Client) Query(ctx context.Context, predicates []string, opts QueryOptions) (Response, error) {
	ref := opts.Ref
	if ref == "" {
		var err error
		if ref, err = c.MasterRef(ctx); err != nil {
			return Response{}, err
		}
	}

	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/documents/search"
	q := url.Values{}
	q.Set("ref", ref)
	if len(predicates) > 0 {
		q.Set("q", "["+strings.Join(predicates, "")+"]")
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if len(opts.Fetch) > 0 {
		q.Set("fetch", strings.Join(opts.Fetch, ","))
	}
	if opts.Orderings != "" {
		q.Set("orderings", opts.Orderings)
	}
	if opts.Lang != "" {
		q.Set("lang", opts.Lang)
	}
	u.RawQuery = q.Encode()

	var resp Response
	if err := c.getJSON(ctx, c.docs, "search", c.withToken(u), &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// GetByType returns the first page of documents of docType.
func (c *Client) GetByType(ctx context.Context, docType string, opts QueryOptions) (Response, error) {
	return c.Query(ctx, []string{At("document.type", docType)}, opts)
}

// GetByUID returns the docType document with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string, opts QueryOptions) (Document, error) {
	opts.PageSize = 1
	resp, err := c.Query(ctx, []string{At("my."+docType+".uid", uid)}, opts)
	if err != nil {
		return Document{}, err
	}
	if len(resp.Results) == 0 {
		return Document{}, ErrNotFound
	}
	return resp.Results[0], nil
}

// GetByID returns the document with the given id.
func (c *Client) GetByID(ctx context.Context, id string, opts QueryOptions) (Document, error) {
	opts.PageSize = 1
	resp, err := c.Query(ctx, []string{At("document.id", id)}, opts)
	if err != nil {
		return Document{}, err
	}
	if len(resp.Results) == 0 {
		return Document{}, ErrNotFound
	}
	return resp.Results[0], nil
}

// FetchURL follows a next_page link returned by a previous search.
func (c *Client) FetchURL(ctx context.Context, rawURL string) (Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Response{}, fmt.Errorf("prismic: parse page url: %w", err)
	}
	if !c.OwnsURL(rawURL) {
		return Response{}, ErrForeignURL
	}
	var resp Response
	if err := c.getJSON(ctx, c.docs, "page", c.withToken(*u), &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// OwnsURL reports whether rawURL points at this client's repository.
func (c *Client) OwnsURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != c.endpoint.Scheme || !strings.EqualFold(u.Host, c.endpoint.Host) {
		return false
	}
	p := strings.TrimRight(c.endpoint.Path, "/")
	return u.Path == p || strings.HasPrefix(u.Path, p+"/")
}

// RedactToken removes the access_token parameter from rawURL, so page
// links can be handed to browsers. FetchURL adds the token back.
func RedactToken(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has("access_token") {
		return rawURL
	}
	q.Del("access_token")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) withToken(u url.URL) string {
	if c.token != "" {
		q := u.Query()
		if q.Get("access_token") == "" {
			q.Set("access_token", c.token)
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, hc *http.Client, op, rawURL string, v any) error {
	start := time.Now()
	status := "error"
	defer func() {
		requestsTotal.WithLabelValues(op, status).Inc()
		requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("prismic: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("prismic: %s request: %w", op, err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound && op != "api" {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("prismic: decode %s response: %w", op, err)
	}
	c.logger.Debug("prismic request", "op", op, "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}
