package spacetraveling

import (
	"log/slog"
	"time"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "spacetraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Locale      string // Date locale, monday style (default "pt_BR")

	Addr string // Listen address (default ":3000")

	CMSEndpoint    string // Required: Prismic API endpoint
	CMSAccessToken string // Prismic access token, optional for public repositories
	PostType       string // Custom type of blog posts (default "posts")
	PageSize       int    // Posts per home page load (default 3)
	PathsPageSize  int    // Page size when listing every post (default 100)
	PostOrdering   string // Prismic orderings (default newest first)

	SessionSecret string // Enables preview mode when set
	CookieSecure  bool   // Set true for HTTPS

	RevalidateSecret string // Enables POST /api/revalidate for the CMS publish webhook

	PostCacheTTL    time.Duration // Cached page TTL (default 5min)
	PostCacheSize   int           // Cached post details (default 256)
	LoadMoreLimit   int           // Load-more requests per IP per minute (default 60)
	MetricsEnabled  bool          // Serve /metrics
	ShutdownTimeout time.Duration // Graceful shutdown limit (default 10s)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = "pt_BR"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostType == "" {
		c.PostType = "posts"
	}
	if c.PageSize == 0 {
		c.PageSize = 3
	}
	if c.PathsPageSize == 0 {
		c.PathsPageSize = 100
	}
	if c.PostOrdering == "" {
		c.PostOrdering = "[document.first_publication_date desc]"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.PostCacheSize == 0 {
		c.PostCacheSize = 256
	}
	if c.LoadMoreLimit == 0 {
		c.LoadMoreLimit = 60
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithSource replaces the content source built from the CMS settings.
func WithSource(src ContentSource) Option {
	return func(a *App) {
		a.Source = src
	}
}
