// Package spacetraveling renders a blog whose posts live in a Prismic
// repository: a home page that lists posts a few at a time with a "load
// more" control, and one page per post with its estimated reading time.
//
// Pages are either served by an Echo server that caches what it fetches, or
// written once to a directory by Build. Templates are supplied by the
// caller through ViewFuncs.
package spacetraveling

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/prismic"
)

// ViewFuncs holds the templ components the framework calls when rendering
// pages. The caller owns every template.
type ViewFuncs struct {
	Home        func(cfg SiteConfig, page HomePage) templ.Component
	PostList    func(cfg SiteConfig, page HomePage) templ.Component
	Post        func(cfg SiteConfig, page PostPage) templ.Component
	NotFound    func(cfg SiteConfig) templ.Component
	ServerError func(cfg SiteConfig) templ.Component
}

// App wires together the content source, cache, handlers, middleware and
// the caller's templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Source ContentSource
	Cache  *PostCache
	Views  ViewFuncs
	Logger *slog.Logger

	listDates         post.DateFormatter
	postDates         post.DateFormatter
	loadMoreLimiter   *RateLimiter
	revalidateLimiter *RateLimiter
	customRoutes      []func(*App)
	staticDir         string

	setupOnce sync.Once
	setupErr  error
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Logger:    slog.Default(),
		listDates: post.NewDateFormatter(post.ListLayout, cfg.Locale),
		postDates: post.NewDateFormatter(post.DetailLayout, cfg.Locale),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup builds the content source and cache and registers middleware and
// routes. It runs once; Start and Build call it.
func (a *App) Setup() error {
	a.setupOnce.Do(func() {
		a.setupErr = a.setup()
	})
	return a.setupErr
}

func (a *App) setup() error {
	if a.Source == nil {
		if a.Config.CMSEndpoint == "" {
			return fmt.Errorf("spacetraveling: CMSEndpoint is required")
		}
		client, err := prismic.NewClient(prismic.Config{
			Endpoint:    a.Config.CMSEndpoint,
			AccessToken: a.Config.CMSAccessToken,
			Logger:      a.Logger,
		})
		if err != nil {
			return fmt.Errorf("spacetraveling: init cms client: %w", err)
		}
		a.Source = NewPrismicSource(client, a.Config)
	}

	a.Cache = NewPostCache(a.Source, a.Config.PostCacheTTL, a.Config.PostCacheSize, a.listDates)
	a.loadMoreLimiter = NewRateLimiter(a.Config.LoadMoreLimit, time.Minute)
	a.revalidateLimiter = NewRateLimiter(revalidateLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("starting server", "addr", a.Config.Addr, "cms", a.Config.CMSEndpoint)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully, waiting at most ShutdownTimeout.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.ShutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/styles.css", a.handleAsset("styles.css"))
	e.GET("/public/loadmore.js", a.handleAsset("loadmore.js"))
	e.GET("/public/logo.svg", a.handleAsset("logo.svg"))
	e.GET("/favicon.svg", a.handleAsset("logo.svg"))

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/_health", handleHealth)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/", a.handleLoadMore)
	e.GET("/post/:slug/", a.handlePost)

	if a.previewEnabled() {
		e.GET("/api/preview/", a.handlePreview)
		e.GET("/api/exit-preview/", handleExitPreview)
	}

	if a.Config.RevalidateSecret != "" {
		e.POST(revalidatePath, a.handleRevalidate)
	}

	if a.Config.MetricsEnabled {
		e.GET("/metrics", metricsHandler())
	}
}

// Close releases background resources.
func (a *App) Close() error {
	if a.loadMoreLimiter != nil {
		a.loadMoreLimiter.Stop()
	}
	if a.revalidateLimiter != nil {
		a.revalidateLimiter.Stop()
	}
	return nil
}
