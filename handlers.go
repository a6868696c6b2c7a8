package spacetraveling

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/post"
)

const (
	loadMorePath   = "/posts/"
	revalidatePath = "/api/revalidate"

	// webhook calls allowed per IP per minute
	revalidateLimit = 10
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	ref := a.previewRef(c)

	var first post.Page
	var err error
	if ref != "" {
		first, err = a.Source.FirstPage(ctx, ref)
		if err == nil {
			a.listDates.FormatPage(first.Results)
		}
	} else {
		first, err = a.Cache.FirstPage(ctx)
	}
	if err != nil {
		return err
	}

	return Render(c, a.Views.Home(a.Config, HomePage{
		Posts:       first.Results,
		NextPage:    first.NextPage,
		LoadMoreURL: loadMorePath,
		Preview:     ref != "",
	}))
}

// handleLoadMore serves the next page of the home list as an HTML fragment:
// the new entries followed by a fresh "load more" control when more remain.
func (a *App) handleLoadMore(c echo.Context) error {
	if !a.loadMoreLimiter.Allow(c.RealIP()) {
		loadMoreRequests.WithLabelValues("limited").Inc()
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}
	cursor := c.QueryParam("cursor")
	if cursor == "" {
		loadMoreRequests.WithLabelValues("done").Inc()
		return c.NoContent(http.StatusNoContent)
	}
	if !a.Source.OwnsCursor(cursor) {
		loadMoreRequests.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidCursor.Error())
	}

	p := post.NewPaginator(a.Source, post.Page{NextPage: cursor}, a.listDates)
	added, err := p.LoadMore(c.Request().Context())
	if err != nil {
		loadMoreRequests.WithLabelValues("error").Inc()
		a.Logger.Warn("load more failed", "err", err)
		return echo.NewHTTPError(http.StatusBadGateway, "could not load more posts").SetInternal(err)
	}
	loadMoreRequests.WithLabelValues("ok").Inc()

	return Render(c, a.Views.PostList(a.Config, HomePage{
		Posts:       added,
		NextPage:    p.Cursor(),
		LoadMoreURL: loadMorePath,
		Preview:     a.previewRef(c) != "",
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	ref := a.previewRef(c)

	var d post.Detail
	var err error
	if ref != "" {
		d, err = a.Source.Post(ctx, slug, ref)
	} else {
		d, err = a.Cache.Post(ctx, slug)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		}
		return err
	}

	page, err := a.postPage(d)
	if err != nil {
		return err
	}
	page.Preview = ref != ""
	return Render(c, a.Views.Post(a.Config, page))
}

// postPage computes what the detail template shows besides the post itself.
func (a *App) postPage(d post.Detail) (PostPage, error) {
	minutes, err := post.EstimateReadingTime(d.Content)
	if err != nil {
		return PostPage{}, fmt.Errorf("post %s: %w", d.UID, err)
	}
	readingTimeMinutes.Observe(float64(minutes))
	return PostPage{
		Post:        d,
		Date:        a.postDates.Format(d.FirstPublicationDate),
		ReadingTime: minutes,
	}, nil
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeSitemap(c.Response(), posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeRSS(c.Response(), posts)
}

type revalidateRequest struct {
	Secret string `json:"secret"`
	Type   string `json:"type"`
}

// handleRevalidate is the target of the CMS publish webhook. It drops
// everything cached so the next visit reads the published content.
func (a *App) handleRevalidate(c echo.Context) error {
	if !a.revalidateLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}
	var req revalidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	}
	if req.Secret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(a.Config.RevalidateSecret)) != 1 {
		a.Logger.Warn("revalidate rejected", "ip", c.RealIP())
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid secret")
	}
	a.Cache.Invalidate()
	a.Logger.Info("cache invalidated", "type", req.Type)
	return c.JSON(http.StatusOK, map[string]bool{"revalidated": true})
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleAsset(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		b, err := EmbeddedAssets.ReadFile("embedded/" + name)
		if err != nil {
			return echo.ErrNotFound
		}
		return c.Blob(http.StatusOK, assetContentType(name), b)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "err", err, "path", c.Request().URL.Path, "status", code)
		if c.Request().URL.Path == loadMorePath {
			_ = c.String(code, http.StatusText(code))
			return
		}
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
