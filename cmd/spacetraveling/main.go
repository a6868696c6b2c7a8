// Command spacetraveling serves the blog or builds it to a directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "spacetraveling",
		Usage:   "blog rendered from a Prismic repository",
		Version: version,
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "prismic-endpoint",
			Usage:   "Prismic API endpoint, e.g. https://repo.cdn.prismic.io/api/v2",
			EnvVars: []string{"PRISMIC_API_ENDPOINT", "PRISMIC_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "prismic-access-token",
			Usage:   "access token for private Prismic repositories",
			EnvVars: []string{"PRISMIC_ACCESS_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "site-name",
			Value:   "spacetraveling",
			EnvVars: []string{"SITE_NAME"},
		},
		&cli.StringFlag{
			Name:    "site-url",
			Usage:   "canonical URL used in feeds, sitemaps and meta tags",
			Value:   "http://localhost:3000",
			EnvVars: []string{"SITE_URL"},
		},
		&cli.StringFlag{
			Name:    "site-description",
			EnvVars: []string{"SITE_DESCRIPTION"},
		},
		&cli.StringFlag{
			Name:    "locale",
			Usage:   "locale for publication dates",
			Value:   "pt_BR",
			EnvVars: []string{"SITE_LOCALE"},
		},
		&cli.IntFlag{
			Name:    "page-size",
			Usage:   "posts per page on the home list",
			Value:   3,
			EnvVars: []string{"PAGE_SIZE"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		serveCmd,
		buildCmd,
	}

	return app.Run(args)
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "serve the blog over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "address to listen on",
			Value:   ":3000",
			EnvVars: []string{"ADDR"},
		},
		&cli.StringFlag{
			Name:    "session-secret",
			Usage:   "cookie secret; enables Prismic preview mode when set",
			EnvVars: []string{"SESSION_SECRET"},
		},
		&cli.StringFlag{
			Name:    "revalidate-secret",
			Usage:   "secret of the Prismic publish webhook; enables POST /api/revalidate",
			EnvVars: []string{"PRISMIC_WEBHOOK_SECRET"},
		},
		&cli.BoolFlag{
			Name:    "cookie-secure",
			EnvVars: []string{"COOKIE_SECURE"},
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Usage:   "how long fetched pages stay cached",
			Value:   5 * time.Minute,
			EnvVars: []string{"CACHE_TTL"},
		},
		&cli.BoolFlag{
			Name:    "metrics",
			Usage:   "expose Prometheus metrics on /metrics",
			EnvVars: []string{"METRICS_ENABLED"},
		},
		&cli.StringFlag{
			Name:    "static-dir",
			Usage:   "directory of extra assets served under /public",
			Value:   "public",
			EnvVars: []string{"STATIC_DIR"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := newLogger(cctx.String("log-level"))
		if err != nil {
			return err
		}
		cfg := siteConfig(cctx)
		cfg.Addr = cctx.String("addr")
		cfg.SessionSecret = cctx.String("session-secret")
		cfg.CookieSecure = cctx.Bool("cookie-secure")
		cfg.RevalidateSecret = cctx.String("revalidate-secret")
		cfg.PostCacheTTL = cctx.Duration("cache-ttl")
		cfg.MetricsEnabled = cctx.Bool("metrics")

		app := spacetraveling.New(cfg, views.Default(),
			spacetraveling.WithLogger(logger),
			spacetraveling.WithStaticDir(cctx.String("static-dir")),
		)
		defer app.Close()

		ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			errc <- app.Start()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			if err := app.Shutdown(context.Background()); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errc
		}
	},
}

var buildCmd = &cli.Command{
	Name:  "build",
	Usage: "write the whole site to a directory",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "output directory",
			Value:   "dist",
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := newLogger(cctx.String("log-level"))
		if err != nil {
			return err
		}
		app := spacetraveling.New(siteConfig(cctx), views.Default(), spacetraveling.WithLogger(logger))
		defer app.Close()

		ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := app.Build(ctx, cctx.String("out"))
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "wrote %d files (%d posts) to %s\n", report.Files, report.Posts, report.Dir)
		return nil
	},
}

func siteConfig(cctx *cli.Context) spacetraveling.SiteConfig {
	return spacetraveling.SiteConfig{
		Name:           cctx.String("site-name"),
		URL:            cctx.String("site-url"),
		Description:    cctx.String("site-description"),
		Locale:         cctx.String("locale"),
		CMSEndpoint:    cctx.String("prismic-endpoint"),
		CMSAccessToken: cctx.String("prismic-access-token"),
		PageSize:       cctx.Int("page-size"),
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.New("invalid log level: " + level)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger, nil
}
