package spacetraveling

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/post"
)

// BuildReport summarises a static build.
type BuildReport struct {
	Dir   string
	Posts int
	Files int
}

// walkPosts walks every page of the post listing and returns the
// summaries in listing order. Each page's dates are formatted once, as it
// is fetched.
func walkPosts(ctx context.Context, src ContentSource, dates post.DateFormatter) ([]post.Summary, error) {
	first, err := src.AllPages(ctx, "")
	if err != nil {
		return nil, err
	}
	p := post.NewPaginator(src, first, dates)
	for p.HasMore() {
		if _, err := p.LoadMore(ctx); err != nil {
			return nil, err
		}
	}
	return p.Posts(), nil
}

// Build writes the whole site to dir: the home page, one page per post,
// the sitemap, the RSS feed and the embedded assets.
func (a *App) Build(ctx context.Context, dir string) (BuildReport, error) {
	if err := a.Setup(); err != nil {
		return BuildReport{}, err
	}
	report := BuildReport{Dir: dir}
	log := a.Logger.With("subsystem", "build", "dir", dir)

	first, err := a.Source.FirstPage(ctx, "")
	if err != nil {
		return report, fmt.Errorf("build home: %w", err)
	}
	home := post.NewPaginator(a.Source, first, a.listDates)
	if err := a.writeFile(ctx, &report, filepath.Join(dir, "index.html"), a.Views.Home(a.Config, HomePage{
		Posts:    home.Posts(),
		NextPage: home.Cursor(),
	})); err != nil {
		return report, err
	}

	posts, err := walkPosts(ctx, a.Source, a.listDates)
	if err != nil {
		return report, fmt.Errorf("list posts: %w", err)
	}
	for _, s := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d, err := a.Source.Post(ctx, s.UID, "")
		if err != nil {
			return report, fmt.Errorf("build post %s: %w", s.UID, err)
		}
		page, err := a.postPage(d)
		if err != nil {
			return report, err
		}
		path := filepath.Join(dir, "post", s.UID, "index.html")
		if err := a.writeFile(ctx, &report, path, a.Views.Post(a.Config, page)); err != nil {
			return report, err
		}
		report.Posts++
		log.Debug("wrote post", "uid", s.UID, "reading_time", page.ReadingTime)
	}

	if err := a.writeXML(&report, filepath.Join(dir, "sitemap.xml"), func(w *bufio.Writer) error {
		return a.writeSitemap(w, posts)
	}); err != nil {
		return report, err
	}
	if err := a.writeXML(&report, filepath.Join(dir, "feed.xml"), func(w *bufio.Writer) error {
		return a.writeRSS(w, posts)
	}); err != nil {
		return report, err
	}
	if err := a.writeFile(ctx, &report, filepath.Join(dir, "404.html"), a.Views.NotFound(a.Config)); err != nil {
		return report, err
	}
	if err := a.copyAssets(&report, filepath.Join(dir, "public")); err != nil {
		return report, err
	}

	log.Info("build finished", "posts", report.Posts, "files", report.Files)
	return report, nil
}

func (a *App) writeFile(ctx context.Context, report *BuildReport, path string, cmp templ.Component) error {
	if err := RenderFile(ctx, path, cmp); err != nil {
		return err
	}
	report.Files++
	buildPages.Inc()
	return nil
}

func (a *App) writeXML(report *BuildReport, path string, fn func(w *bufio.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	report.Files++
	return f.Close()
}

func (a *App) copyAssets(report *BuildReport, dir string) error {
	sub, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		return err
	}
	return fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(sub, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, b, 0o644); err != nil {
			return err
		}
		report.Files++
		return nil
	})
}
