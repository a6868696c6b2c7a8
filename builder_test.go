package spacetraveling

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildWritesSite(t *testing.T) {
	a := newTestApp(t, newFakeSource(5, 2), SiteConfig{})
	dir := t.TempDir()

	report, err := a.Build(context.Background(), dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if report.Posts != 5 {
		t.Errorf("Posts = %d, want 5", report.Posts)
	}

	for _, name := range []string{
		"index.html",
		"post/post-1/index.html",
		"post/post-5/index.html",
		"sitemap.xml",
		"feed.xml",
		"404.html",
		"public/styles.css",
		"public/loadmore.js",
		"public/logo.svg",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	home, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(home), "posts=post-1,post-2 ") {
		t.Errorf("home lists the first page only: %s", home)
	}
	if !strings.Contains(string(home), "endpoint= ") {
		t.Errorf("static home should have no load-more endpoint: %s", home)
	}

	page, err := os.ReadFile(filepath.Join(dir, "post", "post-3", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "uid=post-3 date=13 Mar 2021 minutes=1") {
		t.Errorf("unexpected post page: %s", page)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "post"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("post dirs = %d, want 5", len(entries))
	}
}

func TestBuildStopsOnSourceError(t *testing.T) {
	src := newFakeSource(3, 2)
	src.failNext = errors.New("cms down")
	a := newTestApp(t, src, SiteConfig{})

	if _, err := a.Build(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildHonoursCancel(t *testing.T) {
	a := newTestApp(t, newFakeSource(3, 2), SiteConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Build(ctx, t.TempDir()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
