package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

const detailJSON = `{"id":"D1","uid":"como-utilizar-hooks","type":"posts",
"first_publication_date":"2021-03-15T19:25:28+0000",
"last_publication_date":"2021-03-25T19:27:35+0000",
"data":{"title":"Como utilizar Hooks","subtitle":"Pensando em sincronização","author":"Joseph Oliveira",
"banner":{"url":"https://images.prismic.io/banner.png"},
"content":[
 {"heading":"Proin et varius","body":[{"type":"paragraph","text":"one two three four five","spans":[]}]},
 {"heading":null,"body":[{"type":"paragraph","text":"six seven","spans":[]}]}
]}}`

// newFakePrismic serves a repository with three posts listed two per page.
func newFakePrismic(t *testing.T) *httptest.Server {
	t.Helper()
	return newPrivateFakePrismic(t, "")
}

// newPrivateFakePrismic is newFakePrismic for a repository that requires
// token on every search, echoing it in next_page as Prismic does.
func newPrivateFakePrismic(t *testing.T, token string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"refs":[{"id":"master","ref":"MASTER","isMasterRef":true}]}`)
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if token != "" && q.Get("access_token") != token {
			http.Error(w, "invalid access token", http.StatusUnauthorized)
			return
		}
		pred := q.Get("q")
		switch {
		case strings.Contains(pred, `my.posts.uid,"como-utilizar-hooks"`), strings.Contains(pred, `document.id,"D1"`):
			fmt.Fprintf(w, `{"page":1,"results":[%s],"next_page":null}`, detailJSON)
		case strings.Contains(pred, "my.posts.uid"), strings.Contains(pred, "document.id"):
			fmt.Fprint(w, `{"page":1,"results":[],"next_page":null}`)
		case q.Get("page") == "2":
			fmt.Fprint(w, `{"page":2,"results":[{"id":"D3","uid":"third","type":"posts","first_publication_date":"2021-03-01T10:00:00+0000","data":{"title":"Third","subtitle":"s3","author":"C"}}],"next_page":null}`)
		default:
			next := srv.URL + "/api/v2/documents/search?ref=" + q.Get("ref") + "&page=2&pageSize=" + q.Get("pageSize")
			if token != "" {
				next += "&access_token=" + token
			}
			fmt.Fprintf(w, `{"page":1,"results":[
{"id":"D1","uid":"first","type":"posts","first_publication_date":"2021-03-15T19:25:28+0000","data":{"title":"First","subtitle":"s1","author":"A"}},
{"id":"D2","uid":"second","type":"posts","first_publication_date":"not a date","data":{"title":"Second","subtitle":"s2","author":"B"}}
],"next_page":%q}`, next)
		}
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestPrismicSource(t *testing.T, srv *httptest.Server) *PrismicSource {
	t.Helper()
	return newTokenPrismicSource(t, srv, "")
}

func newTokenPrismicSource(t *testing.T, srv *httptest.Server, token string) *PrismicSource {
	t.Helper()
	client, err := prismic.NewClient(prismic.Config{
		Endpoint:    srv.URL + "/api/v2",
		AccessToken: token,
		Timeout:     2 * time.Second,
		MaxRetries:  1,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return NewPrismicSource(client, SiteConfig{PageSize: 2})
}

func TestPrismicSourceFirstPage(t *testing.T) {
	src := newTestPrismicSource(t, newFakePrismic(t))

	page, err := src.FirstPage(context.Background(), "")
	if err != nil {
		t.Fatalf("FirstPage failed: %v", err)
	}
	if len(page.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(page.Results))
	}
	first := page.Results[0]
	if first.UID != "first" || first.Title != "First" || first.Subtitle != "s1" || first.Author != "A" {
		t.Errorf("unexpected summary: %+v", first)
	}
	if first.FirstPublicationDate == nil || first.FirstPublicationDate.Day() != 15 {
		t.Errorf("expected parsed publication date, got %v", first.FirstPublicationDate)
	}
	if page.Results[1].FirstPublicationDate != nil {
		t.Errorf("invalid date should map to nil, got %v", page.Results[1].FirstPublicationDate)
	}
	if page.NextPage == "" {
		t.Fatal("expected a next page cursor")
	}
	if !src.OwnsCursor(page.NextPage) {
		t.Errorf("source should own its own cursor %q", page.NextPage)
	}
}

func TestPrismicSourceFetchPage(t *testing.T) {
	src := newTestPrismicSource(t, newFakePrismic(t))
	ctx := context.Background()

	page, err := src.FirstPage(ctx, "")
	if err != nil {
		t.Fatalf("FirstPage failed: %v", err)
	}
	next, err := src.FetchPage(ctx, page.NextPage)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(next.Results) != 1 || next.Results[0].UID != "third" {
		t.Errorf("unexpected second page: %+v", next.Results)
	}
	if next.NextPage != "" {
		t.Errorf("last page should have no cursor, got %q", next.NextPage)
	}
}

func TestPrismicSourceCursorHidesAccessToken(t *testing.T) {
	src := newTokenPrismicSource(t, newPrivateFakePrismic(t, "s3cret"), "s3cret")
	ctx := context.Background()

	page, err := src.FirstPage(ctx, "")
	if err != nil {
		t.Fatalf("FirstPage failed: %v", err)
	}
	if page.NextPage == "" {
		t.Fatal("expected a next page cursor")
	}
	if strings.Contains(page.NextPage, "s3cret") || strings.Contains(page.NextPage, "access_token") {
		t.Errorf("cursor leaks the access token: %q", page.NextPage)
	}
	next, err := src.FetchPage(ctx, page.NextPage)
	if err != nil {
		t.Fatalf("FetchPage with a redacted cursor failed: %v", err)
	}
	if len(next.Results) != 1 || next.Results[0].UID != "third" {
		t.Errorf("unexpected second page: %+v", next.Results)
	}
}

func TestPrismicSourceRejectsForeignCursor(t *testing.T) {
	src := newTestPrismicSource(t, newFakePrismic(t))

	for _, cursor := range []string{"", "https://evil.example.com/api/v2/documents/search?page=2", "::"} {
		if src.OwnsCursor(cursor) {
			t.Errorf("OwnsCursor(%q) = true", cursor)
		}
		if _, err := src.FetchPage(context.Background(), cursor); !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("FetchPage(%q) error = %v, want ErrInvalidCursor", cursor, err)
		}
	}
}

func TestPrismicSourcePost(t *testing.T) {
	src := newTestPrismicSource(t, newFakePrismic(t))

	d, err := src.Post(context.Background(), "como-utilizar-hooks", "")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if d.Title != "Como utilizar Hooks" || d.Author != "Joseph Oliveira" {
		t.Errorf("unexpected detail: %+v", d)
	}
	if d.BannerURL != "https://images.prismic.io/banner.png" {
		t.Errorf("BannerURL = %q", d.BannerURL)
	}
	if d.LastPublicationDate == nil || d.LastPublicationDate.Day() != 25 {
		t.Errorf("unexpected last publication date: %v", d.LastPublicationDate)
	}
	if len(d.Content) != 2 {
		t.Fatalf("expected 2 content blocks, got %d", len(d.Content))
	}
	if d.Content[0].HeadingText() != "Proin et varius" {
		t.Errorf("heading = %q", d.Content[0].HeadingText())
	}
	if d.Content[1].Heading != nil {
		t.Errorf("null heading should stay nil")
	}
	if richtext.AsText(d.Content[1].Body) != "six seven" {
		t.Errorf("body = %q", richtext.AsText(d.Content[1].Body))
	}
}

func TestPrismicSourcePostNotFound(t *testing.T) {
	src := newTestPrismicSource(t, newFakePrismic(t))

	_, err := src.Post(context.Background(), "missing", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPrismicSourcePostUIDByID(t *testing.T) {
	src := newTestPrismicSource(t, newFakePrismic(t))
	ctx := context.Background()

	uid, err := src.PostUIDByID(ctx, "D1", "PREVIEW")
	if err != nil {
		t.Fatalf("PostUIDByID failed: %v", err)
	}
	if uid != "como-utilizar-hooks" {
		t.Errorf("uid = %q", uid)
	}
	if _, err := src.PostUIDByID(ctx, "nope", "PREVIEW"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToDetailWithoutContent(t *testing.T) {
	d, err := toDetail(prismic.Document{ID: "X", UID: "x", Data: []byte(`{"title":"T"}`)})
	if err != nil {
		t.Fatalf("toDetail failed: %v", err)
	}
	if d.Content != nil {
		t.Errorf("missing content should map to nil, got %+v", d.Content)
	}
}
