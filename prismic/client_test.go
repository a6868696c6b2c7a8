package prismic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeRepo serves a minimal Prismic API under /api/v2.
type fakeRepo struct {
	t          *testing.T
	rootHits   atomic.Int32
	searches   atomic.Int32
	lastQuery  atomic.Value
	rootStatus int
	srv        *httptest.Server
}

func newFakeRepo(t *testing.T) *fakeRepo {
	t.Helper()
	r := &fakeRepo{t: t}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, req *http.Request) {
		r.rootHits.Add(1)
		if r.rootStatus != 0 {
			w.WriteHeader(r.rootStatus)
			return
		}
		fmt.Fprint(w, `{"refs":[{"id":"master","ref":"REF1","label":"Master","isMasterRef":true}]}`)
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, req *http.Request) {
		r.searches.Add(1)
		r.lastQuery.Store(req.URL.RawQuery)
		q := req.URL.Query()
		if q.Get("ref") == "" {
			http.Error(w, "missing ref", http.StatusBadRequest)
			return
		}
		switch {
		case strings.Contains(q.Get("q"), `my.posts.uid,"missing"`):
			fmt.Fprint(w, `{"page":1,"results":[],"next_page":null}`)
		case strings.Contains(q.Get("q"), "my.posts.uid"):
			fmt.Fprint(w, `{"page":1,"results":[{"id":"X1","uid":"hello","type":"posts","first_publication_date":"2021-03-15T19:25:28+0000","data":{"title":"Hello"}}],"next_page":null}`)
		case q.Get("page") == "2":
			fmt.Fprint(w, `{"page":2,"results":[{"id":"X3","uid":"third","type":"posts","data":{}}],"next_page":null}`)
		default:
			next := r.srv.URL + "/api/v2/documents/search?ref=REF1&page=2&pageSize=2"
			fmt.Fprintf(w, `{"page":1,"results_per_page":2,"results":[{"id":"X1","uid":"first","type":"posts","data":{}},{"id":"X2","uid":"second","type":"posts","data":{}}],"next_page":%q}`, next)
		}
	})
	r.srv = httptest.NewServer(mux)
	t.Cleanup(r.srv.Close)
	return r
}

func (r *fakeRepo) client(token string) *Client {
	c, err := NewClient(Config{
		Endpoint:    r.srv.URL + "/api/v2",
		AccessToken: token,
		Timeout:     2 * time.Second,
		MaxRetries:  1,
	})
	if err != nil {
		r.t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClientValidatesEndpoint(t *testing.T) {
	for _, ep := range []string{"", "not a url", "ftp://x/api/v2", "/relative"} {
		if _, err := NewClient(Config{Endpoint: ep}); err == nil {
			t.Errorf("NewClient(%q) should fail", ep)
		}
	}
}

func TestMasterRefIsReused(t *testing.T) {
	repo := newFakeRepo(t)
	c := repo.client("")
	for i := 0; i < 3; i++ {
		ref, err := c.MasterRef(context.Background())
		if err != nil {
			t.Fatalf("MasterRef failed: %v", err)
		}
		if ref != "REF1" {
			t.Errorf("ref = %q, want REF1", ref)
		}
	}
	if got := repo.rootHits.Load(); got != 1 {
		t.Errorf("root hits = %d, want 1", got)
	}
}

func TestGetByTypeBuildsQuery(t *testing.T) {
	repo := newFakeRepo(t)
	c := repo.client("secret")

	resp, err := c.GetByType(context.Background(), "posts", QueryOptions{
		PageSize: 2,
		Fetch:    []string{"posts.title", "posts.subtitle", "posts.author"},
	})
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[0].UID != "first" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
	if resp.Next() == "" {
		t.Error("expected a next page")
	}

	raw, _ := repo.lastQuery.Load().(string)
	for _, want := range []string{"pageSize=2", "access_token=secret", "ref=REF1", "fetch=posts.title%2Cposts.subtitle%2Cposts.author"} {
		if !strings.Contains(raw, want) {
			t.Errorf("query %q missing %q", raw, want)
		}
	}
}

func TestFetchURLFollowsNextPage(t *testing.T) {
	repo := newFakeRepo(t)
	c := repo.client("secret")

	first, err := c.GetByType(context.Background(), "posts", QueryOptions{PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.FetchURL(context.Background(), first.Next())
	if err != nil {
		t.Fatalf("FetchURL failed: %v", err)
	}
	if len(second.Results) != 1 || second.Results[0].UID != "third" {
		t.Fatalf("unexpected results: %+v", second.Results)
	}
	if second.Next() != "" {
		t.Errorf("Next = %q, want empty", second.Next())
	}
	raw, _ := repo.lastQuery.Load().(string)
	if !strings.Contains(raw, "access_token=secret") {
		t.Errorf("token not added to page url: %q", raw)
	}
}

func TestOwnsURL(t *testing.T) {
	repo := newFakeRepo(t)
	c := repo.client("")
	base := repo.srv.URL
	tests := []struct {
		url  string
		want bool
	}{
		{base + "/api/v2", true},
		{base + "/api/v2/documents/search?page=2", true},
		{base + "/api/v2evil/documents/search", false},
		{base + "/api", false},
		{"http://evil.example.com/api/v2/documents/search", false},
		{strings.Replace(base, "http://", "https://", 1) + "/api/v2/documents/search", false},
		{"::", false},
	}
	for _, tt := range tests {
		if got := c.OwnsURL(tt.url); got != tt.want {
			t.Errorf("OwnsURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFetchURLRejectsForeignHost(t *testing.T) {
	repo := newFakeRepo(t)
	c := repo.client("")
	_, err := c.FetchURL(context.Background(), "http://evil.example.com/api/v2/documents/search?page=2")
	if !errors.Is(err, ErrForeignURL) {
		t.Errorf("err = %v, want ErrForeignURL", err)
	}
	if repo.searches.Load() != 0 {
		t.Error("foreign url should not be requested")
	}
}

func TestGetByUID(t *testing.T) {
	repo := newFakeRepo(t)
	c := repo.client("")

	doc, err := c.GetByUID(context.Background(), "posts", "hello", QueryOptions{})
	if err != nil {
		t.Fatalf("GetByUID failed: %v", err)
	}
	if doc.UID != "hello" || doc.FirstPublicationDate == nil {
		t.Fatalf("unexpected document: %+v", doc)
	}
	var data struct {
		Title string `json:"title"`
	}
	if err := doc.DecodeData(&data); err != nil {
		t.Fatal(err)
	}
	if data.Title != "Hello" {
		t.Errorf("title = %q, want Hello", data.Title)
	}

	if _, err := c.GetByUID(context.Background(), "posts", "missing", QueryOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestQueryUsesExplicitRef(t *testing.T) {
	repo := newFakeRepo(t)
	c := repo.client("")
	if _, err := c.GetByType(context.Background(), "posts", QueryOptions{Ref: "PREVIEW"}); err != nil {
		t.Fatal(err)
	}
	if repo.rootHits.Load() != 0 {
		t.Error("explicit ref should skip the api root request")
	}
	raw, _ := repo.lastQuery.Load().(string)
	if !strings.Contains(raw, "ref=PREVIEW") {
		t.Errorf("query %q missing preview ref", raw)
	}
}

func TestAPIErrorStatus(t *testing.T) {
	repo := newFakeRepo(t)
	repo.rootStatus = http.StatusUnauthorized
	c := repo.client("")
	_, err := c.MasterRef(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
}

func TestPredicates(t *testing.T) {
	if got := At("document.type", "posts"); got != `[at(document.type,"posts")]` {
		t.Errorf("At = %s", got)
	}
	if got := At("my.posts.uid", `say "hi"`); got != `[at(my.posts.uid,"say \"hi\"")]` {
		t.Errorf("At = %s", got)
	}
}

func TestRedactToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"https://repo.cdn.prismic.io/api/v2/documents/search?page=2&ref=R", "https://repo.cdn.prismic.io/api/v2/documents/search?page=2&ref=R"},
		{"https://repo.cdn.prismic.io/api/v2/documents/search?access_token=tok&page=2&ref=R", "https://repo.cdn.prismic.io/api/v2/documents/search?page=2&ref=R"},
	}
	for _, tt := range tests {
		if got := RedactToken(tt.in); got != tt.want {
			t.Errorf("RedactToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
