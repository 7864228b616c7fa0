package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const articlePrefix = "https://news.example.com/article/"

func listingServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestArticleLinksStructured(t *testing.T) {
	t.Parallel()

	server := listingServer(t, `<html><body>
	<div class="slotView"><a href="`+articlePrefix+`abc1">One</a></div>
	<div class="slotView"><a href="`+articlePrefix+`abc2">Two</a></div>
	<div class="slotView"><a href="`+articlePrefix+`abc1">Repeat</a></div>
	<div class="slotView"><a href="https://news.example.com/category/9">Not an article</a></div>
	<a href="`+articlePrefix+`outside">Outside the container</a>
	</body></html>`)

	e := NewLinkExtractor(server.Client(), server.URL, articlePrefix, "", nil)
	links := e.ArticleLinks(context.Background())

	want := []string{articlePrefix + "abc1", articlePrefix + "abc2"}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %v", len(want), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("link %d = %s, want %s", i, links[i], want[i])
		}
	}
}

func TestArticleLinksRegexFallback(t *testing.T) {
	t.Parallel()

	// No listing container at all; the raw scan still finds article URLs.
	server := listingServer(t, `<html><body>
	<script>var next = "`+articlePrefix+`xyz9";</script>
	<a class="other" href="`+articlePrefix+`xyz8">plain</a>
	</body></html>`)

	e := NewLinkExtractor(server.Client(), server.URL, articlePrefix, "", nil)
	links := e.ArticleLinks(context.Background())

	if len(links) != 2 {
		t.Fatalf("expected 2 links from regex fallback, got %v", links)
	}
}

func TestArticleLinksFetchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e := NewLinkExtractor(server.Client(), server.URL, articlePrefix, "", nil)
	links := e.ArticleLinks(context.Background())

	if links == nil || len(links) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", links)
	}
}
