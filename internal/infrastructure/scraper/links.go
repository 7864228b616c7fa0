package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const listingContainerClass = ".slotView"

// LinkExtractor yields the article URLs listed on a category page. It never
// returns an error: total failure means "nothing new to scrape".
type LinkExtractor struct {
	client        *http.Client
	categoryURL   string
	articlePrefix string
	userAgent     string
	logger        *slog.Logger
}

// NewLinkExtractor wires an HTTP client with the category listing URL.
func NewLinkExtractor(client *http.Client, categoryURL, articlePrefix, userAgent string, logger *slog.Logger) *LinkExtractor {
	return &LinkExtractor{
		client:        client,
		categoryURL:   categoryURL,
		articlePrefix: articlePrefix,
		userAgent:     userAgent,
		logger:        logger,
	}
}

// ArticleLinks fetches the listing page and extracts a deduplicated,
// ordered list of absolute article URLs. A structured query over the
// listing container runs first; a regex scan of the raw HTML is the
// fallback when the structured parse yields nothing.
func (e *LinkExtractor) ArticleLinks(ctx context.Context) []string {
	raw, err := e.fetch(ctx)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("fetch category page", "url", e.categoryURL, "error", err)
		}
		return []string{}
	}

	links := e.structuredLinks(raw)
	if len(links) == 0 {
		links = e.regexLinks(raw)
	}

	return links
}

func (e *LinkExtractor) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.categoryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}

	return raw, nil
}

func (e *LinkExtractor) structuredLinks(raw []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("structured listing parse failed", "error", err)
		}
		return nil
	}

	var links []string
	seen := map[string]struct{}{}

	doc.Find(listingContainerClass + " a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.HasPrefix(href, e.articlePrefix) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})

	return links
}

func (e *LinkExtractor) regexLinks(raw []byte) []string {
	pattern, err := regexp.Compile(regexp.QuoteMeta(e.articlePrefix) + `[^\s"'<>]+`)
	if err != nil {
		return []string{}
	}

	links := []string{}
	seen := map[string]struct{}{}
	for _, match := range pattern.FindAllString(string(raw), -1) {
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		links = append(links, match)
	}

	if e.logger != nil {
		e.logger.Debug("regex listing fallback used", "links", len(links))
	}
	return links
}
