package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"NewsBridge/internal/config"
	"NewsBridge/internal/domain"
	"NewsBridge/internal/extract"
	"NewsBridge/internal/ports"
)

// Scraper implements ports.ArticleSource against the configured source site.
// Article fetches are paced through a rate limiter so consecutive requests
// never hammer the source.
type Scraper struct {
	client  *http.Client
	cfg     config.ScraperConfig
	links   *LinkExtractor
	chain   *extract.Chain
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.ArticleSource = (*Scraper)(nil)

// New wires the link extractor, image fetcher and the strategy chain.
func New(client *http.Client, cfg config.ScraperConfig, logger *slog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	delay := cfg.FetchDelay.Std()
	if delay <= 0 {
		delay = time.Second
	}

	images := NewImageFetcher(client, cfg.ImageDir, cfg.ImagePrefix, cfg.UserAgent, logger)

	chain := extract.NewChain(logger,
		&structuredStrategy{images: images, cdnHost: cfg.CDNHost},
		&readabilityStrategy{},
		&regexStrategy{images: images},
	)

	return &Scraper{
		client:  client,
		cfg:     cfg,
		links:   NewLinkExtractor(client, cfg.CategoryURL, cfg.ArticlePrefix, cfg.UserAgent, logger),
		chain:   chain,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger:  logger,
	}
}

// ArticleLinks lists the article URLs currently on the category page.
func (s *Scraper) ArticleLinks(ctx context.Context) []string {
	return s.links.ArticleLinks(ctx)
}

// ExtractArticle fetches one article page and runs the strategy chain.
// Returns nil when every strategy fails.
func (s *Scraper) ExtractArticle(ctx context.Context, articleURL string) *domain.ExtractedArticle {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil
	}

	raw, err := s.fetch(ctx, articleURL)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("fetch article", "url", articleURL, "error", err)
		}
		return nil
	}

	return s.chain.Run(ctx, extract.Page{URL: articleURL, HTML: raw})
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}

	return raw, nil
}
