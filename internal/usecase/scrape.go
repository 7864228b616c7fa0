package usecase

import (
	"context"
	"log/slog"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

// ScrapeRunner walks the source site's listing, extracts up to a limited
// number of articles, and hands them to the ingestor.
type ScrapeRunner struct {
	source   ports.ArticleSource
	ingestor *Ingestor
	limit    int
	logger   *slog.Logger
}

// NewScrapeRunner wires the article source with the ingestor.
func NewScrapeRunner(source ports.ArticleSource, ingestor *Ingestor, limit int, logger *slog.Logger) *ScrapeRunner {
	return &ScrapeRunner{source: source, ingestor: ingestor, limit: limit, logger: logger}
}

// Run scrapes the category listing and ingests whatever extracted cleanly.
// Articles that fail every extraction strategy are skipped, not errors.
func (r *ScrapeRunner) Run(ctx context.Context, limit int) (IngestStats, []string) {
	if limit <= 0 {
		limit = r.limit
	}

	links := r.source.ArticleLinks(ctx)
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}

	if r.logger != nil {
		r.logger.Info("scrape run started", "links", len(links))
	}

	articles := make([]domain.ExtractedArticle, 0, len(links))
	for _, link := range links {
		article := r.source.ExtractArticle(ctx, link)
		if article == nil {
			if r.logger != nil {
				r.logger.Warn("article extraction failed", "url", link)
			}
			continue
		}
		articles = append(articles, *article)
	}

	return r.ingestor.Ingest(ctx, articles)
}
