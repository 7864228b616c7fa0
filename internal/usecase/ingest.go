package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

// IngestStats summarizes one ingestion batch.
type IngestStats struct {
	Received   int `json:"received"`
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Ingestor persists extracted articles, deduplicating by case-insensitive
// title so re-ingesting the same scrape run is idempotent.
type Ingestor struct {
	articles  ports.ArticleRepository
	sourceTag string
	logger    *slog.Logger
}

// NewIngestor wires the article repository with the configured source tag.
func NewIngestor(articles ports.ArticleRepository, sourceTag string, logger *slog.Logger) *Ingestor {
	return &Ingestor{articles: articles, sourceTag: sourceTag, logger: logger}
}

// Ingest stores every new article with status PENDING and returns the new
// ids. A per-item failure increments Errors and never aborts the batch.
func (i *Ingestor) Ingest(ctx context.Context, items []domain.ExtractedArticle) (IngestStats, []string) {
	stats := IngestStats{Received: len(items)}
	ids := []string{}

	for _, item := range items {
		_, err := i.articles.FindByTitle(ctx, item.Title)
		if err == nil {
			stats.Duplicates++
			if i.logger != nil {
				i.logger.Info("duplicate article skipped", "title", item.Title)
			}
			continue
		}
		if !errors.Is(err, ports.ErrNotFound) {
			stats.Errors++
			i.warn(item.Title, err)
			continue
		}

		saved, err := i.articles.Create(ctx, domain.ScrapedArticle{
			SourceURL:   item.URL,
			Source:      i.sourceTag,
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			RawData:     encodeRawData(item),
			Status:      domain.StatusPending,
		})
		if err != nil {
			stats.Errors++
			i.warn(item.Title, err)
			continue
		}

		stats.Saved++
		ids = append(ids, saved.ID)
	}

	return stats, ids
}

func (i *Ingestor) warn(title string, err error) {
	if i.logger != nil {
		i.logger.Warn("ingest article failed", "title", title, "error", err)
	}
}

// encodeRawData serializes the image metadata carried by an extraction, or
// "" when the article has no images at all.
func encodeRawData(item domain.ExtractedArticle) string {
	if item.MainImage.OriginalURL == "" && len(item.ContentImages) == 0 {
		return ""
	}

	raw, err := json.Marshal(domain.RawData{
		MainImage:     item.MainImage,
		ContentImages: item.ContentImages,
	})
	if err != nil {
		return ""
	}
	return string(raw)
}
