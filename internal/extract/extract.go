package extract

import (
	"context"
	"log/slog"

	"NewsBridge/internal/domain"
)

// Strategy captures a single extraction approach over a fetched page.
// Strategies are tried in order; the first one that yields a usable
// article wins. Returning (nil, nil) means "nothing found, try the next".
type Strategy interface {
	Name() string
	Extract(ctx context.Context, page Page) (*domain.ExtractedArticle, error)
}

// Page carries the fetched document handed to each strategy.
type Page struct {
	URL  string
	HTML []byte
}

// Chain executes strategies in declaration order until one succeeds.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain builds an ordered strategy chain.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Run returns the first non-nil extraction result, or nil when every
// strategy fails. Individual strategy errors are logged, not propagated:
// partial data from a later strategy beats dropping the article.
func (c *Chain) Run(ctx context.Context, page Page) *domain.ExtractedArticle {
	for _, strategy := range c.strategies {
		article, err := strategy.Extract(ctx, page)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("extraction strategy failed",
					"strategy", strategy.Name(), "url", page.URL, "error", err)
			}
			continue
		}
		if article == nil {
			continue
		}
		if c.logger != nil {
			c.logger.Debug("extraction strategy succeeded",
				"strategy", strategy.Name(), "url", page.URL)
		}
		return article
	}
	return nil
}
