package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"NewsBridge/internal/ports"
)

// BatchItem records one article's outcome inside a batch run.
type BatchItem struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult is the aggregated outcome of one batch run, queryable after
// the triggering request has already returned.
type BatchResult struct {
	Total      int         `json:"total"`
	Success    int         `json:"success"`
	Failed     int         `json:"failed"`
	Running    bool        `json:"running"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
	Items      []BatchItem `json:"articles"`
}

// Orchestrator discovers PENDING articles and drives the processor over
// each, sequentially, in a background task detached from the trigger.
type Orchestrator struct {
	articles  ports.ArticleRepository
	processor *Processor
	delay     time.Duration
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration)

	mu   sync.Mutex
	last *BatchResult
}

// NewOrchestrator wires the repository and processor with the inter-item delay.
func NewOrchestrator(articles ports.ArticleRepository, processor *Processor, delay time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		articles:  articles,
		processor: processor,
		delay:     delay,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

// Trigger snapshots the pending ids and returns their count immediately;
// processing continues in the background. Zero pending means zero work and
// no background task.
func (o *Orchestrator) Trigger(ctx context.Context) (int, error) {
	ids, err := o.articles.PendingIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := &BatchResult{
		Total:     len(ids),
		Running:   true,
		StartedAt: time.Now(),
		Items:     []BatchItem{},
	}
	o.mu.Lock()
	o.last = result
	o.mu.Unlock()

	// The batch must survive the triggering request's cancellation.
	background := context.WithoutCancel(ctx)
	go o.process(background, ids, result)

	return len(ids), nil
}

// LastResult returns a copy of the most recent batch state, if any.
func (o *Orchestrator) LastResult() (BatchResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.last == nil {
		return BatchResult{}, false
	}

	snapshot := *o.last
	snapshot.Items = append([]BatchItem(nil), o.last.Items...)
	return snapshot, true
}

// process runs the snapshot sequentially. Articles are deliberately not
// processed concurrently: pacing bounds load on the source site and the
// LLM API, and keeps slug/default-entity resolution free of races.
func (o *Orchestrator) process(ctx context.Context, ids []string, result *BatchResult) {
	for i, id := range ids {
		if i > 0 {
			o.sleep(ctx, o.delay)
		}

		processed, err := o.processor.Process(ctx, id)

		o.mu.Lock()
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, BatchItem{ID: id, Error: err.Error()})
		} else {
			result.Success++
			result.Items = append(result.Items, BatchItem{ID: id, Success: true, PostID: processed.PostID})
		}
		o.mu.Unlock()

		if err != nil && o.logger != nil {
			o.logger.Warn("batch item failed", "article", id, "error", err)
		}
	}

	now := time.Now()
	o.mu.Lock()
	result.Running = false
	result.FinishedAt = &now
	o.mu.Unlock()

	if o.logger != nil {
		o.logger.Info("batch finished",
			"total", result.Total, "success", result.Success, "failed", result.Failed)
	}
}
