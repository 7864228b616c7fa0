package usecase

import (
	"context"
	"log/slog"

	"NewsBridge/internal/ports"
)

// Fanout delivers a new-post event to every registered channel. Channels
// are isolated: one failing delivery never aborts the pipeline or the
// remaining channels.
type Fanout struct {
	notifiers []ports.Notifier
	logger    *slog.Logger
}

// NewFanout registers the outbound channels.
func NewFanout(logger *slog.Logger, notifiers ...ports.Notifier) *Fanout {
	return &Fanout{notifiers: notifiers, logger: logger}
}

// Publish calls every channel in order. Failures are logged and swallowed.
func (f *Fanout) Publish(ctx context.Context, event ports.PostEvent) {
	for _, notifier := range f.notifiers {
		if err := notifier.NotifyNewPost(ctx, event); err != nil {
			if f.logger != nil {
				f.logger.Warn("notification delivery failed",
					"channel", notifier.Name(), "post", event.PostID, "error", err)
			}
			continue
		}
		if f.logger != nil {
			f.logger.Info("notification delivered",
				"channel", notifier.Name(), "post", event.PostID)
		}
	}
}
