package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"NewsBridge/internal/ports"
)

// CronScheduler runs recurring jobs on a standard 5-field cron expression.
type CronScheduler struct {
	location *time.Location
	cron     *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating expressions in the given
// timezone. A nil location means local time.
func NewCronScheduler(location *time.Location) *CronScheduler {
	return &CronScheduler{location: location}
}

// Start registers the job and begins the cron loop. Jobs scheduled after the
// context is cancelled are not run.
func (c *CronScheduler) Start(ctx context.Context, spec string, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.cron != nil {
		return nil
	}

	opts := []cron.Option{}
	if c.location != nil {
		opts = append(opts, cron.WithLocation(c.location))
	}
	runner := cron.New(opts...)

	_, err := runner.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now())
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	runner.Start()
	c.cron = runner
	return nil
}

// Stop halts scheduling and waits for a running job to finish, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}

	done := c.cron.Stop()
	c.cron = nil

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
