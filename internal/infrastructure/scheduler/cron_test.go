package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(nil)
	if err := s.Start(context.Background(), "not a cron spec", func(time.Time) {}); err == nil {
		t.Fatal("expected error for invalid expression")
	}
}

func TestStartRunsJob(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewCronScheduler(time.UTC)

	err := s.Start(context.Background(), "@every 10ms", func(time.Time) {
		runs.Add(1)
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	if runs.Load() == 0 {
		t.Fatal("job never ran")
	}
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(nil)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle scheduler: %v", err)
	}
}
