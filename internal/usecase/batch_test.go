package usecase

import (
	"context"
	"testing"
	"time"

	"NewsBridge/internal/domain"
)

func waitForBatch(t *testing.T, o *Orchestrator) BatchResult {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		result, ok := o.LastResult()
		if ok && !result.Running {
			return result
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("batch did not finish in time")
	return BatchResult{}
}

func TestTriggerWithNothingPending(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles()
	f := newProcessorFixture(articles, &fakeChat{})
	o := NewOrchestrator(articles, f.processor, 0, nil)

	count, err := o.Trigger(context.Background())
	if err != nil {
		t.Fatalf("Trigger error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
	if _, ok := o.LastResult(); ok {
		t.Fatal("empty trigger must not record a batch result")
	}
}

func TestTriggerProcessesAllPending(t *testing.T) {
	t.Parallel()

	a1 := pendingArticle("a1")
	a2 := pendingArticle("a2")
	a2.Title = "Second headline entirely different"
	articles := newFakeArticles(a1, a2)

	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)

	o := NewOrchestrator(articles, f.processor, 0, nil)
	o.sleep = noSleep

	count, err := o.Trigger(context.Background())
	if err != nil {
		t.Fatalf("Trigger error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 pending, got %d", count)
	}

	result := waitForBatch(t, o)
	if result.Success != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.FinishedAt == nil {
		t.Fatal("finishedAt not set")
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}

	for _, id := range []string{"a1", "a2"} {
		if got := articles.get(id).Status; got != domain.StatusProcessed {
			t.Fatalf("article %s status %s", id, got)
		}
	}
}

func TestBatchSurvivesItemFailure(t *testing.T) {
	t.Parallel()

	good := pendingArticle("good")
	broken := pendingArticle("broken")
	broken.Title = "Another headline"
	articles := newFakeArticles(good, broken)

	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)

	// Both articles translate to the same title. The first takes the base
	// slug; the second resolves the suffixed slug, whose insert is rigged to
	// fail, so exactly one item lands in ERROR.
	f.posts.failSlug = "noticia-traduzida-1"

	o := NewOrchestrator(articles, f.processor, 0, nil)
	o.sleep = noSleep

	if _, err := o.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger error: %v", err)
	}

	result := waitForBatch(t, o)
	if result.Success != 1 || result.Failed != 1 {
		t.Fatalf("expected one success and one failure, got %+v", result)
	}

	var failedItem *BatchItem
	for i := range result.Items {
		if !result.Items[i].Success {
			failedItem = &result.Items[i]
		}
	}
	if failedItem == nil {
		t.Fatal("no failed item recorded")
	}
	if failedItem.Error == "" {
		t.Fatal("failed item carries no error message")
	}

	if got := articles.get(failedItem.ID).Status; got != domain.StatusError {
		t.Fatalf("failed article status %s", got)
	}
}

func TestBatchDetachedFromTriggerContext(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles(pendingArticle("a1"))
	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)

	o := NewOrchestrator(articles, f.processor, 0, nil)
	o.sleep = noSleep

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := o.Trigger(ctx); err != nil {
		t.Fatalf("Trigger error: %v", err)
	}
	cancel()

	result := waitForBatch(t, o)
	if result.Success != 1 {
		t.Fatalf("batch should finish after trigger cancellation, got %+v", result)
	}
}
