package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

const translatedBody = "O governo anunciou hoje novas medidas econômicas que afetam milhões de pessoas em todo o país. A decisão foi recebida com cautela pelos analistas."

func translationJSON(content string) string {
	return fmt.Sprintf(`{"title":"Notícia traduzida","excerpt":"Resumo da notícia","content":%q,"metaTitle":"Notícia traduzida","metaDescription":"Resumo","hashtags":["governo","economia"],"keywords":["governo"]}`, content)
}

func pendingArticle(id string) domain.ScrapedArticle {
	return domain.ScrapedArticle{
		ID:      id,
		Title:   "Government announces new measures",
		Source:  "YNET_NEWS",
		Content: "The government announced new measures today affecting millions of people across the country.",
		Status:  domain.StatusPending,
	}
}

type processorFixture struct {
	articles  *fakeArticles
	posts     *fakePosts
	directory *fakeDirectory
	chat      *fakeChat
	notifier  *fakeNotifier
	processor *Processor
}

func newProcessorFixture(articles *fakeArticles, chat *fakeChat) *processorFixture {
	f := &processorFixture{
		articles:  articles,
		posts:     newFakePosts(),
		directory: &fakeDirectory{},
		chat:      chat,
		notifier:  &fakeNotifier{name: "test"},
	}
	f.processor = NewProcessor(ProcessorDeps{
		Articles:  articles,
		Posts:     f.posts,
		Directory: f.directory,
		Chat:      chat,
		Fanout:    NewFanout(nil, f.notifier),
	})
	f.processor.sleep = noSleep
	return f
}

func TestProcessSuccess(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles(pendingArticle("a1"))
	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)

	result, err := f.processor.Process(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	stored := articles.get("a1")
	if stored.Status != domain.StatusProcessed {
		t.Fatalf("expected PROCESSED, got %s", stored.Status)
	}
	if stored.PostID != result.PostID {
		t.Fatalf("post id mismatch: %s vs %s", stored.PostID, result.PostID)
	}
	if stored.ProcessedAt == nil {
		t.Fatal("processedAt not recorded")
	}
	if len(stored.Hashtags) != 10 {
		t.Fatalf("expected 10 hashtags, got %d", len(stored.Hashtags))
	}
	if len(stored.Keywords) < 5 {
		t.Fatalf("expected at least 5 keywords, got %d", len(stored.Keywords))
	}

	if len(f.posts.posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(f.posts.posts))
	}
	post := f.posts.posts[0]
	if !strings.Contains(post.Content, "<p>") {
		t.Fatalf("content not wrapped in paragraphs: %s", post.Content)
	}
	if !post.Published {
		t.Fatal("post not published")
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.events))
	}
	if f.notifier.events[0].Slug != result.Slug {
		t.Fatalf("notification slug mismatch: %s", f.notifier.events[0].Slug)
	}
}

func TestProcessFallbackWhenTranslatorAlwaysFails(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles(pendingArticle("a1"))
	chat := &fakeChat{responses: []chatResponse{{err: errors.New("api unavailable")}}}
	f := newProcessorFixture(articles, chat)

	result, err := f.processor.Process(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	// Three translation attempts plus the rescue call.
	if chat.callCount() != 4 {
		t.Fatalf("expected 4 completion calls, got %d", chat.callCount())
	}

	stored := articles.get("a1")
	if stored.Status != domain.StatusProcessed {
		t.Fatalf("expected PROCESSED, got %s", stored.Status)
	}

	post := f.posts.posts[0]
	if strings.TrimSpace(post.Content) == "" {
		t.Fatal("post content must never be empty")
	}
	if !strings.Contains(post.Content, "translation-note") {
		t.Fatalf("untranslated post missing automatic banner: %s", post.Content)
	}
	if !strings.Contains(result.Title, "[Tradução automática]") {
		t.Fatalf("title missing marker: %s", result.Title)
	}
}

func TestProcessRescueRunsOnceWhenContentLooksOriginal(t *testing.T) {
	t.Parallel()

	article := pendingArticle("a1")
	article.Content = "Militares avançaram próximos à fronteira durante a madrugada, segundo autoridades locais que acompanham a situação."
	articles := newFakeArticles(article)

	rescue := "Texto resgatado em português com acentuação própria e extensão mais do que suficiente para ser aceito pela verificação de tamanho."
	chat := &fakeChat{responses: []chatResponse{
		{text: translationJSON(article.Content)},
		{text: rescue},
	}}
	f := newProcessorFixture(articles, chat)

	if _, err := f.processor.Process(context.Background(), "a1"); err != nil {
		t.Fatalf("Process error: %v", err)
	}

	// One translation attempt plus exactly one rescue.
	if chat.callCount() != 2 {
		t.Fatalf("expected 2 completion calls, got %d", chat.callCount())
	}
	if got := chat.calls[1].Temperature; got != 0.3 {
		t.Fatalf("rescue temperature = %v, want 0.3", got)
	}

	post := f.posts.posts[0]
	if !strings.Contains(post.Content, "Texto resgatado") {
		t.Fatalf("rescue content not used: %s", post.Content)
	}
}

func TestProcessSlugCollisionProbesSuffix(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles(pendingArticle("a1"))
	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)
	f.posts.slugs["noticia-traduzida"] = true

	result, err := f.processor.Process(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if result.Slug != "noticia-traduzida-1" {
		t.Fatalf("expected suffixed slug, got %s", result.Slug)
	}
}

func TestProcessSlugRaceRetriesOnUniqueViolation(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles(pendingArticle("a1"))
	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)
	f.posts.raceOnce = "noticia-traduzida"

	result, err := f.processor.Process(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if result.Slug != "noticia-traduzida-1" {
		t.Fatalf("expected retry with suffix, got %s", result.Slug)
	}
}

func TestProcessUnknownArticle(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture(newFakeArticles(), &fakeChat{})

	_, err := f.processor.Process(context.Background(), "missing")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessMarksErrorOnPostFailure(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles(pendingArticle("a1"))
	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)

	fullPosts := &failingPosts{}
	f.processor = NewProcessor(ProcessorDeps{
		Articles:  articles,
		Posts:     fullPosts,
		Directory: f.directory,
		Chat:      chat,
	})
	f.processor.sleep = noSleep

	_, err := f.processor.Process(context.Background(), "a1")
	if err == nil {
		t.Fatal("expected error")
	}

	stored := articles.get("a1")
	if stored.Status != domain.StatusError {
		t.Fatalf("expected ERROR, got %s", stored.Status)
	}
	if stored.ErrorMessage == "" {
		t.Fatal("error message not recorded")
	}
}

func TestProcessResolvesDefaultsOnce(t *testing.T) {
	t.Parallel()

	articles := newFakeArticles(pendingArticle("a1"), pendingArticle("a2"))
	chat := &fakeChat{responses: []chatResponse{{text: translationJSON(translatedBody)}}}
	f := newProcessorFixture(articles, chat)

	for _, id := range []string{"a1", "a2"} {
		if _, err := f.processor.Process(context.Background(), id); err != nil {
			t.Fatalf("Process(%s) error: %v", id, err)
		}
	}

	if f.directory.usersCreated != 1 {
		t.Fatalf("expected 1 created user, got %d", f.directory.usersCreated)
	}
	if f.directory.catsCreated != 1 {
		t.Fatalf("expected 1 created category, got %d", f.directory.catsCreated)
	}
}

type failingPosts struct{}

func (failingPosts) SlugExists(context.Context, string) (bool, error) { return false, nil }

func (failingPosts) Create(context.Context, domain.Post) (domain.Post, error) {
	return domain.Post{}, errors.New("storage unavailable")
}
