package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

// In-memory doubles shared by the pipeline tests.

type fakeArticles struct {
	mu       sync.Mutex
	articles map[string]domain.ScrapedArticle
	nextID   int

	findErr error
}

func newFakeArticles(articles ...domain.ScrapedArticle) *fakeArticles {
	f := &fakeArticles{articles: map[string]domain.ScrapedArticle{}}
	for _, a := range articles {
		f.articles[a.ID] = a
	}
	return f
}

func (f *fakeArticles) Create(_ context.Context, article domain.ScrapedArticle) (domain.ScrapedArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	article.ID = fmt.Sprintf("art-%d", f.nextID)
	article.CreatedAt = time.Now()
	f.articles[article.ID] = article
	return article, nil
}

func (f *fakeArticles) FindByID(_ context.Context, id string) (domain.ScrapedArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[id]
	if !ok {
		return domain.ScrapedArticle{}, ports.ErrNotFound
	}
	return article, nil
}

func (f *fakeArticles) FindByTitle(_ context.Context, title string) (domain.ScrapedArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.ScrapedArticle{}, f.findErr
	}
	for _, article := range f.articles {
		if strings.EqualFold(article.Title, title) {
			return article, nil
		}
	}
	return domain.ScrapedArticle{}, ports.ErrNotFound
}

func (f *fakeArticles) List(_ context.Context, _ ports.ArticleFilter) ([]domain.ScrapedArticle, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ScrapedArticle, 0, len(f.articles))
	for _, article := range f.articles {
		out = append(out, article)
	}
	return out, len(out), nil
}

func (f *fakeArticles) PendingIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for id, article := range f.articles {
		if article.Status == domain.StatusPending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeArticles) MarkProcessing(_ context.Context, id string) error {
	return f.setStatus(id, domain.StatusProcessing, "")
}

func (f *fakeArticles) MarkProcessed(_ context.Context, id, postID string, processedAt time.Time, hashtags, keywords []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[id]
	if !ok {
		return ports.ErrNotFound
	}
	article.Status = domain.StatusProcessed
	article.PostID = postID
	article.ProcessedAt = &processedAt
	article.Hashtags = hashtags
	article.Keywords = keywords
	f.articles[id] = article
	return nil
}

func (f *fakeArticles) MarkError(_ context.Context, id, message string) error {
	return f.setStatus(id, domain.StatusError, message)
}

func (f *fakeArticles) setStatus(id string, status domain.ArticleStatus, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[id]
	if !ok {
		return ports.ErrNotFound
	}
	article.Status = status
	article.ErrorMessage = message
	f.articles[id] = article
	return nil
}

func (f *fakeArticles) get(id string) domain.ScrapedArticle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.articles[id]
}

type fakePosts struct {
	mu       sync.Mutex
	slugs    map[string]bool
	posts    []domain.Post
	raceOnce string // slug that fails with ErrAlreadyExists exactly once
	failSlug string // slug whose insert always fails hard
}

func newFakePosts(existing ...string) *fakePosts {
	f := &fakePosts{slugs: map[string]bool{}}
	for _, slug := range existing {
		f.slugs[slug] = true
	}
	return f
}

func (f *fakePosts) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slugs[slug], nil
}

func (f *fakePosts) Create(_ context.Context, post domain.Post) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSlug != "" && post.Slug == f.failSlug {
		return domain.Post{}, fmt.Errorf("insert post: connection reset")
	}
	if f.raceOnce != "" && post.Slug == f.raceOnce {
		f.raceOnce = ""
		f.slugs[post.Slug] = true
		return domain.Post{}, fmt.Errorf("slug %q: %w", post.Slug, ports.ErrAlreadyExists)
	}
	if f.slugs[post.Slug] {
		return domain.Post{}, fmt.Errorf("slug %q: %w", post.Slug, ports.ErrAlreadyExists)
	}
	post.ID = fmt.Sprintf("post-%d", len(f.posts)+1)
	f.slugs[post.Slug] = true
	f.posts = append(f.posts, post)
	return post, nil
}

type fakeDirectory struct {
	mu           sync.Mutex
	user         *domain.User
	category     *domain.Category
	usersCreated int
	catsCreated  int
}

func (f *fakeDirectory) FirstAdminUser(_ context.Context) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return domain.User{}, ports.ErrNotFound
	}
	return *f.user, nil
}

func (f *fakeDirectory) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersCreated++
	user.ID = fmt.Sprintf("user-%d", f.usersCreated)
	f.user = &user
	return user, nil
}

func (f *fakeDirectory) FindCategoryByName(_ context.Context, name string) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.category == nil || !strings.EqualFold(f.category.Name, name) {
		return domain.Category{}, ports.ErrNotFound
	}
	return *f.category, nil
}

func (f *fakeDirectory) CreateCategory(_ context.Context, category domain.Category) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catsCreated++
	category.ID = fmt.Sprintf("cat-%d", f.catsCreated)
	f.category = &category
	return category, nil
}

// fakeChat serves queued responses in order; past the end it repeats the
// last entry. A nil entry means an error.
type fakeChat struct {
	mu        sync.Mutex
	responses []chatResponse
	calls     []ports.ChatRequest
}

type chatResponse struct {
	text string
	err  error
}

func (f *fakeChat) Complete(_ context.Context, req ports.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	if idx < 0 {
		return "", fmt.Errorf("no response configured")
	}
	resp := f.responses[idx]
	return resp.text, resp.err
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu     sync.Mutex
	name   string
	err    error
	events []ports.PostEvent
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) NotifyNewPost(_ context.Context, event ports.PostEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func noSleep(_ context.Context, _ time.Duration) {}
