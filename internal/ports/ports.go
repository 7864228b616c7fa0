package ports

import (
	"context"
	"errors"
	"time"

	"NewsBridge/internal/domain"
)

// Storage sentinel errors shared by every repository implementation.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Status string
	Page   int
	Limit  int
}

// ArticleRepository persists scraped articles and their lifecycle updates.
type ArticleRepository interface {
	Create(ctx context.Context, article domain.ScrapedArticle) (domain.ScrapedArticle, error)
	FindByID(ctx context.Context, id string) (domain.ScrapedArticle, error)
	FindByTitle(ctx context.Context, title string) (domain.ScrapedArticle, error)
	List(ctx context.Context, filter ArticleFilter) ([]domain.ScrapedArticle, int, error)
	PendingIDs(ctx context.Context) ([]string, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkProcessed(ctx context.Context, id, postID string, processedAt time.Time, hashtags, keywords []string) error
	MarkError(ctx context.Context, id, message string) error
}

// PostRepository persists published posts and resolves slug collisions.
type PostRepository interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
}

// DirectoryRepository resolves the default author and category rows,
// creating them when absent.
type DirectoryRepository interface {
	FirstAdminUser(ctx context.Context) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	FindCategoryByName(ctx context.Context, name string) (domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
}

// ChatRequest carries one completion call to the LLM API.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	JSONMode    bool
}

// ChatClient issues completion requests against an LLM API.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// PostEvent is the minimal payload delivered to each notification channel.
type PostEvent struct {
	PostID   string
	Title    string
	Excerpt  string
	Slug     string
	Hashtags []string
}

// Notifier delivers a new-post event to a single outbound channel.
type Notifier interface {
	Name() string
	NotifyNewPost(ctx context.Context, event PostEvent) error
}

// ImageStore downloads a remote image and returns its site-relative path.
// An empty path with nil error means the download failed non-fatally.
type ImageStore interface {
	Save(ctx context.Context, imageURL, label string) string
}

// ArticleSource extracts article links and contents from the source site.
type ArticleSource interface {
	ArticleLinks(ctx context.Context) []string
	ExtractArticle(ctx context.Context, url string) *domain.ExtractedArticle
}

// Scheduler controls when recurring scrape-and-process jobs execute.
type Scheduler interface {
	Start(ctx context.Context, spec string, job func(time.Time)) error
	Stop(ctx context.Context) error
}
