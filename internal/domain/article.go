package domain

import "time"

// ArticleStatus enumerates the lifecycle of a scraped article.
type ArticleStatus string

const (
	StatusPending    ArticleStatus = "PENDING"
	StatusProcessing ArticleStatus = "PROCESSING"
	StatusProcessed  ArticleStatus = "PROCESSED"
	StatusError      ArticleStatus = "ERROR"
)

// ScrapedArticle is a raw news item captured from an external source site,
// persisted until the translation pipeline turns it into a Post.
type ScrapedArticle struct {
	ID           string        `db:"id"`
	SourceURL    string        `db:"source_url"`
	Source       string        `db:"source"`
	Title        string        `db:"title"`
	Description  string        `db:"description"`
	Content      string        `db:"content"`
	RawData      string        `db:"raw_data"`
	Status       ArticleStatus `db:"status"`
	ErrorMessage string        `db:"error_message"`
	ProcessedAt  *time.Time    `db:"processed_at"`
	PostID       string        `db:"post_id"`
	Hashtags     []string      `db:"hashtags"`
	Keywords     []string      `db:"keywords"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// Post is the published artifact produced from one processed article.
type Post struct {
	ID              string    `db:"id"`
	Slug            string    `db:"slug"`
	Title           string    `db:"title"`
	Excerpt         string    `db:"excerpt"`
	Content         string    `db:"content"`
	MetaTitle       string    `db:"meta_title"`
	MetaDescription string    `db:"meta_description"`
	Keywords        []string  `db:"keywords"`
	ImageURL        string    `db:"image_url"`
	AuthorID        string    `db:"author_id"`
	CategoryID      string    `db:"category_id"`
	Published       bool      `db:"published"`
	CreatedAt       time.Time `db:"created_at"`
}

// User is read only to resolve the default post author.
type User struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	Role  string `db:"role"`
}

// Category is read only to resolve the default post category.
type Category struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// ImageRef pairs a remote image URL with the local path it was saved under.
type ImageRef struct {
	OriginalURL string `json:"original_url"`
	LocalPath   string `json:"local_path"`
}

// ExtractedArticle is the scraper's in-memory result before persistence.
// MainImage and ContentImages become the article's RawData on ingestion.
type ExtractedArticle struct {
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Content       string     `json:"content"`
	MainImage     ImageRef   `json:"main_image"`
	ContentImages []ImageRef `json:"content_images"`
}

// RawData is the serialized extraction metadata stored alongside an article.
type RawData struct {
	MainImage     ImageRef   `json:"main_image"`
	ContentImages []ImageRef `json:"content_images"`
}

// TranslatedArticle is the validated and repaired translation response used
// to build the final post.
type TranslatedArticle struct {
	Title           string   `json:"title"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Hashtags        []string `json:"hashtags"`
	Keywords        []string `json:"keywords"`
}
