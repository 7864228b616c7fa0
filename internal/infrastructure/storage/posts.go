package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

const uniqueViolation = "23505"

// PostRepository persists published posts.
type PostRepository struct {
	db *sqlx.DB
}

var _ ports.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// SlugExists reports whether any post already uses the slug.
func (r *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Create inserts a post. A slug collision surfaces as ports.ErrAlreadyExists
// so the caller can retry with a different slug.
func (r *PostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	post.ID = uuid.NewString()
	post.CreatedAt = time.Now()

	query := `INSERT INTO posts
		(id, slug, title, excerpt, content, meta_title, meta_description, keywords,
			image_url, author_id, category_id, published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Slug, post.Title, post.Excerpt, post.Content,
		post.MetaTitle, post.MetaDescription, pq.StringArray(post.Keywords),
		post.ImageURL, post.AuthorID, post.CategoryID, post.Published, post.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Post{}, fmt.Errorf("slug %q: %w", post.Slug, ports.ErrAlreadyExists)
		}
		return domain.Post{}, fmt.Errorf("insert post: %w", err)
	}

	return post, nil
}

// DirectoryRepository resolves the default author and category rows.
type DirectoryRepository struct {
	db *sqlx.DB
}

var _ ports.DirectoryRepository = (*DirectoryRepository)(nil)

func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// FirstAdminUser returns the oldest admin account or ports.ErrNotFound.
func (r *DirectoryRepository) FirstAdminUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	query := `SELECT id, name, email, role FROM users WHERE role = 'ADMIN' ORDER BY created_at LIMIT 1`
	if err := r.db.GetContext(ctx, &user, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, ports.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("find admin user: %w", err)
	}
	return user, nil
}

func (r *DirectoryRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.NewString()
	query := `INSERT INTO users (id, name, email, role, created_at) VALUES ($1, $2, $3, $4, NOW())`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Role); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindCategoryByName matches category names case-insensitively.
func (r *DirectoryRepository) FindCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	var category domain.Category
	query := `SELECT id, name FROM categories WHERE LOWER(name) = LOWER($1) LIMIT 1`
	if err := r.db.GetContext(ctx, &category, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, ports.ErrNotFound
		}
		return domain.Category{}, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

func (r *DirectoryRepository) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	category.ID = uuid.NewString()
	query := `INSERT INTO categories (id, name, created_at) VALUES ($1, $2, NOW())`
	if _, err := r.db.ExecContext(ctx, query, category.ID, category.Name); err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}
