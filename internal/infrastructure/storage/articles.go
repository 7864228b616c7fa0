package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

const articleColumns = "id, source_url, source, title, description, content, raw_data, status, error_message, processed_at, post_id, hashtags, keywords, created_at, updated_at"

// ArticleRepository persists scraped articles in Postgres.
type ArticleRepository struct {
	db *sqlx.DB
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository wires a sqlx.DB implementation.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a new scraped article and returns it with its id set.
func (r *ArticleRepository) Create(ctx context.Context, article domain.ScrapedArticle) (domain.ScrapedArticle, error) {
	article.ID = uuid.NewString()
	article.CreatedAt = time.Now()
	article.UpdatedAt = article.CreatedAt

	query := `INSERT INTO scraped_articles
		(id, source_url, source, title, description, content, raw_data, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.SourceURL, article.Source, article.Title,
		article.Description, article.Content, article.RawData,
		article.Status, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return domain.ScrapedArticle{}, fmt.Errorf("insert scraped article: %w", err)
	}

	return article, nil
}

// FindByID loads one article or ports.ErrNotFound.
func (r *ArticleRepository) FindByID(ctx context.Context, id string) (domain.ScrapedArticle, error) {
	query := `SELECT ` + articleColumns + ` FROM scraped_articles WHERE id = $1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, id))
}

// FindByTitle matches titles case-insensitively, the dedup key used by the
// ingestion endpoint.
func (r *ArticleRepository) FindByTitle(ctx context.Context, title string) (domain.ScrapedArticle, error) {
	query := `SELECT ` + articleColumns + ` FROM scraped_articles WHERE LOWER(title) = LOWER($1) LIMIT 1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, title))
}

// List returns a page of articles plus the unfiltered total for pagination.
func (r *ArticleRepository) List(ctx context.Context, filter ports.ArticleFilter) ([]domain.ScrapedArticle, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	builder := sq.Select(articleColumns).
		From("scraped_articles").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		PlaceholderFormat(sq.Dollar)

	countBuilder := sq.Select("COUNT(*)").
		From("scraped_articles").
		PlaceholderFormat(sq.Dollar)

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
		countBuilder = countBuilder.Where(sq.Eq{"status": filter.Status})
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := []domain.ScrapedArticle{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, total, nil
}

// PendingIDs snapshots every article still waiting for processing.
func (r *ArticleRepository) PendingIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	query := `SELECT id FROM scraped_articles WHERE status = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &ids, query, domain.StatusPending); err != nil {
		return nil, fmt.Errorf("load pending ids: %w", err)
	}
	return ids, nil
}

// MarkProcessing flips the article into its in-flight state.
func (r *ArticleRepository) MarkProcessing(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, `UPDATE scraped_articles SET status = $2, updated_at = NOW() WHERE id = $1`,
		domain.StatusProcessing)
}

// MarkProcessed records the terminal success state with its post reference.
func (r *ArticleRepository) MarkProcessed(ctx context.Context, id, postID string, processedAt time.Time, hashtags, keywords []string) error {
	query := `UPDATE scraped_articles
		SET status = $2, processed_at = $3, post_id = $4, hashtags = $5, keywords = $6,
			error_message = '', updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		id, domain.StatusProcessed, processedAt, postID,
		pq.StringArray(hashtags), pq.StringArray(keywords))
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return requireRow(result, id)
}

// MarkError records the terminal failure state with its readable message.
func (r *ArticleRepository) MarkError(ctx context.Context, id, message string) error {
	query := `UPDATE scraped_articles SET status = $2, error_message = $3, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, domain.StatusError, message)
	if err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	return requireRow(result, id)
}

func (r *ArticleRepository) setStatus(ctx context.Context, id, query string, status domain.ArticleStatus) error {
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return requireRow(result, id)
}

func (r *ArticleRepository) scanOne(row *sqlx.Row) (domain.ScrapedArticle, error) {
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScrapedArticle{}, ports.ErrNotFound
	}
	return article, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.ScrapedArticle, error) {
	var (
		article     domain.ScrapedArticle
		description sql.NullString
		rawData     sql.NullString
		errMessage  sql.NullString
		processedAt sql.NullTime
		postID      sql.NullString
		hashtags    pq.StringArray
		keywords    pq.StringArray
	)

	err := row.Scan(
		&article.ID, &article.SourceURL, &article.Source, &article.Title,
		&description, &article.Content, &rawData,
		&article.Status, &errMessage, &processedAt, &postID,
		&hashtags, &keywords, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ScrapedArticle{}, err
		}
		return domain.ScrapedArticle{}, fmt.Errorf("scan article: %w", err)
	}

	article.Description = description.String
	article.RawData = rawData.String
	article.ErrorMessage = errMessage.String
	article.PostID = postID.String
	if processedAt.Valid {
		t := processedAt.Time
		article.ProcessedAt = &t
	}
	article.Hashtags = []string(hashtags)
	article.Keywords = []string(keywords)

	return article, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("article %s: %w", id, ports.ErrNotFound)
	}
	return nil
}
