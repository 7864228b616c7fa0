package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

const (
	defaultMaxAttempts    = 3
	defaultBackoffStep    = time.Second
	rescueTemperature     = 0.3
	defaultAuthorName     = "Admin"
	defaultAuthorEmail    = "admin@exemplo.com"
	adminRole             = "ADMIN"
	defaultCategoryName   = "Notícias Internacionais"
	minFormattedChars     = 10
	maxSlugProbes         = 100
	errMessageUnavailable = "erro desconhecido ao processar artigo"
)

// ProcessorDeps wires all driven adapters into the article processor.
type ProcessorDeps struct {
	Articles    ports.ArticleRepository
	Posts       ports.PostRepository
	Directory   ports.DirectoryRepository
	Chat        ports.ChatClient
	Fanout      *Fanout
	Logger      *slog.Logger
	MaxAttempts int
	BackoffStep time.Duration
	Temperature float64
}

// ProcessResult summarizes one successful pipeline run.
type ProcessResult struct {
	PostID string
	Title  string
	Slug   string
}

// Processor drives one stored article from PENDING through PROCESSING to
// PROCESSED or ERROR, publishing a post as a side effect.
type Processor struct {
	articles    ports.ArticleRepository
	posts       ports.PostRepository
	directory   ports.DirectoryRepository
	chat        ports.ChatClient
	fanout      *Fanout
	logger      *slog.Logger
	maxAttempts int
	backoffStep time.Duration
	temperature float64
	sleep       func(ctx context.Context, d time.Duration)

	// Default author/category are resolved once and cached; the guard keeps
	// concurrent triggers from racing to create duplicates.
	mu       sync.Mutex
	author   domain.User
	category domain.Category
}

// NewProcessor constructs the state machine.
func NewProcessor(deps ProcessorDeps) *Processor {
	maxAttempts := deps.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := deps.BackoffStep
	if backoff <= 0 {
		backoff = defaultBackoffStep
	}

	return &Processor{
		articles:    deps.Articles,
		posts:       deps.Posts,
		directory:   deps.Directory,
		chat:        deps.Chat,
		fanout:      deps.Fanout,
		logger:      deps.Logger,
		maxAttempts: maxAttempts,
		backoffStep: backoff,
		temperature: deps.Temperature,
		sleep:       sleepCtx,
	}
}

// Process runs the full pipeline for one article id. Any failure before the
// post exists lands the article in ERROR with a readable message; the
// article is never silently lost.
func (p *Processor) Process(ctx context.Context, articleID string) (ProcessResult, error) {
	article, err := p.articles.FindByID(ctx, articleID)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("find article %s: %w", articleID, err)
	}

	// Visible progress marker, and a guard against a second concurrent
	// invocation picking the same id up as PENDING.
	if err := p.articles.MarkProcessing(ctx, articleID); err != nil {
		return ProcessResult{}, fmt.Errorf("mark processing: %w", err)
	}

	result, err := p.run(ctx, article)
	if err != nil {
		message := err.Error()
		if message == "" {
			message = errMessageUnavailable
		}
		if markErr := p.articles.MarkError(ctx, articleID, message); markErr != nil {
			p.warn("mark error", articleID, markErr)
		}
		return ProcessResult{}, err
	}

	return result, nil
}

func (p *Processor) run(ctx context.Context, article domain.ScrapedArticle) (ProcessResult, error) {
	featuredImage, rewritten := p.rewriteImages(article)

	translated, ok := p.translate(ctx, article, rewritten)
	if !ok {
		p.info("translation attempts exhausted, using original content", article.ID)
		translated = fallbackTranslation(article, rewritten)
	}

	wasOriginal := looksLikeOriginal(rewritten, translated.Content)
	if wasOriginal {
		p.rescueTranslate(ctx, rewritten, &translated)
	}

	formatted := wrapParagraphs(translated.Content)
	if len(strings.TrimSpace(formatted)) < minFormattedChars {
		formatted = originalContentFallback(rewritten)
		translated.Title = appendTitleMarker(article.Title, originalMarker)
	}
	if wasOriginal {
		formatted = prependAutomaticNote(formatted)
		translated.Title = appendTitleMarker(translated.Title, automaticMarker)
	}

	author, err := p.defaultAuthor(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("resolve default author: %w", err)
	}

	category, err := p.defaultCategory(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("resolve default category: %w", err)
	}

	post, err := p.createPost(ctx, domain.Post{
		Title:           translated.Title,
		Excerpt:         translated.Excerpt,
		Content:         formatted,
		MetaTitle:       translated.MetaTitle,
		MetaDescription: translated.MetaDescription,
		Keywords:        translated.Keywords,
		ImageURL:        featuredImage,
		AuthorID:        author.ID,
		CategoryID:      category.ID,
		Published:       true,
	})
	if err != nil {
		return ProcessResult{}, fmt.Errorf("create post: %w", err)
	}

	err = p.articles.MarkProcessed(ctx, article.ID, post.ID, time.Now(), translated.Hashtags, translated.Keywords)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("mark processed: %w", err)
	}

	if p.fanout != nil {
		p.fanout.Publish(ctx, ports.PostEvent{
			PostID:   post.ID,
			Title:    post.Title,
			Excerpt:  post.Excerpt,
			Slug:     post.Slug,
			Hashtags: translated.Hashtags,
		})
	}

	return ProcessResult{PostID: post.ID, Title: post.Title, Slug: post.Slug}, nil
}

// translate runs the attempt loop with linear backoff, returning false when
// every attempt was rejected.
func (p *Processor) translate(ctx context.Context, article domain.ScrapedArticle, rewritten string) (domain.TranslatedArticle, bool) {
	prompt := buildTranslationPrompt(article, rewritten)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			p.sleep(ctx, time.Duration(attempt-1)*p.backoffStep)
		}

		raw, err := p.chat.Complete(ctx, ports.ChatRequest{
			System:      translationSystemPrompt,
			User:        prompt,
			Temperature: p.temperature,
			JSONMode:    true,
		})
		if err != nil {
			p.warn("completion attempt failed", article.ID, err, "attempt", attempt)
			continue
		}

		translated, err := parseTranslation(raw)
		if err != nil {
			p.warn("response parse failed", article.ID, err, "attempt", attempt)
			continue
		}

		backfillFields(&translated, article, rewritten)

		if err := checkQuality(translated); err != nil {
			p.warn("quality gate rejected attempt", article.ID, err, "attempt", attempt)
			continue
		}

		completeHashtags(&translated)
		completeKeywords(&translated)
		return translated, true
	}

	return domain.TranslatedArticle{}, false
}

// rescueTranslate issues the one extra simplified translation call and
// accepts its output only when it is at least half the original's length.
func (p *Processor) rescueTranslate(ctx context.Context, rewritten string, translated *domain.TranslatedArticle) {
	raw, err := p.chat.Complete(ctx, ports.ChatRequest{
		System:      rescueSystemPrompt,
		User:        buildRescuePrompt(rewritten),
		Temperature: rescueTemperature,
	})
	if err != nil {
		p.warn("rescue translation failed", "", err)
		return
	}

	if len(raw) >= len(rewritten)/2 {
		translated.Content = raw
	}
}

// rewriteImages parses rawData and replaces every original image URL inside
// the body with its local path, so published content never references
// third-party hosting. Parse failures degrade to the stored content.
func (p *Processor) rewriteImages(article domain.ScrapedArticle) (string, string) {
	rewritten := article.Content
	if article.RawData == "" {
		return "", rewritten
	}

	var raw domain.RawData
	if err := json.Unmarshal([]byte(article.RawData), &raw); err != nil {
		p.warn("parse raw data", article.ID, err)
		return "", rewritten
	}

	for _, img := range raw.ContentImages {
		if img.OriginalURL != "" && img.LocalPath != "" {
			rewritten = strings.ReplaceAll(rewritten, img.OriginalURL, img.LocalPath)
		}
	}

	return raw.MainImage.LocalPath, rewritten
}

// createPost resolves a unique slug by probing, then retries on a storage
// unique violation in case a concurrent writer took the slug in between.
func (p *Processor) createPost(ctx context.Context, post domain.Post) (domain.Post, error) {
	base := Slugify(post.Title)

	slug := base
	for counter := 1; counter <= maxSlugProbes; counter++ {
		exists, err := p.posts.SlugExists(ctx, slug)
		if err != nil {
			return domain.Post{}, fmt.Errorf("probe slug %s: %w", slug, err)
		}
		if !exists {
			post.Slug = slug
			created, err := p.posts.Create(ctx, post)
			if err == nil {
				return created, nil
			}
			if !errors.Is(err, ports.ErrAlreadyExists) {
				return domain.Post{}, err
			}
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}

	return domain.Post{}, fmt.Errorf("no free slug found for %q", base)
}

func (p *Processor) defaultAuthor(ctx context.Context) (domain.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.author.ID != "" {
		return p.author, nil
	}

	user, err := p.directory.FirstAdminUser(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		user, err = p.directory.CreateUser(ctx, domain.User{
			Name:  defaultAuthorName,
			Email: defaultAuthorEmail,
			Role:  adminRole,
		})
	}
	if err != nil {
		return domain.User{}, err
	}

	p.author = user
	return user, nil
}

func (p *Processor) defaultCategory(ctx context.Context) (domain.Category, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.category.ID != "" {
		return p.category, nil
	}

	category, err := p.directory.FindCategoryByName(ctx, defaultCategoryName)
	if errors.Is(err, ports.ErrNotFound) {
		category, err = p.directory.CreateCategory(ctx, domain.Category{Name: defaultCategoryName})
	}
	if err != nil {
		return domain.Category{}, err
	}

	p.category = category
	return category, nil
}

func (p *Processor) warn(msg, articleID string, err error, args ...any) {
	if p.logger != nil {
		all := append([]any{"article", articleID, "error", err}, args...)
		p.logger.Warn(msg, all...)
	}
}

func (p *Processor) info(msg, articleID string) {
	if p.logger != nil {
		p.logger.Info(msg, "article", articleID)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
