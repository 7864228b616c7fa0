package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxFilenameStem = 50

var (
	nonWordExpr    = regexp.MustCompile(`[^\w\s-]`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// ImageFetcher downloads remote images into a local public directory and
// hands back site-relative paths. Failures are non-fatal to extraction:
// callers receive an empty path instead of an error.
type ImageFetcher struct {
	client     *http.Client
	dir        string
	pathPrefix string
	userAgent  string
	logger     *slog.Logger
}

// NewImageFetcher wires an HTTP client and the target directory.
func NewImageFetcher(client *http.Client, dir, pathPrefix, userAgent string, logger *slog.Logger) *ImageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ImageFetcher{
		client:     client,
		dir:        dir,
		pathPrefix: strings.TrimSuffix(pathPrefix, "/"),
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Save streams the image at imageURL to disk under a collision-safe name
// derived from label and returns the site-relative path, or "" on failure.
func (f *ImageFetcher) Save(ctx context.Context, imageURL, label string) string {
	if imageURL == "" {
		return ""
	}

	stem := sanitizeFilename(label)
	if stem == "" {
		stem = "img-" + uuid.NewString()[:8]
	}

	ext := extensionFromURL(imageURL)
	savePath, filename, err := f.freePath(stem, ext)
	if err != nil {
		f.warn("resolve image path", imageURL, err)
		return ""
	}

	if err := f.download(ctx, imageURL, savePath); err != nil {
		f.warn("download image", imageURL, err)
		return ""
	}

	return f.pathPrefix + "/" + filename
}

func (f *ImageFetcher) download(ctx context.Context, imageURL, savePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image host returned %s", resp.Status)
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}

	file, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(savePath)
		return fmt.Errorf("write image: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return nil
}

// freePath probes for an unused filename, appending -1, -2, ... so an
// existing image is never overwritten.
func (f *ImageFetcher) freePath(stem, ext string) (string, string, error) {
	filename := stem + ext
	savePath := filepath.Join(f.dir, filename)

	for counter := 1; ; counter++ {
		if _, err := os.Stat(savePath); os.IsNotExist(err) {
			return savePath, filename, nil
		} else if err != nil && !os.IsExist(err) {
			return "", "", err
		}
		filename = fmt.Sprintf("%s-%d%s", stem, counter, ext)
		savePath = filepath.Join(f.dir, filename)
	}
}

func (f *ImageFetcher) warn(msg, imageURL string, err error) {
	if f.logger != nil {
		f.logger.Warn(msg, "url", imageURL, "error", err)
	}
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = nonWordExpr.ReplaceAllString(name, "")
	name = whitespaceExpr.ReplaceAllString(strings.TrimSpace(name), "-")
	if len(name) > maxFilenameStem {
		name = name[:maxFilenameStem]
	}
	return strings.TrimRight(name, "-")
}

func extensionFromURL(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := path.Ext(parsed.Path)
	if ext == "" {
		return ".jpg"
	}
	return ext
}
