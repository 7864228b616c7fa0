package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"NewsBridge/internal/config"
	"NewsBridge/internal/ports"
)

// SocialNotifier forwards new posts to the social-media posting service.
type SocialNotifier struct {
	client   *http.Client
	endpoint string
	token    string
	siteURL  string
	logger   *slog.Logger
}

var _ ports.Notifier = (*SocialNotifier)(nil)

func NewSocialNotifier(cfg config.SocialConfig, siteURL string, client *http.Client, logger *slog.Logger) *SocialNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &SocialNotifier{
		client:   client,
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		siteURL:  siteURL,
		logger:   logger.With("component", "social"),
	}
}

func (n *SocialNotifier) Name() string { return "social" }

// NotifyNewPost submits the post with its hashtag line for publication.
func (n *SocialNotifier) NotifyNewPost(ctx context.Context, event ports.PostEvent) error {
	tags := make([]string, 0, len(event.Hashtags))
	for _, tag := range event.Hashtags {
		tags = append(tags, "#"+tag)
	}

	payload := map[string]any{
		"postId":   event.PostID,
		"title":    event.Title,
		"excerpt":  event.Excerpt,
		"url":      fmt.Sprintf("%s/noticia/%s", n.siteURL, event.Slug),
		"hashtags": strings.Join(tags, " "),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal social payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build social request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send social request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("social request rejected: status %d: %s", resp.StatusCode, detail)
	}

	n.logger.Debug("social post submitted", "post_id", event.PostID)
	return nil
}
