package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"NewsBridge/internal/config"
	"NewsBridge/internal/ports"
)

const oneSignalEndpoint = "https://onesignal.com/api/v1/notifications"

// OneSignalNotifier sends web push notifications through the OneSignal REST API.
type OneSignalNotifier struct {
	client   *http.Client
	endpoint string
	appID    string
	apiKey   string
	siteURL  string
	logger   *slog.Logger
}

var _ ports.Notifier = (*OneSignalNotifier)(nil)

func NewOneSignalNotifier(cfg config.OneSignalConfig, siteURL string, client *http.Client, logger *slog.Logger) *OneSignalNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &OneSignalNotifier{
		client:   client,
		endpoint: oneSignalEndpoint,
		appID:    cfg.AppID,
		apiKey:   cfg.APIKey,
		siteURL:  siteURL,
		logger:   logger.With("component", "onesignal"),
	}
}

func (n *OneSignalNotifier) Name() string { return "onesignal" }

// NotifyNewPost pushes the headline to every subscribed browser.
func (n *OneSignalNotifier) NotifyNewPost(ctx context.Context, event ports.PostEvent) error {
	payload := map[string]any{
		"app_id":            n.appID,
		"included_segments": []string{"All"},
		"headings":          map[string]string{"en": "Nova Notícia!", "pt": "Nova Notícia!"},
		"contents":          map[string]string{"en": event.Title, "pt": event.Title},
		"url":               fmt.Sprintf("%s/noticia/%s", n.siteURL, event.Slug),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push request rejected: status %d: %s", resp.StatusCode, detail)
	}

	n.logger.Debug("push delivered", "post_id", event.PostID)
	return nil
}
