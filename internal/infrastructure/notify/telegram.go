package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"NewsBridge/internal/config"
	"NewsBridge/internal/ports"
)

// TelegramNotifier broadcasts new posts to a Telegram channel.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatID  string
	siteURL string
	logger  *slog.Logger
}

var _ ports.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier authorizes the bot once at startup.
func NewTelegramNotifier(cfg config.TelegramConfig, siteURL string, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:     bot,
		chatID:  cfg.ChatID,
		siteURL: strings.TrimRight(siteURL, "/"),
		logger:  logger.With("component", "telegram"),
	}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

// NotifyNewPost sends an HTML-formatted announcement with a link to the post.
func (n *TelegramNotifier) NotifyNewPost(_ context.Context, event ports.PostEvent) error {
	text := formatTelegramMessage(event, n.siteURL)

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(n.chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(n.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = false

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("post announced", "post_id", event.PostID)
	return nil
}

func formatTelegramMessage(event ports.PostEvent, siteURL string) string {
	var b strings.Builder
	b.WriteString("📰 <b>Nova Notícia!</b>\n\n")
	b.WriteString(fmt.Sprintf("<b>%s</b>\n", event.Title))
	if event.Excerpt != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", event.Excerpt))
	}
	b.WriteString(fmt.Sprintf("\n%s/noticia/%s", siteURL, event.Slug))
	return b.String()
}
