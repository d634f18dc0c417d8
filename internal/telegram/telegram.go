// Package telegram wraps the Telegram Bot API: locating files, sending
// messages, and webhook registration.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/eartinityop/TG-File-streaming/internal/config"
	"github.com/eartinityop/TG-File-streaming/internal/media"
)

// WebhookPath is the route updates are delivered to.
const WebhookPath = "/telegram/webhook"

// Client implements media.Locator against the Telegram Bot API and
// delivers outbound messages.
type Client struct {
	logger      *slog.Logger
	bot         *tgbotapi.BotAPI
	token       string
	secret      string
	adminChatID int64
}

// NewClient creates a Client. apiTimeout bounds every Bot API call.
func NewClient(log *slog.Logger, cfg config.TelegramConfig, apiTimeout time.Duration) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, &http.Client{Timeout: apiTimeout})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	c := &Client{
		logger:      log.With(slog.String("service", "telegram")),
		bot:         bot,
		token:       cfg.BotToken,
		secret:      cfg.WebhookSecret,
		adminChatID: cfg.AdminChatID,
	}
	c.logger.Info("bot authorized", slog.String("username", bot.Self.UserName))
	return c, nil
}

// Locate calls getFile to obtain the authoritative size and a
// time-bounded download URL for a file reference. It mutates no local
// state; repeated calls are safe.
func (c *Client) Locate(ctx context.Context, fileID string) (media.Located, error) {
	if err := ctx.Err(); err != nil {
		return media.Located{}, fmt.Errorf("%w: %v", media.ErrTransientNetwork, err)
	}
	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return media.Located{}, mapAPIError(err)
	}
	return media.Located{
		SizeBytes: int64(file.FileSize),
		FetchURL:  file.Link(c.token),
	}, nil
}

// Send delivers a plain-text message to a chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// mapAPIError translates Bot API and transport failures into the
// locator error taxonomy. Transport errors (including timeouts) are
// transient; a 400 about the file itself means it does not exist; any
// other API error payload is a provider rejection.
func mapAPIError(err error) error {
	var apiErr tgbotapi.Error
	if errors.As(err, &apiErr) {
		return mapAPIErrorPayload(apiErr)
	}
	var apiErrPtr *tgbotapi.Error
	if errors.As(err, &apiErrPtr) {
		return mapAPIErrorPayload(*apiErrPtr)
	}
	return fmt.Errorf("%w: %v", media.ErrTransientNetwork, err)
}

func mapAPIErrorPayload(apiErr tgbotapi.Error) error {
	msg := strings.ToLower(apiErr.Message)
	if apiErr.Code == http.StatusBadRequest &&
		(strings.Contains(msg, "not found") || strings.Contains(msg, "invalid file")) {
		return fmt.Errorf("%w: %s", media.ErrFileNotFound, apiErr.Message)
	}
	return fmt.Errorf("%w: %s", media.ErrProviderRejected, apiErr.Message)
}
