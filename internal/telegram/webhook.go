package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RegisterWebhook points Telegram at this service's webhook endpoint and
// notifies the admin chat that the bot is up. baseURL is the externally
// visible root of the service.
//
// setWebhook goes through MakeRequest because the library's
// WebhookConfig predates the secret_token parameter.
func (c *Client) RegisterWebhook(ctx context.Context, baseURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	webhookURL := strings.TrimRight(baseURL, "/") + WebhookPath
	params := tgbotapi.Params{}
	params.AddNonEmpty("url", webhookURL)
	params.AddNonEmpty("secret_token", c.secret)
	if _, err := c.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	c.logger.Info("webhook registered", slog.String("url", webhookURL))

	if c.adminChatID != 0 {
		text := "🤖 Bot started successfully!\nWebhook: " + webhookURL + "\n" +
			"Ready to provide VLC streaming links."
		if err := c.Send(ctx, c.adminChatID, text); err != nil {
			c.logger.Warn("admin notification failed",
				slog.String("admin_chat_id", strconv.FormatInt(c.adminChatID, 10)),
				slog.Any("error", err),
			)
		}
	}
	return nil
}
