package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/eartinityop/TG-File-streaming/internal/config"
	"github.com/eartinityop/TG-File-streaming/internal/media"
	"github.com/eartinityop/TG-File-streaming/internal/telegram"
)

type webhookResolver interface {
	Resolve(ctx context.Context, ref media.MediaReference) media.ResolvedLocation
}

type webhookNotifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives Telegram update callbacks. Updates are acked
// immediately; media resolution runs detached so a slow download never
// blocks the inbound stream.
type WebhookHandler struct {
	logger         *slog.Logger
	resolver       webhookResolver
	notifier       webhookNotifier
	secret         string
	resolveTimeout time.Duration
}

// NewWebhookHandler creates a webhook handler. secret, when non-empty,
// must match the X-Telegram-Bot-Api-Secret-Token header on every update.
func NewWebhookHandler(log *slog.Logger, resolver webhookResolver, notifier webhookNotifier, secret string, resolveTimeout time.Duration) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	if resolveTimeout <= 0 {
		resolveTimeout = time.Minute
	}
	return &WebhookHandler{
		logger:         log.With(slog.String("handler", "telegram_webhook")),
		resolver:       resolver,
		notifier:       notifier,
		secret:         secret,
		resolveTimeout: resolveTimeout,
	}
}

// NewWebhookServerHandler is a DI-friendly constructor for fx, using
// concrete types as parameters.
func NewWebhookServerHandler(log *slog.Logger, resolver *media.Resolver, client *telegram.Client, cfg config.Config) *WebhookHandler {
	// Leave headroom over the transfer timeout for locate and sendMessage.
	timeout := cfg.Media.DownloadTimeout() + cfg.Media.LocateTimeout() + 10*time.Second
	return NewWebhookHandler(log, resolver, client, cfg.Telegram.WebhookSecret, timeout)
}

// Register registers the webhook callback route.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST(telegram.WebhookPath, h.Handle)
}

// Handle processes one Telegram update.
func (h *WebhookHandler) Handle(c echo.Context) error {
	if h.secret != "" && c.Request().Header.Get(secretTokenHeader) != h.secret {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(payload)) > webhookMaxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
	}
	var update tgbotapi.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid update payload: %v", err))
	}
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return c.String(http.StatusOK, "OK")
	}
	chatID := msg.Chat.ID
	ctx := context.WithoutCancel(c.Request().Context())

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			if err := h.notifier.Send(ctx, chatID, media.FormatWelcome()); err != nil {
				h.logger.Error("send welcome failed", slog.Any("error", err))
			}
		}
		return c.String(http.StatusOK, "OK")
	}

	ref, err := telegram.ExtractReference(msg)
	if errors.Is(err, telegram.ErrNoMedia) {
		return c.String(http.StatusOK, "OK")
	}
	if err != nil {
		h.logger.Warn("rejected inbound media",
			slog.String("chat_id", strconv.FormatInt(chatID, 10)),
			slog.Any("error", err),
		)
		return c.String(http.StatusOK, "OK")
	}

	h.logger.Info("inbound media received",
		slog.String("chat_id", strconv.FormatInt(chatID, 10)),
		slog.String("file_id", ref.FileID),
		slog.Int64("declared_size", ref.DeclaredSize),
	)
	go h.resolveAndReply(ctx, chatID, ref)
	return c.String(http.StatusOK, "OK")
}

// resolveAndReply runs one resolution under its own timeout and sends
// the formatted outcome back to the chat.
func (h *WebhookHandler) resolveAndReply(ctx context.Context, chatID int64, ref media.MediaReference) {
	ctx, cancel := context.WithTimeout(ctx, h.resolveTimeout)
	defer cancel()
	loc := h.resolver.Resolve(ctx, ref)
	if err := h.notifier.Send(ctx, chatID, media.FormatLocation(loc)); err != nil {
		h.logger.Error("send resolution reply failed",
			slog.String("chat_id", strconv.FormatInt(chatID, 10)),
			slog.String("kind", string(loc.Kind)),
			slog.Any("error", err),
		)
	}
}
