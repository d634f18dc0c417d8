package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/eartinityop/TG-File-streaming/internal/media"
	"github.com/eartinityop/TG-File-streaming/internal/telegram"
)

type fakeResolver struct {
	loc   media.ResolvedLocation
	calls atomic.Int32
}

func (f *fakeResolver) Resolve(_ context.Context, _ media.MediaReference) media.ResolvedLocation {
	f.calls.Add(1)
	return f.loc
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	ch   chan sentMessage
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan sentMessage, 8)}
}

func (f *fakeNotifier) Send(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	f.mu.Unlock()
	f.ch <- sentMessage{chatID: chatID, text: text}
	return nil
}

func (f *fakeNotifier) wait(t *testing.T) sentMessage {
	t.Helper()
	select {
	case msg := <-f.ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound message")
		return sentMessage{}
	}
}

func postUpdate(t *testing.T, h *WebhookHandler, update tgbotapi.Update, secret string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.Register(e)
	payload, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, telegram.WebhookPath, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(secretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func videoUpdate(chatID int64) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
			Video: &tgbotapi.Video{
				FileID:   "vid-1",
				FileSize: 5 << 20,
				FileName: "movie.mkv",
				MimeType: "video/x-matroska",
			},
		},
	}
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	notifier := newFakeNotifier()
	h := NewWebhookHandler(nil, resolver, notifier, "expected-secret", time.Second)

	rec := postUpdate(t, h, videoUpdate(42), "wrong-secret")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resolver.calls.Load() != 0 {
		t.Fatalf("resolver must not run on rejected updates")
	}
}

func TestWebhookAcceptsMatchingSecret(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{loc: media.ResolvedLocation{Kind: media.LocationRemote, URL: "http://u/f"}}
	notifier := newFakeNotifier()
	h := NewWebhookHandler(nil, resolver, notifier, "expected-secret", time.Second)

	rec := postUpdate(t, h, videoUpdate(42), "expected-secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	notifier.wait(t)
}

func TestWebhookStartCommand(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	notifier := newFakeNotifier()
	h := NewWebhookHandler(nil, resolver, notifier, "", time.Second)

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 42, Type: "private"},
			Text: "/start",
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: 6},
			},
		},
	}
	rec := postUpdate(t, h, update, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	msg := notifier.wait(t)
	if msg.chatID != 42 {
		t.Fatalf("welcome sent to wrong chat: %d", msg.chatID)
	}
	if msg.text != media.FormatWelcome() {
		t.Fatalf("unexpected welcome text: %q", msg.text)
	}
	if resolver.calls.Load() != 0 {
		t.Fatalf("commands must not trigger resolution")
	}
}

func TestWebhookMediaMessageResolvesAndReplies(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{loc: media.ResolvedLocation{
		Kind:       media.LocationCached,
		StorageKey: "abc.mkv",
		URL:        "http://example.test/media/abc.mkv",
	}}
	notifier := newFakeNotifier()
	h := NewWebhookHandler(nil, resolver, notifier, "", time.Second)

	rec := postUpdate(t, h, videoUpdate(42), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	msg := notifier.wait(t)
	if msg.chatID != 42 {
		t.Fatalf("reply sent to wrong chat: %d", msg.chatID)
	}
	if msg.text != media.FormatLocation(resolver.loc) {
		t.Fatalf("unexpected reply: %q", msg.text)
	}
	if resolver.calls.Load() != 1 {
		t.Fatalf("expected exactly one resolution, got %d", resolver.calls.Load())
	}
}

func TestWebhookIgnoresTextOnlyMessages(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	notifier := newFakeNotifier()
	h := NewWebhookHandler(nil, resolver, notifier, "", time.Second)

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 42, Type: "private"},
			Text: "hello there",
		},
	}
	rec := postUpdate(t, h, update, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resolver.calls.Load() != 0 {
		t.Fatalf("text messages must not trigger resolution")
	}
}

func TestWebhookIgnoresEmptyUpdate(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	notifier := newFakeNotifier()
	h := NewWebhookHandler(nil, resolver, notifier, "", time.Second)

	rec := postUpdate(t, h, tgbotapi.Update{}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(nil, &fakeResolver{}, newFakeNotifier(), "", time.Second)
	e := echo.New()
	h.Register(e)
	req := httptest.NewRequest(http.MethodPost, telegram.WebhookPath, bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
