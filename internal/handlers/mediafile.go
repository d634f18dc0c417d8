package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eartinityop/TG-File-streaming/internal/media"
)

// MediaFileHandler serves previously cached media by storage key.
type MediaFileHandler struct {
	logger *slog.Logger
	store  media.Store
}

// NewMediaFileHandler creates the media serving handler.
func NewMediaFileHandler(log *slog.Logger, store media.Store) *MediaFileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MediaFileHandler{
		logger: log.With(slog.String("handler", "media_file")),
		store:  store,
	}
}

// Register registers the media serving route.
func (h *MediaFileHandler) Register(e *echo.Echo) {
	e.GET("/media/:key", h.Get)
}

// Get streams a cache entry. Unknown or malformed keys are a 404; the
// distinction is of no use to the caller.
func (h *MediaFileHandler) Get(c echo.Context) error {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		return echo.NewHTTPError(http.StatusNotFound, "media not found")
	}
	reader, err := h.store.Open(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, media.ErrCacheMiss) || errors.Is(err, media.ErrPathTraversal) {
			return echo.NewHTTPError(http.StatusNotFound, "media not found")
		}
		h.logger.Error("open cache entry failed", slog.String("key", key), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "open media failed")
	}
	defer func() {
		_ = reader.Close()
	}()
	return c.Stream(http.StatusOK, media.ContentTypeForKey(key), reader)
}
