package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eartinityop/TG-File-streaming/internal/media"
	"github.com/eartinityop/TG-File-streaming/internal/media/providers/diskcache"
)

type mapStore struct {
	entries map[string][]byte
}

func (s *mapStore) Store(_ context.Context, _ string, _ string) error { return nil }

func (s *mapStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.entries[key]
	if !ok {
		return nil, media.ErrCacheMiss
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func getMedia(h *MediaFileHandler, key string) *httptest.ResponseRecorder {
	e := echo.New()
	h.Register(e)
	req := httptest.NewRequest(http.MethodGet, "/media/"+key, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMediaFileServesStoredEntry(t *testing.T) {
	t.Parallel()

	store := &mapStore{entries: map[string][]byte{
		"abc.mp4": []byte("the actual video bytes"),
	}}
	h := NewMediaFileHandler(nil, store)

	rec := getMedia(h, "abc.mp4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "video/mp4" {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Body.String() != "the actual video bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestMediaFileUnknownKeyIs404(t *testing.T) {
	t.Parallel()

	h := NewMediaFileHandler(nil, &mapStore{entries: map[string][]byte{}})
	rec := getMedia(h, "nope.mp4")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// End-to-end resolution scenario: a file below the size limit is located,
// downloaded into the disk cache, and the resulting URL serves the
// original bytes over the media endpoint.
func TestResolveAndServeRoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("five-megabyte-stand-in "), 512)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer upstream.Close()

	store, err := diskcache.New(t.TempDir(), 5*time.Second)
	if err != nil {
		t.Fatalf("diskcache.New failed: %v", err)
	}
	locator := staticLocator{located: media.Located{SizeBytes: 5 << 20, FetchURL: upstream.URL}}
	resolver := media.NewResolver(nil, locator, store, "http://example.test", 20<<20)

	loc := resolver.Resolve(context.Background(), media.MediaReference{FileID: "vid-1", OriginalName: "movie.mkv"})
	if loc.Kind != media.LocationCached {
		t.Fatalf("expected cached, got %s (%s)", loc.Kind, loc.Reason)
	}

	h := NewMediaFileHandler(nil, store)
	rec := getMedia(h, loc.StorageKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Fatalf("served bytes differ from the upstream payload")
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "video/x-matroska" {
		t.Fatalf("unexpected content type %q", got)
	}
}

type staticLocator struct {
	located media.Located
}

func (l staticLocator) Locate(_ context.Context, _ string) (media.Located, error) {
	return l.located, nil
}
