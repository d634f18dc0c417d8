// Package diskcache implements media.Store on the local filesystem.
// Payloads are streamed from their source URL into a temp file and
// renamed into place on success, so a partially written entry is never
// visible to Open. The namespace is append-only; nothing here evicts.
package diskcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eartinityop/TG-File-streaming/internal/media"
)

// Provider stores cache entries as flat files under root.
type Provider struct {
	root    string
	client  *http.Client
	timeout time.Duration
}

// New creates a disk-backed cache provider rooted at root. timeout
// bounds each payload transfer end to end.
func New(root string, timeout time.Duration) (*Provider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve cache root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &Provider{
		root:    abs,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}, nil
}

// Store downloads sourceURL into the cache under key. The transfer is
// streamed with bounded memory. On any failure the temp file is removed
// and the key remains absent.
func (p *Provider) Store(ctx context.Context, sourceURL string, key string) error {
	dest, err := p.keyPath(key)
	if err != nil {
		return err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", media.ErrDownloadFailed, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return classifyTransferError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", media.ErrDownloadFailed, resp.StatusCode)
	}

	tempFile, err := os.CreateTemp(p.root, ".download-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", media.ErrWriteFailed, err)
	}
	tempPath := tempFile.Name()
	keepFile := false
	defer func() {
		_ = tempFile.Close()
		if !keepFile {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		return classifyTransferError(err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", media.ErrWriteFailed, err)
	}
	if err := os.Rename(tempPath, dest); err != nil {
		return fmt.Errorf("%w: finalize entry: %v", media.ErrWriteFailed, err)
	}
	keepFile = true
	return nil
}

// Open returns a reader for a stored key. Returns media.ErrCacheMiss
// when the key has never been stored.
func (p *Provider) Open(_ context.Context, key string) (io.ReadCloser, error) {
	dest, err := p.keyPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, media.ErrCacheMiss
		}
		return nil, fmt.Errorf("open entry: %w", err)
	}
	return f, nil
}

// keyPath converts a storage key into its file path, rejecting
// separators and traversal so keys cannot escape the cache root.
func (p *Provider) keyPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || key == "." || key == ".." {
		return "", fmt.Errorf("%w: empty key", media.ErrPathTraversal)
	}
	if strings.ContainsAny(key, "/\\") {
		return "", fmt.Errorf("%w: %s", media.ErrPathTraversal, key)
	}
	joined := filepath.Join(p.root, key)
	if !strings.HasPrefix(joined, p.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", media.ErrPathTraversal, key)
	}
	return joined, nil
}

func classifyTransferError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", media.ErrDownloadTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", media.ErrDownloadFailed, err)
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%w: %v", media.ErrWriteFailed, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", media.ErrDownloadTimeout, err)
	}
	return fmt.Errorf("%w: %v", media.ErrDownloadFailed, err)
}
