package media

import (
	"context"
	"io"
)

// MediaReference points at a remote Telegram file before resolution.
// It is built once at the inbound boundary and treated as read-only
// by everything downstream.
type MediaReference struct {
	// FileID is the opaque upstream identifier.
	FileID string `validate:"required"`
	// DeclaredSize is the size announced by the inbound event. It may be
	// zero; the locator returns the authoritative size.
	DeclaredSize int64 `validate:"gte=0"`
	// OriginalName is the filename as sent by the user, if any.
	OriginalName string
	// Mime is the declared MIME type, if any.
	Mime string
}

// LocationKind discriminates the outcome of a resolution.
type LocationKind string

const (
	// LocationRemote is a direct upstream URL, valid for a bounded time.
	LocationRemote LocationKind = "remote"
	// LocationCached is a locally served URL, valid for the process lifetime.
	LocationCached LocationKind = "cached"
	// LocationFailed is terminal; Reason carries the human-readable cause.
	LocationFailed LocationKind = "failed"
)

// ResolvedLocation is the single outcome produced for a MediaReference.
type ResolvedLocation struct {
	Kind       LocationKind
	URL        string
	StorageKey string
	Reason     string
}

// Located is the upstream metadata for a file reference.
type Located struct {
	SizeBytes int64
	FetchURL  string
}

// Locator resolves an opaque file reference to its authoritative size
// and a time-bounded download URL.
type Locator interface {
	Locate(ctx context.Context, fileID string) (Located, error)
}

// Store persists downloaded payloads under generated keys and serves
// them back. Keys are unique per resolution and entries are immutable
// once written.
type Store interface {
	// Store streams the payload at sourceURL to durable storage under key.
	// A failed Store must leave no entry visible to Open.
	Store(ctx context.Context, sourceURL string, key string) error
	// Open returns a reader for a previously stored key.
	// Returns ErrCacheMiss when the key is unknown.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
