package media

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Resolver maps an inbound MediaReference to a playable URL. Each
// reference is resolved exactly once; no step is retried automatically.
type Resolver struct {
	logger    *slog.Logger
	locator   Locator
	store     Store
	baseURL   string
	sizeLimit int64
}

// NewResolver creates a Resolver. baseURL is the externally visible root
// used to build cached URLs; sizeLimit is the inclusive byte threshold
// above which files are passed through directly. A sizeLimit of zero
// makes every resolution a direct passthrough.
func NewResolver(log *slog.Logger, locator Locator, store Store, baseURL string, sizeLimit int64) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		logger:    log.With(slog.String("service", "resolver")),
		locator:   locator,
		store:     store,
		baseURL:   strings.TrimRight(baseURL, "/"),
		sizeLimit: sizeLimit,
	}
}

// Resolve runs the resolution decision tree: locate the file upstream,
// pass oversized files through as direct URLs, otherwise download into
// the local cache. A failed download degrades to the direct URL; a
// failed locate is terminal for this reference.
func (r *Resolver) Resolve(ctx context.Context, ref MediaReference) ResolvedLocation {
	located, err := r.locator.Locate(ctx, ref.FileID)
	if err != nil {
		r.logger.Warn("locate failed",
			slog.String("file_id", ref.FileID),
			slog.Any("error", err),
		)
		return ResolvedLocation{Kind: LocationFailed, Reason: failureReason(err)}
	}

	// Size equal to the limit still qualifies for caching.
	if r.sizeLimit == 0 || located.SizeBytes > r.sizeLimit {
		r.logger.Info("passing through direct link",
			slog.String("file_id", ref.FileID),
			slog.Int64("size_bytes", located.SizeBytes),
			slog.Int64("size_limit", r.sizeLimit),
		)
		return ResolvedLocation{Kind: LocationRemote, URL: located.FetchURL}
	}

	key := StorageKeyFor(ref.OriginalName, ref.Mime)
	if err := r.store.Store(ctx, located.FetchURL, key); err != nil {
		// The upstream URL is still usable, so degrade instead of failing.
		r.logger.Warn("store failed, falling back to direct link",
			slog.String("file_id", ref.FileID),
			slog.String("storage_key", key),
			slog.Any("error", err),
		)
		return ResolvedLocation{Kind: LocationRemote, URL: located.FetchURL}
	}

	r.logger.Info("cached",
		slog.String("file_id", ref.FileID),
		slog.String("storage_key", key),
		slog.Int64("size_bytes", located.SizeBytes),
	)
	return ResolvedLocation{
		Kind:       LocationCached,
		StorageKey: key,
		URL:        r.baseURL + "/media/" + key,
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return "the file could not be found on Telegram"
	case errors.Is(err, ErrTransientNetwork):
		return "a network error occurred while contacting Telegram"
	case errors.Is(err, ErrProviderRejected):
		return "Telegram rejected the request for this file"
	default:
		return "the file could not be resolved"
	}
}
