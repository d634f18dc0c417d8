package media

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultExtension is appended when neither the original name nor the
	// MIME type yields a usable suffix. VLC accepts URLs ending in .mp4
	// regardless of the actual container, which is why the original
	// service forced it.
	DefaultExtension = ".mp4"

	// maxExtensionLength bounds how long an original-name suffix may be
	// (without the dot) before it is discarded as implausible.
	maxExtensionLength = 5
)

// SanitizeName strips every character outside [A-Za-z0-9._-] from name.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StorageKeyFor generates a collision-resistant storage key for a download:
// a fresh UUID token plus a sanitized extension. Keys are never reused,
// even for identical source files.
func StorageKeyFor(originalName, mime string) string {
	return uuid.NewString() + ExtensionFor(originalName, mime)
}

// ExtensionFor picks the extension for a storage key, in priority order:
// the original name's suffix when present and at most maxExtensionLength
// characters, else one derived from the MIME type, else DefaultExtension.
// It never fails; unrecognized input degrades to the default.
func ExtensionFor(originalName, mime string) string {
	name := SanitizeName(originalName)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext != "" && len(ext) <= maxExtensionLength {
		return "." + strings.ToLower(ext)
	}
	if fromMime := extensionFromMime(mime); fromMime != "" {
		return fromMime
	}
	return DefaultExtension
}

func extensionFromMime(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/x-matroska":
		return ".mkv"
	case "video/quicktime":
		return ".mov"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav":
		return ".wav"
	case "audio/flac":
		return ".flac"
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}

// ContentTypeForKey maps a storage key's extension back to a MIME type
// for the serving endpoint. Unknown extensions fall back to a generic
// binary type.
func ContentTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
