package telegram

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/eartinityop/TG-File-streaming/internal/media"
)

// ErrNoMedia indicates the message carries nothing resolvable.
var ErrNoMedia = errors.New("message has no media attachment")

var validate = validator.New()

// ExtractReference builds a validated MediaReference from an inbound
// message. Exactly one attachment kind is picked, in the order Telegram
// clients usually populate them. Malformed payloads are rejected here,
// before the resolver ever sees them.
func ExtractReference(msg *tgbotapi.Message) (media.MediaReference, error) {
	if msg == nil {
		return media.MediaReference{}, ErrNoMedia
	}
	var ref media.MediaReference
	switch {
	case msg.Video != nil:
		ref = media.MediaReference{
			FileID:       msg.Video.FileID,
			DeclaredSize: int64(msg.Video.FileSize),
			OriginalName: msg.Video.FileName,
			Mime:         msg.Video.MimeType,
		}
	case msg.Document != nil:
		ref = media.MediaReference{
			FileID:       msg.Document.FileID,
			DeclaredSize: int64(msg.Document.FileSize),
			OriginalName: msg.Document.FileName,
			Mime:         msg.Document.MimeType,
		}
	case msg.Audio != nil:
		ref = media.MediaReference{
			FileID:       msg.Audio.FileID,
			DeclaredSize: int64(msg.Audio.FileSize),
			OriginalName: msg.Audio.FileName,
			Mime:         msg.Audio.MimeType,
		}
	case msg.Voice != nil:
		ref = media.MediaReference{
			FileID:       msg.Voice.FileID,
			DeclaredSize: int64(msg.Voice.FileSize),
			Mime:         msg.Voice.MimeType,
		}
	case msg.Animation != nil:
		ref = media.MediaReference{
			FileID:       msg.Animation.FileID,
			DeclaredSize: int64(msg.Animation.FileSize),
			OriginalName: msg.Animation.FileName,
			Mime:         msg.Animation.MimeType,
		}
	case len(msg.Photo) > 0:
		photo := pickPhoto(msg.Photo)
		ref = media.MediaReference{
			FileID:       photo.FileID,
			DeclaredSize: int64(photo.FileSize),
			// Telegram re-encodes photos as JPEG.
			Mime: "image/jpeg",
		}
	default:
		return media.MediaReference{}, ErrNoMedia
	}
	if err := validate.Struct(ref); err != nil {
		return media.MediaReference{}, fmt.Errorf("invalid media reference: %w", err)
	}
	return ref, nil
}

// pickPhoto selects the largest rendition of a photo.
func pickPhoto(items []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := items[0]
	for _, item := range items[1:] {
		if item.FileSize > best.FileSize {
			best = item
			continue
		}
		if item.Width*item.Height > best.Width*best.Height {
			best = item
		}
	}
	return best
}
