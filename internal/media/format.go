package media

import "strings"

const vlcSteps = "1. Open VLC Player\n" +
	"2. Media > Open Network Stream\n" +
	"3. Paste the URL above\n" +
	"4. Click Play"

// FormatLocation renders the user-facing instructions for a resolution
// outcome. Pure; no I/O.
func FormatLocation(loc ResolvedLocation) string {
	switch loc.Kind {
	case LocationCached:
		return "🎬 VLC Streaming Link:\n\n" +
			loc.URL + "\n\n" +
			vlcSteps + "\n\n" +
			"💾 This copy is stored on the server and stays valid while it is running."
	case LocationRemote:
		return "🎬 VLC Streaming Link (valid 1 hour):\n\n" +
			loc.URL + "\n\n" +
			vlcSteps + "\n\n" +
			"⚠️ Note: Link expires in 1 hour"
	default:
		reason := strings.TrimSpace(loc.Reason)
		if reason == "" {
			reason = "the file could not be resolved"
		}
		return "⚠️ Could not prepare a streaming link: " + reason + ".\n" +
			"Please resend the file to try again."
	}
}

// FormatWelcome is the reply to /start and /help.
func FormatWelcome() string {
	return "🎬 Send me any video file to get a VLC streaming link!\n\n" +
		"🔗 I'll provide a URL you can open as a network stream\n" +
		"⏳ Direct links are valid for 1 hour; cached copies last longer\n" +
		"📦 Works with files of ANY size"
}
