package mimeext

import (
	"strings"
)

const (
	// DefaultExt is the extension of MP4 video.
	DefaultExt = "mp4"

	// ExtM4A is the file extension for MP4 audio.
	ExtM4A = "m4a"
	// ExtWebM is the file extension for WebM media.
	ExtWebM = "webm"

	// MimeVideoMP4 is the MIME type for MP4 video.
	MimeVideoMP4 = "video/mp4"
	// MimeAudioMP4 is the MIME type for MP4 audio.
	MimeAudioMP4 = "audio/mp4"
	// MimeVideoWebM is the MIME type for WebM video.
	MimeVideoWebM = "video/webm"
	// MimeAudioWebM is the MIME type for WebM audio.
	MimeAudioWebM = "audio/webm"
)

// full MIME types whose extension differs from a plain subtype mapping
var fullTypes = map[string]string{
	MimeVideoMP4:  DefaultExt,
	MimeAudioMP4:  ExtM4A,
	MimeVideoWebM: ExtWebM,
	MimeAudioWebM: ExtWebM,
	"audio/mpeg":  "mp3",
	"audio/ogg":   "ogg",
	"video/ogg":   "ogv",
}

var subtypes = map[string]string{
	"3gpp":              "3gp",
	"x-flv":             "flv",
	"x-matroska":        "mkv",
	"quicktime":         "mov",
	"x-mpegurl":         "m3u8",
	"vnd.apple.mpegurl": "m3u8",
	"dash+xml":          "mpd",
	"mp2t":              "ts",
	"x-mp4-fragmented":  "mp4",
	"vnd.ms-sstr+xml":   "ism",
	"x-ms-wmv":          "wmv",
	"mp4a-latm":         "m4a",
	"webm":              ExtWebM,
	"x-wav":             "wav",
	"wav":               "wav",
	"aac":               "aac",
	"flac":              "flac",
	"opus":              "opus",
	"vnd.dlna.mpeg-tts": "mpeg",
}

// Base strips parameters such as codecs from a MIME string and lowercases it.
func Base(mime string) string {
	base := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	return base
}

// Lookup returns the extension for a MIME type. The boolean is false when
// mime is empty or has no "type/subtype" shape.
func Lookup(mime string) (string, bool) {
	base := Base(mime)
	if base == "" {
		return "", false
	}
	if ext, ok := fullTypes[base]; ok {
		return ext, true
	}
	parts := strings.Split(base, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	if ext, ok := subtypes[parts[1]]; ok {
		return ext, true
	}
	return parts[1], true
}

// TopLevel returns the top-level media type ("audio", "video", ...) or "".
func TopLevel(mime string) string {
	base := Base(mime)
	i := strings.Index(base, "/")
	if i <= 0 {
		return ""
	}
	return base[:i]
}
