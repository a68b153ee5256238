// Package sanitize builds file names that are safe on every platform.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxFilenameLength is the maximum allowed length for the filename base.
	MaxFilenameLength = 120
	// DefaultExt is the extension used when none is provided.
	DefaultExt = "info.json"
	// DefaultName is the replacement name when the title is empty.
	DefaultName = "untitled"
)

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// ToSafeFilename builds a cross-platform safe filename from title and
// extension (without leading dot).
func ToSafeFilename(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		name = DefaultName
	}
	if len(name) > MaxFilenameLength {
		name = truncate(name, MaxFilenameLength)
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Clean(name + "." + ext)
}

// InfoFilename names the metadata file of an extracted item:
// "<title> [<id>].info.json".
func InfoFilename(title, id string) string {
	id = unsafeChars.ReplaceAllString(strings.TrimSpace(id), "_")
	if id == "" {
		return ToSafeFilename(title, DefaultExt)
	}
	suffix := " [" + id + "]"
	name := ToSafeFilename(title, "x")
	name = strings.TrimSuffix(name, ".x")
	if len(name)+len(suffix) > MaxFilenameLength {
		name = truncate(name, MaxFilenameLength-len(suffix))
	}
	return name + suffix + "." + DefaultExt
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
