// Package formats derives format and thumbnail metadata from Invidious API
// payloads and selects formats by simple criteria.
package formats

import (
	"strings"

	"github.com/ytget/invidious/types"
)

// extEquals checks that the format extension equals desiredExt.
// The desiredExt is case-insensitive and may start with a dot.
// If desiredExt is empty, the function returns true (no filtering).
func extEquals(format types.Format, desiredExt string) bool {
	desired := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(desiredExt)), ".")
	if desired == "" {
		return true
	}
	return strings.ToLower(format.Ext) == desired
}

// itagEquals checks that format's identifier matches id.
func itagEquals(format types.Format, id string) bool {
	return id != "" && format.FormatID == id
}

func isMuxed(format types.Format) bool {
	return format.Muxed
}

func isVideoOnly(format types.Format) bool {
	return !format.Muxed && !format.HasAudio()
}

func isAudioOnly(format types.Format) bool {
	return !format.Muxed && !format.HasVideo()
}

// heightOf prefers the parsed height and falls back to the quality label.
func heightOf(format types.Format) int {
	if format.Height > 0 {
		return format.Height
	}
	return parseHeight(format.Quality)
}

// withinHeight checks whether the format height is within [minHeight, maxHeight].
// A bound equal to 0 is ignored.
func withinHeight(format types.Format, minHeight int, maxHeight int) bool {
	if minHeight <= 0 && maxHeight <= 0 {
		return true
	}
	h := heightOf(format)
	if minHeight > 0 && h < minHeight {
		return false
	}
	if maxHeight > 0 && h > maxHeight {
		return false
	}
	return true
}

// betterByHeightThenBitrate reports whether candidate beats current, using
// height first and bitrate as a tiebreaker.
func betterByHeightThenBitrate(candidate types.Format, current types.Format) bool {
	candidateHeight := heightOf(candidate)
	currentHeight := heightOf(current)
	if candidateHeight != currentHeight {
		return candidateHeight > currentHeight
	}
	return candidate.TBR > current.TBR
}
