package formats

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ytget/invidious/api"
	"github.com/ytget/invidious/internal/logger"
	"github.com/ytget/invidious/internal/mimeext"
	"github.com/ytget/invidious/types"
)

const codecNone = "none"

var (
	heightRe = regexp.MustCompile(`([0-9]{3,4})p`)
	sizeRe   = regexp.MustCompile(`^\s*([0-9]+)\s*[xX]\s*([0-9]+)\s*$`)
)

func parseHeight(label string) int {
	m := heightRe.FindStringSubmatch(label)
	if len(m) >= 2 {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return 0
}

func parseSize(size string) (int, int) {
	m := sizeRe.FindStringSubmatch(size)
	if m == nil {
		return 0, 0
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0
	}
	return w, h
}

// mediaType is the parsed form of a `type/subtype; codecs="a, b"` string.
type mediaType struct {
	base   string
	top    string
	codecs []string
}

// parseMediaType never fails; missing parts stay empty.
func parseMediaType(s string) mediaType {
	var mt mediaType
	s = strings.TrimSpace(s)
	if s == "" {
		return mt
	}
	head, params, _ := strings.Cut(s, ";")
	mt.base = mimeext.Base(head)
	mt.top = mimeext.TopLevel(head)

	for _, p := range strings.Split(params, ";") {
		key, val, ok := strings.Cut(p, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "codecs") {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		for _, c := range strings.Split(val, ",") {
			if c = strings.TrimSpace(c); c != "" {
				mt.codecs = append(mt.codecs, c)
			}
		}
		break
	}
	return mt
}

// Derive builds the metadata of one format entry. Every field is computed
// from raw alone; anything that cannot be parsed is left at its zero value.
func Derive(raw api.Format, muxed bool) types.Format {
	mt := parseMediaType(string(raw.Type))
	f := types.Format{
		FormatID:  string(raw.Itag),
		Container: string(raw.Container),
		Quality:   string(raw.QualityLabel),
		Muxed:     muxed,
	}

	if ext, ok := mimeext.Lookup(mt.base); ok {
		f.Ext = ext
	} else if raw.Container != "" {
		f.Ext = strings.ToLower(string(raw.Container))
	}
	if raw.Bitrate.Valid {
		f.TBR = raw.Bitrate.Value / 1000
	}

	switch {
	case muxed:
		if len(mt.codecs) > 0 {
			f.VCodec = mt.codecs[0]
		}
		if len(mt.codecs) > 1 {
			f.ACodec = mt.codecs[1]
		}
	case mt.top == "audio":
		f.ACodec = strings.Join(mt.codecs, ", ")
		f.VCodec = codecNone
	case mt.top == "video":
		f.VCodec = strings.Join(mt.codecs, ", ")
		f.ACodec = codecNone
	}

	if raw.FPS.Valid {
		f.FPS = raw.FPS.Value
	}
	if raw.AudioChannels.Valid {
		f.AudioChannels = int(raw.AudioChannels.Value)
	}
	if raw.AudioSampleRate.Valid {
		f.ASR = int(raw.AudioSampleRate.Value)
	}
	if raw.Clen.Valid {
		f.Filesize = raw.Clen.Int()
	}

	f.Resolution = strings.TrimSpace(string(raw.Size))
	if f.Resolution == "" {
		f.Resolution = strings.TrimSpace(string(raw.Resolution))
	}
	f.Width, f.Height = parseSize(string(raw.Size))
	if f.Height == 0 {
		f.Height = parseHeight(string(raw.QualityLabel))
	}
	if f.Height == 0 {
		f.Height = parseHeight(string(raw.Resolution))
	}
	return f
}

// PatchURL moves raw onto origin's scheme and host. Relative URLs are
// resolved against origin. The boolean is false when raw is empty or
// cannot be parsed.
func PatchURL(raw, origin string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	base, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() && u.Host == "" {
		return base.ResolveReference(u).String(), true
	}
	u.Scheme = base.Scheme
	u.Host = base.Host
	return u.String(), true
}

// ParseFormats maps the adaptive and muxed stream lists of a video payload
// to formats whose URLs point at origin. Adaptive formats come first.
// Entries without a usable URL are skipped.
func ParseFormats(adaptive, muxed []api.Format, origin string) []types.Format {
	out := make([]types.Format, 0, len(adaptive)+len(muxed))
	add := func(list []api.Format, isMuxed bool) {
		for _, raw := range list {
			u, ok := PatchURL(string(raw.URL), origin)
			if !ok {
				logger.WithComponent(logger.ComponentFormat).Debug("skipping format without url", map[string]interface{}{
					"itag": string(raw.Itag),
				})
				continue
			}
			f := Derive(raw, isMuxed)
			f.URL = u
			if parsed, err := url.Parse(u); err == nil {
				f.Protocol = parsed.Scheme
			}
			out = append(out, f)
		}
	}
	add(adaptive, false)
	add(muxed, true)
	return out
}

// Thumbnails maps the thumbnail list preserving order. The first entry gets
// the highest preference (len(raw)) and the last gets 1.
func Thumbnails(raw []api.Thumbnail, origin string) []types.Thumbnail {
	out := make([]types.Thumbnail, 0, len(raw))
	for i, t := range raw {
		th := types.Thumbnail{
			ID:         string(t.Quality),
			URL:        string(t.URL),
			Width:      int(t.Width.Int()),
			Height:     int(t.Height.Int()),
			Preference: len(raw) - i,
		}
		if strings.HasPrefix(th.URL, "/") && !strings.HasPrefix(th.URL, "//") {
			if u, ok := PatchURL(th.URL, origin); ok {
				th.URL = u
			}
		}
		out = append(out, th)
	}
	return out
}

// SelectFormat chooses a format according to a selector.
// Supported selectors:
//   - best: highest quality muxed format (height, then bitrate)
//   - worst: lowest quality muxed format
//   - bestvideo / bestaudio: best video-only or audio-only format
//   - itag=NN: specific format by itag
//   - height<=NNN / height>=NNN: height constraints
//
// ext ("mp4", "webm") filters by extension when it leaves any candidate.
// With no selector, itag 22 is preferred, then itag 18, then the best muxed
// format, else the first available. nil is returned for an empty list.
func SelectFormat(list []types.Format, quality, ext string) *types.Format {
	if len(list) == 0 {
		return nil
	}
	filtered := make([]types.Format, 0, len(list))
	for i := range list {
		if extEquals(list[i], ext) {
			filtered = append(filtered, list[i])
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, list...)
	}

	q := strings.TrimSpace(strings.ToLower(quality))
	if strings.HasPrefix(q, "itag=") {
		id := strings.TrimPrefix(q, "itag=")
		for i := range filtered {
			if itagEquals(filtered[i], id) {
				return &filtered[i]
			}
		}
	}

	var minH, maxH int
	if strings.HasPrefix(q, "height<=") {
		if v, err := strconv.Atoi(strings.TrimPrefix(q, "height<=")); err == nil {
			maxH = v
		}
	}
	if strings.HasPrefix(q, "height>=") {
		if v, err := strconv.Atoi(strings.TrimPrefix(q, "height>=")); err == nil {
			minH = v
		}
	}
	if minH > 0 || maxH > 0 {
		tmp := make([]types.Format, 0, len(filtered))
		for i := range filtered {
			if withinHeight(filtered[i], minH, maxH) {
				tmp = append(tmp, filtered[i])
			}
		}
		if len(tmp) > 0 {
			filtered = tmp
		}
		return pickBest(preferMuxed(filtered))
	}

	switch q {
	case "best":
		return pickBest(preferMuxed(filtered))
	case "worst":
		return pickWorst(preferMuxed(filtered))
	case "bestvideo":
		if only := filter(filtered, isVideoOnly); len(only) > 0 {
			return pickBest(only)
		}
		return pickBest(filtered)
	case "bestaudio":
		if only := filter(filtered, isAudioOnly); len(only) > 0 {
			return pickBest(only)
		}
		return pickBest(filtered)
	}

	for _, id := range []string{"22", "18"} {
		for i := range filtered {
			if filtered[i].FormatID == id {
				return &filtered[i]
			}
		}
	}
	if muxed := filter(filtered, isMuxed); len(muxed) > 0 {
		return pickBest(muxed)
	}
	return &filtered[0]
}

func preferMuxed(list []types.Format) []types.Format {
	if muxed := filter(list, isMuxed); len(muxed) > 0 {
		return muxed
	}
	return list
}

func filter(list []types.Format, keep func(types.Format) bool) []types.Format {
	var out []types.Format
	for i := range list {
		if keep(list[i]) {
			out = append(out, list[i])
		}
	}
	return out
}

func pickBest(list []types.Format) *types.Format {
	best := list[0]
	for _, f := range list[1:] {
		if betterByHeightThenBitrate(f, best) {
			best = f
		}
	}
	return &best
}

func pickWorst(list []types.Format) *types.Format {
	worst := list[0]
	for _, f := range list[1:] {
		if betterByHeightThenBitrate(worst, f) {
			worst = f
		}
	}
	return &worst
}
