package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ytget/invidious/internal/logger"
)

// Number is a JSON number that may also arrive as a numeric string.
// Values that are neither leave Valid false instead of failing the decode.
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

// Int returns the value truncated to int64, or 0 when absent.
func (n Number) Int() int64 {
	if !n.Valid {
		return 0
	}
	return int64(n.Value)
}

// Text is a JSON string that may also arrive as a number.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*t = Text(s)
		return nil
	}
	if b[0] == '-' || (b[0] >= '0' && b[0] <= '9') {
		*t = Text(b)
	}
	return nil
}

// Bool is a JSON boolean that may also arrive as a string. Other values
// leave Valid false.
type Bool struct {
	Value bool
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Bool) UnmarshalJSON(b []byte) error {
	*f = Bool{}
	raw := string(bytes.TrimSpace(b))
	if raw != "true" && raw != "false" {
		var t Text
		_ = t.UnmarshalJSON(b)
		raw = strings.TrimSpace(string(t))
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		*f = Bool{Value: v, Valid: true}
	}
	return nil
}

// List is a JSON array whose malformed elements are dropped instead of
// failing the whole payload. A value that is not an array decodes as empty.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(b []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	out := make(List[T], 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			logger.WithComponent(logger.ComponentAPI).Debug("skipping malformed list entry", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// Strings is a list of strings. Numbers are kept in their JSON spelling;
// other values are dropped.
type Strings []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Strings) UnmarshalJSON(b []byte) error {
	*s = nil
	var l List[Text]
	if err := l.UnmarshalJSON(b); err != nil {
		return nil
	}
	for _, t := range l {
		if t != "" {
			*s = append(*s, string(t))
		}
	}
	return nil
}

// Video is the payload of GET /api/v1/videos/{id}.
type Video struct {
	Title            Text            `json:"title"`
	Description      Text            `json:"description"`
	Published        Number          `json:"published"`
	Author           Text            `json:"author"`
	AuthorID         Text            `json:"authorId"`
	AuthorURL        Text            `json:"authorUrl"`
	LengthSeconds    Number          `json:"lengthSeconds"`
	ViewCount        Number          `json:"viewCount"`
	LikeCount        Number          `json:"likeCount"`
	DislikeCount     Number          `json:"dislikeCount"`
	Keywords         Strings         `json:"keywords"`
	LiveNow          Bool            `json:"liveNow"`
	IsFamilyFriendly Bool            `json:"isFamilyFriendly"`
	AdaptiveFormats  List[Format]    `json:"adaptiveFormats"`
	FormatStreams    List[Format]    `json:"formatStreams"`
	VideoThumbnails  List[Thumbnail] `json:"videoThumbnails"`
}

// Format is one entry of adaptiveFormats or formatStreams. Every field is
// tolerant, so a wrongly typed value empties that field only.
type Format struct {
	URL             Text   `json:"url"`
	Type            Text   `json:"type"`
	Bitrate         Number `json:"bitrate"`
	Container       Text   `json:"container"`
	FPS             Number `json:"fps"`
	Size            Text   `json:"size"`
	AudioChannels   Number `json:"audioChannels"`
	AudioSampleRate Number `json:"audioSampleRate"`
	Itag            Text   `json:"itag"`
	QualityLabel    Text   `json:"qualityLabel"`
	Resolution      Text   `json:"resolution"`
	Clen            Number `json:"clen"`
	Encoding        Text   `json:"encoding"`
}

// Thumbnail is one entry of videoThumbnails.
type Thumbnail struct {
	Quality Text   `json:"quality"`
	URL     Text   `json:"url"`
	Width   Number `json:"width"`
	Height  Number `json:"height"`
}

// Playlist is the payload of GET /api/v1/playlists/{id}.
type Playlist struct {
	PlaylistID  Text                `json:"playlistId"`
	Title       Text                `json:"title"`
	Description Text                `json:"description"`
	Author      Text                `json:"author"`
	AuthorID    Text                `json:"authorId"`
	Updated     Number              `json:"updated"`
	VideoCount  Number              `json:"videoCount"`
	Videos      List[PlaylistVideo] `json:"videos"`
}

// PlaylistVideo is one entry of a playlist's videos list.
type PlaylistVideo struct {
	VideoID       Text   `json:"videoId"`
	Title         Text   `json:"title"`
	Index         Number `json:"index"`
	LengthSeconds Number `json:"lengthSeconds"`
}

// ErrorBody is the shape of an API error response.
type ErrorBody struct {
	Error Text `json:"error"`
}
