package types

// Format describes one playable variant of a video.
//
// String codec fields use "none" for a side that is known to be absent and
// the empty string for a side that could not be determined. Numeric fields
// use zero for "unknown".
type Format struct {
	FormatID      string  `json:"format_id,omitempty"`
	URL           string  `json:"url"`
	Ext           string  `json:"ext,omitempty"`
	Container     string  `json:"container,omitempty"`
	Protocol      string  `json:"protocol,omitempty"`
	TBR           float64 `json:"tbr,omitempty"`
	VCodec        string  `json:"vcodec,omitempty"`
	ACodec        string  `json:"acodec,omitempty"`
	Resolution    string  `json:"resolution,omitempty"`
	Width         int     `json:"width,omitempty"`
	Height        int     `json:"height,omitempty"`
	FPS           float64 `json:"fps,omitempty"`
	AudioChannels int     `json:"audio_channels,omitempty"`
	ASR           int     `json:"asr,omitempty"`
	Quality       string  `json:"format_note,omitempty"`
	Filesize      int64   `json:"filesize,omitempty"`
	Muxed         bool    `json:"-"`
}

// HasVideo reports whether the format carries a video stream.
func (f Format) HasVideo() bool {
	return f.VCodec != "none"
}

// HasAudio reports whether the format carries an audio stream.
func (f Format) HasAudio() bool {
	return f.ACodec != "none"
}

// Thumbnail is a single preview image. Preference is higher for better images.
type Thumbnail struct {
	ID         string `json:"id,omitempty"`
	URL        string `json:"url"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Preference int    `json:"preference"`
}

// VideoInfo describes video information.
type VideoInfo struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Uploader         string      `json:"uploader,omitempty"`
	UploaderID       string      `json:"uploader_id,omitempty"`
	Channel          string      `json:"channel,omitempty"`
	ChannelID        string      `json:"channel_id,omitempty"`
	ChannelURL       string      `json:"channel_url,omitempty"`
	Duration         int         `json:"duration,omitempty"`
	ViewCount        int64       `json:"view_count"`
	LikeCount        int64       `json:"like_count"`
	DislikeCount     int64       `json:"dislike_count"`
	Tags             []string    `json:"tags,omitempty"`
	IsLive           bool        `json:"is_live"`
	AgeLimit         *int        `json:"age_limit,omitempty"`
	ReleaseTimestamp int64       `json:"release_timestamp,omitempty"`
	Formats          []Format    `json:"formats"`
	Thumbnails       []Thumbnail `json:"thumbnails"`
	WebpageURL       string      `json:"webpage_url,omitempty"`
}
