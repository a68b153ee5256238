package types

// PlaylistInfo describes playlist information and its extracted entries in source order.
type PlaylistInfo struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Uploader         string      `json:"uploader,omitempty"`
	UploaderID       string      `json:"uploader_id,omitempty"`
	ReleaseTimestamp int64       `json:"release_timestamp,omitempty"`
	WebpageURL       string      `json:"webpage_url,omitempty"`
	Entries          []VideoInfo `json:"entries"`
}

// Type reports the record kind, mirroring the host framework's "_type" key.
func (p *PlaylistInfo) Type() string {
	return "playlist"
}
