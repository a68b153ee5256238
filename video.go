package invidious

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ytget/invidious/api"
	"github.com/ytget/invidious/client"
	"github.com/ytget/invidious/errs"
	"github.com/ytget/invidious/formats"
	"github.com/ytget/invidious/internal/logger"
	"github.com/ytget/invidious/internal/pagemeta"
	"github.com/ytget/invidious/types"
	"github.com/ytget/invidious/urlmatch"
)

// ageGateMessage marks an API error that no retry can fix.
const ageGateMessage = "Sign in to confirm your age"

// ExtractVideo resolves the instance serving rawURL, queries its video API
// with retries, and maps the payload to a VideoInfo whose format URLs point
// at that instance.
func (e *Extractor) ExtractVideo(ctx context.Context, rawURL string) (*types.VideoInfo, error) {
	m, ok := urlmatch.MatchVideo(rawURL)
	if !ok {
		return nil, &errs.ExtractorError{
			Msg:      fmt.Sprintf("unsupported url: %s", rawURL),
			Expected: true,
			Err:      errs.ErrUnsupportedURL,
		}
	}
	origin, err := urlmatch.VideoOrigin(m, e.options.Instance)
	if err != nil {
		return nil, &errs.ExtractorError{ID: m.ID, Msg: err.Error(), Expected: true, Err: err}
	}

	hc, ac := e.clients()
	return e.extractVideo(ctx, hc, ac, origin, m.ID)
}

func (e *Extractor) extractVideo(ctx context.Context, hc *client.Client, ac *api.Client, origin, id string) (*types.VideoInfo, error) {
	log := logger.WithComponent(logger.ComponentExtractor)
	log.Info("extracting video", map[string]interface{}{
		"id":     id,
		"origin": origin,
	})

	v, err := e.fetchVideo(ctx, ac, origin, id)
	if err != nil {
		return nil, err
	}

	info := mapVideo(v, origin, id)
	if (info.Title == "" || info.Description == "") && e.options.PageFallback {
		meta := e.pageMeta(ctx, hc, info.WebpageURL, id)
		if info.Title == "" {
			info.Title = meta.Title
		}
		if info.Description == "" {
			info.Description = meta.Description
		}
	}

	log.Debug("video extracted", map[string]interface{}{
		"id":         id,
		"formats":    len(info.Formats),
		"thumbnails": len(info.Thumbnails),
	})
	return info, nil
}

// fetchVideo runs the retry loop against the video endpoint. Status 502 and
// any error body other than the age gate count as transient.
func (e *Extractor) fetchVideo(ctx context.Context, ac *api.Client, origin, id string) (*api.Video, error) {
	maxRetries := e.options.MaxRetries
	for retries := 0; ; retries++ {
		resp, err := ac.Video(ctx, origin, id)
		if err != nil {
			return nil, &errs.ExtractorError{ID: id, Msg: err.Error(), Err: err}
		}

		var msg string
		switch resp.StatusCode {
		case http.StatusOK:
			v, err := api.DecodeVideo(resp.Body)
			if err != nil {
				return nil, &errs.ExtractorError{ID: id, Msg: err.Error(), Err: err}
			}
			return v, nil
		case http.StatusBadGateway:
			msg = "HTTP Error 502: Bad Gateway"
		default:
			apiMsg, ok := api.DecodeError(resp.Body)
			if ok && strings.Contains(apiMsg, ageGateMessage) {
				return nil, &errs.ExtractorError{ID: id, Msg: apiMsg, Expected: true, Err: errs.ErrAgeRestricted}
			}
			if ok {
				msg = apiMsg
			} else {
				msg = fmt.Sprintf("HTTP Error %d: %s", resp.StatusCode, api.Snippet(resp.Body))
			}
		}
		msg += fmt.Sprintf(" (retry %d/%s)", retries, FormatMaxRetries(maxRetries))

		if maxRetries >= 0 && retries+1 > maxRetries {
			return nil, &errs.ExtractorError{ID: id, Msg: msg, Err: errs.ErrRetriesExhausted}
		}
		e.warn(logger.ComponentExtractor, id, msg)
		if err := e.sleep(ctx, e.options.RetryDelay); err != nil {
			return nil, &errs.ExtractorError{ID: id, Msg: err.Error(), Err: err}
		}
	}
}

func mapVideo(v *api.Video, origin, id string) *types.VideoInfo {
	info := &types.VideoInfo{
		ID:               id,
		Title:            string(v.Title),
		Description:      string(v.Description),
		ReleaseTimestamp: v.Published.Int(),
		Uploader:         string(v.Author),
		UploaderID:       string(v.AuthorID),
		Channel:          string(v.Author),
		ChannelID:        string(v.AuthorID),
		Duration:         int(v.LengthSeconds.Int()),
		ViewCount:        v.ViewCount.Int(),
		LikeCount:        v.LikeCount.Int(),
		DislikeCount:     v.DislikeCount.Int(),
		Tags:             v.Keywords,
		IsLive:           v.LiveNow.Value,
		Formats:          formats.ParseFormats(v.AdaptiveFormats, v.FormatStreams, origin),
		Thumbnails:       formats.Thumbnails(v.VideoThumbnails, origin),
		WebpageURL:       origin + "/watch?v=" + id,
	}
	authorURL := string(v.AuthorURL)
	switch {
	case strings.HasPrefix(authorURL, "http://"), strings.HasPrefix(authorURL, "https://"):
		info.ChannelURL = authorURL
	case authorURL != "":
		info.ChannelURL = origin + authorURL
	}
	if v.IsFamilyFriendly.Valid && !v.IsFamilyFriendly.Value {
		age := 18
		info.AgeLimit = &age
	}
	return info
}

// pageMeta fetches the watch page. Any failure yields empty metadata.
func (e *Extractor) pageMeta(ctx context.Context, hc *client.Client, pageURL, id string) pagemeta.Meta {
	log := logger.WithComponent(logger.ComponentExtractor)
	resp, err := hc.Get(ctx, pageURL, client.AcceptHTML)
	if err != nil {
		log.Debug("watch page unavailable", map[string]interface{}{"id": id, "error": err.Error()})
		return pagemeta.Meta{}
	}
	if resp.StatusCode != http.StatusOK {
		log.Debug("watch page unavailable", map[string]interface{}{"id": id, "status": resp.StatusCode})
		return pagemeta.Meta{}
	}
	meta, err := pagemeta.Parse(resp.Body)
	if err != nil {
		log.Debug("watch page unreadable", map[string]interface{}{"id": id, "error": err.Error()})
		return pagemeta.Meta{}
	}
	return meta
}
