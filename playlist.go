package invidious

import (
	"context"
	"fmt"

	"github.com/ytget/invidious/api"
	"github.com/ytget/invidious/client"
	"github.com/ytget/invidious/errs"
	"github.com/ytget/invidious/internal/logger"
	"github.com/ytget/invidious/types"
	"github.com/ytget/invidious/urlmatch"
)

// ExtractPlaylist fetches a playlist once and extracts every listed video in
// source order through the video extractor, on the playlist's own instance.
// Any entry failure fails the playlist unless lenient mode is enabled, in
// which case failed entries are skipped with a warning.
func (e *Extractor) ExtractPlaylist(ctx context.Context, rawURL string) (*types.PlaylistInfo, error) {
	m, ok := urlmatch.MatchPlaylist(rawURL)
	if !ok {
		return nil, &errs.ExtractorError{
			Msg:      fmt.Sprintf("unsupported url: %s", rawURL),
			Expected: true,
			Err:      errs.ErrUnsupportedURL,
		}
	}
	origin, err := urlmatch.PlaylistOrigin(rawURL)
	if err != nil {
		return nil, &errs.ExtractorError{ID: m.ID, Msg: err.Error(), Expected: true, Err: err}
	}

	log := logger.WithComponent(logger.ComponentPlaylist)
	log.Info("extracting playlist", map[string]interface{}{
		"id":     m.ID,
		"origin": origin,
	})

	hc, ac := e.clients()
	p, err := ac.Playlist(ctx, origin, m.ID)
	if err != nil {
		return nil, &errs.ExtractorError{ID: m.ID, Msg: err.Error(), Err: err}
	}

	info := &types.PlaylistInfo{
		ID:               m.ID,
		Title:            string(p.Title),
		Description:      string(p.Description),
		Uploader:         string(p.Author),
		UploaderID:       string(p.AuthorID),
		ReleaseTimestamp: p.Updated.Int(),
		WebpageURL:       origin + "/playlist?list=" + m.ID,
		Entries:          make([]types.VideoInfo, 0, len(p.Videos)),
	}

	for i, entry := range p.Videos {
		if err := ctx.Err(); err != nil {
			return nil, &errs.ExtractorError{ID: m.ID, Msg: err.Error(), Err: err}
		}
		v, err := e.playlistEntry(ctx, hc, ac, origin, string(entry.VideoID))
		if err != nil {
			if e.options.LenientPlaylist && ctx.Err() == nil {
				e.warn(logger.ComponentPlaylist, m.ID, fmt.Sprintf("skipping entry %d (%s): %v", i+1, entry.VideoID, err))
				continue
			}
			return nil, &errs.ExtractorError{
				ID:       m.ID,
				Msg:      fmt.Sprintf("entry %d (%s): %v", i+1, entry.VideoID, err),
				Expected: errs.IsExpected(err),
				Err:      err,
			}
		}
		info.Entries = append(info.Entries, *v)
	}

	log.Info("playlist extracted", map[string]interface{}{
		"id":      m.ID,
		"entries": len(info.Entries),
		"listed":  len(p.Videos),
	})
	return info, nil
}

// playlistEntry extracts one entry through its synthetic watch URL on origin.
func (e *Extractor) playlistEntry(ctx context.Context, hc *client.Client, ac *api.Client, origin, videoID string) (*types.VideoInfo, error) {
	watchURL := origin + "/watch?v=" + videoID
	m, ok := urlmatch.MatchVideo(watchURL)
	if !ok {
		return nil, &errs.ExtractorError{
			Msg:      fmt.Sprintf("unsupported url: %s", watchURL),
			Expected: true,
			Err:      errs.ErrUnsupportedURL,
		}
	}
	return e.extractVideo(ctx, hc, ac, origin, m.ID)
}
