// Package api talks to the Invidious REST API (/api/v1).
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ytget/invidious/client"
	"github.com/ytget/invidious/errs"
	"github.com/ytget/invidious/internal/logger"
)

const (
	videosPath    = "/api/v1/videos/"
	playlistsPath = "/api/v1/playlists/"
	errorSnippet  = 200
)

// Client for interacting with one or more Invidious instances. The instance
// is chosen per call through the origin argument.
type Client struct {
	HTTP *client.Client
}

// New creates an API client on top of the given HTTP client.
func New(httpClient *client.Client) *Client {
	if httpClient == nil {
		httpClient = client.New()
	}
	return &Client{HTTP: httpClient}
}

// VideoURL returns the video endpoint for id on origin.
func VideoURL(origin, id string) string {
	return strings.TrimRight(origin, "/") + videosPath + url.PathEscape(id)
}

// PlaylistURL returns the playlist endpoint for id on origin.
func PlaylistURL(origin, id string) string {
	return strings.TrimRight(origin, "/") + playlistsPath + url.PathEscape(id)
}

// Video performs a single request to the video endpoint. The response is
// returned whatever its status so that the caller can apply its retry policy.
func (c *Client) Video(ctx context.Context, origin, id string) (*client.Response, error) {
	endpoint := VideoURL(origin, id)
	logger.WithComponent(logger.ComponentAPI).Debug("Downloading API response", map[string]interface{}{
		"id":  id,
		"url": endpoint,
	})
	return c.HTTP.Get(ctx, endpoint, client.AcceptJSON)
}

// DecodeVideo parses a video payload.
func DecodeVideo(body []byte) (*Video, error) {
	var v Video
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidResponse, err)
	}
	return &v, nil
}

// DecodeError returns the "error" field of an API error body. ok is false
// when the body is not a JSON object or carries no error message.
func DecodeError(body []byte) (string, bool) {
	var e ErrorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return "", false
	}
	if e.Error == "" {
		return "", false
	}
	return string(e.Error), true
}

// Snippet shortens a response body for inclusion in error messages.
func Snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorSnippet {
		s = s[:errorSnippet] + "..."
	}
	return s
}

// Playlist fetches and decodes a playlist in a single attempt.
func (c *Client) Playlist(ctx context.Context, origin, id string) (*Playlist, error) {
	endpoint := PlaylistURL(origin, id)
	log := logger.WithComponent(logger.ComponentAPI)
	log.Debug("Downloading playlist", map[string]interface{}{
		"id":  id,
		"url": endpoint,
	})

	resp, err := c.HTTP.Get(ctx, endpoint, client.AcceptJSON)
	if err != nil {
		return nil, fmt.Errorf("get playlist %s: %w", id, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, ok := DecodeError(resp.Body)
		if !ok {
			msg = Snippet(resp.Body)
		}
		return nil, fmt.Errorf("%w: HTTP Error %d: %s", errs.ErrUnexpectedStatus, resp.StatusCode, msg)
	}

	var p Playlist
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidResponse, err)
	}
	log.Debug("playlist received", map[string]interface{}{
		"id":     id,
		"videos": len(p.Videos),
	})
	return &p, nil
}
