package urlmatch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytget/invidious/errs"
)

// Source tells which matcher accepted a URL.
type Source int

const (
	// SourceInstance is a URL on a host from the instance table.
	SourceInstance Source = iota
	// SourceOrigin is a URL accepted by the origin platform fallback.
	SourceOrigin
)

const videoIDPattern = `[0-9A-Za-z_-]{11}`

var (
	videoURLRe    = regexp.MustCompile(`^https?://(?:www\.)?` + instancesHostPattern + `/watch\?v=(` + videoIDPattern + `)(?:$|[&#])`)
	playlistURLRe = regexp.MustCompile(`^https?://(?:www\.)?` + instancesHostPattern + `/playlist\?list=([0-9A-Za-z_-]+)`)

	originWatchRe = regexp.MustCompile(`^(?:https?://)?(?:(?:www|m|music)\.)?(?:youtube\.com|youtube-nocookie\.com|` +
		hostAlternation(originKnownInstances[:]) + `)/(?:(?:watch|watch_popup)\?(?:[^#]*&)?v=|embed/|shorts/|live/|v/|e/)(` + videoIDPattern + `)(?:$|[?&#/])`)
	originShortRe = regexp.MustCompile(`^(?:https?://)?youtu\.be/(` + videoIDPattern + `)(?:$|[?&#/])`)
	bareIDRe      = regexp.MustCompile(`^(` + videoIDPattern + `)$`)
)

// Match is the outcome of a successful URL match.
type Match struct {
	ID     string
	URL    string
	Source Source
}

// MatchVideo accepts watch URLs on known instances and, as a fallback,
// anything the origin platform matcher accepts.
func MatchVideo(raw string) (Match, bool) {
	raw = strings.TrimSpace(raw)
	if m := videoURLRe.FindStringSubmatch(raw); m != nil {
		return Match{ID: m[1], URL: raw, Source: SourceInstance}, true
	}
	return matchOrigin(raw)
}

func matchOrigin(raw string) (Match, bool) {
	for _, re := range []*regexp.Regexp{originWatchRe, originShortRe, bareIDRe} {
		if m := re.FindStringSubmatch(raw); m != nil {
			return Match{ID: m[1], URL: raw, Source: SourceOrigin}, true
		}
	}
	return Match{}, false
}

// MatchPlaylist accepts playlist URLs on known instances. The id is the
// list query parameter taken verbatim.
func MatchPlaylist(raw string) (Match, bool) {
	raw = strings.TrimSpace(raw)
	if m := playlistURLRe.FindStringSubmatch(raw); m != nil {
		return Match{ID: m[1], URL: raw, Source: SourceInstance}, true
	}
	return Match{}, false
}

// Suitable reports whether either extractor accepts the URL.
func Suitable(raw string) bool {
	if _, ok := MatchPlaylist(raw); ok {
		return true
	}
	_, ok := MatchVideo(raw)
	return ok
}

// VideoOrigin returns the "scheme://host" origin serving a matched video.
// Instance matches keep their own host. Origin matches keep an Invidious
// host from the origin platform's list; a missing host or an origin
// platform host becomes defaultHost (the first table entry when empty).
// A missing scheme defaults to http.
func VideoOrigin(m Match, defaultHost string) (string, error) {
	if defaultHost == "" {
		defaultHost = DefaultInstance()
	}
	u, err := parseLoose(m.URL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", m.URL, err)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := u.Host
	if m.Source == SourceOrigin && (host == "" || IsOriginHost(host)) {
		host = defaultHost
	}
	if host == "" {
		return "", fmt.Errorf("%w: %s", errs.ErrMissingHost, m.URL)
	}
	return scheme + "://" + host, nil
}

// PlaylistOrigin returns "scheme://host" of a playlist URL. Both parts must be present.
func PlaylistOrigin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %s", errs.ErrMissingHost, raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// parseLoose parses raw, treating scheme-less "host:port/path" input as a
// path rather than as an opaque URL with scheme "host".
func parseLoose(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		// "host:port/path" parses as scheme "host"
		return &url.URL{Path: raw}, nil
	}
	return u, nil
}
