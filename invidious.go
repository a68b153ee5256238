package invidious

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/invidious/api"
	"github.com/ytget/invidious/client"
	"github.com/ytget/invidious/errs"
	"github.com/ytget/invidious/internal/logger"
	"github.com/ytget/invidious/types"
	"github.com/ytget/invidious/urlmatch"
)

const (
	// Infinite disables the retry budget.
	Infinite = -1
	// DefaultMaxRetries is the retry budget used when none is configured.
	DefaultMaxRetries = 5
	// DefaultRetryDelay is the pause between retries of the video API.
	DefaultRetryDelay = 5 * time.Second

	warningPrefix = "[Invidious] "
)

// Options contains extractor configuration.
//
// Use chainable setters on Extractor to populate these options.
type Options struct {
	HTTPClient      *http.Client
	MaxRetries      int
	RetryDelay      time.Duration
	Instance        string
	PageFallback    bool
	LenientPlaylist bool
	Timeout         time.Duration
	UserAgent       string
	ProxyURL        string
	WarningFunc     func(string)
}

// Extractor retrieves video and playlist records from Invidious instances.
// An Extractor holds configuration only; every call carries its own host
// origin, so one Extractor may serve concurrent calls once configured.
type Extractor struct {
	options Options
	sleep   func(ctx context.Context, d time.Duration) error
}

// Result is the outcome of Extract: exactly one of Video and Playlist is set.
type Result struct {
	Video    *types.VideoInfo
	Playlist *types.PlaylistInfo
}

// New creates a new Extractor with default options.
func New() *Extractor {
	return &Extractor{
		options: Options{
			MaxRetries:   DefaultMaxRetries,
			RetryDelay:   DefaultRetryDelay,
			PageFallback: true,
		},
		sleep: sleepContext,
	}
}

// WithHTTPClient sets a custom HTTP client to be used for all network calls.
func (e *Extractor) WithHTTPClient(c *http.Client) *Extractor {
	e.options.HTTPClient = c
	return e
}

// WithMaxRetries sets the retry budget of the video API. Infinite (or any
// negative value) retries until success or a permanent error.
func (e *Extractor) WithMaxRetries(n int) *Extractor {
	if n < 0 {
		n = Infinite
	}
	e.options.MaxRetries = n
	return e
}

// WithRetryDelay sets the pause between retries. Negative values become zero.
func (e *Extractor) WithRetryDelay(d time.Duration) *Extractor {
	if d < 0 {
		d = 0
	}
	e.options.RetryDelay = d
	return e
}

// WithInstance sets the host used for video URLs that carry no usable host
// ("host" or "host:port"). Empty restores the first known instance.
func (e *Extractor) WithInstance(host string) *Extractor {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	e.options.Instance = strings.TrimRight(host, "/")
	return e
}

// WithPageFallback toggles reading title and description from the watch
// page when the API omits them.
func (e *Extractor) WithPageFallback(enabled bool) *Extractor {
	e.options.PageFallback = enabled
	return e
}

// WithLenientPlaylist makes playlist extraction skip entries that fail
// instead of failing the whole playlist.
func (e *Extractor) WithLenientPlaylist(enabled bool) *Extractor {
	e.options.LenientPlaylist = enabled
	return e
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func (e *Extractor) WithTimeout(d time.Duration) *Extractor {
	e.options.Timeout = d
	return e
}

// WithUserAgent overrides the User-Agent header.
func (e *Extractor) WithUserAgent(ua string) *Extractor {
	e.options.UserAgent = strings.TrimSpace(ua)
	return e
}

// WithProxy routes requests of the default HTTP client through proxyURL.
func (e *Extractor) WithProxy(proxyURL string) *Extractor {
	e.options.ProxyURL = strings.TrimSpace(proxyURL)
	return e
}

// WithWarningFunc registers a callback that receives every warning, such as
// a retried API failure or a skipped playlist entry.
func (e *Extractor) WithWarningFunc(f func(string)) *Extractor {
	e.options.WarningFunc = f
	return e
}

// Options returns a copy of the current configuration.
func (e *Extractor) Options() Options {
	return e.options
}

// Suitable reports whether the video or playlist extractor accepts rawURL.
func Suitable(rawURL string) bool {
	return urlmatch.Suitable(rawURL)
}

// Extract dispatches rawURL to the playlist or video extractor.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Result, error) {
	if _, ok := urlmatch.MatchPlaylist(rawURL); ok {
		pl, err := e.ExtractPlaylist(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return &Result{Playlist: pl}, nil
	}
	v, err := e.ExtractVideo(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &Result{Video: v}, nil
}

// ParseMaxRetries parses a max_retries value: a non-negative integer, or
// "infinite" ("inf") for an unbounded budget. Empty yields the default.
func ParseMaxRetries(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultMaxRetries, nil
	}
	if strings.EqualFold(s, "infinite") || strings.EqualFold(s, "inf") {
		return Infinite, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("%w: %q", errs.ErrInvalidMaxRetries, s)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidMaxRetries, s)
	}
	return n, nil
}

// FormatMaxRetries renders a retry budget the way retry messages show it.
func FormatMaxRetries(n int) string {
	if n < 0 {
		return "inf"
	}
	return strconv.Itoa(n)
}

func (e *Extractor) clients() (*client.Client, *api.Client) {
	hc := client.NewWith(client.Config{
		Timeout:   e.options.Timeout,
		UserAgent: e.options.UserAgent,
		ProxyURL:  e.options.ProxyURL,
	})
	if e.options.HTTPClient != nil {
		hc.HTTPClient = e.options.HTTPClient
	}
	return hc, api.New(hc)
}

func (e *Extractor) warn(component logger.Component, id, msg string) {
	logger.WithComponent(component).Warn(msg, map[string]interface{}{"id": id})
	if e.options.WarningFunc != nil {
		if id != "" {
			msg = id + ": " + msg
		}
		e.options.WarningFunc(warningPrefix + msg)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
