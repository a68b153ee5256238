package invidious

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

// rewriteTransport sends every request to target, keeping path and query,
// so that URLs on known instance hosts reach a local test server.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

type fakeResponse struct {
	status int
	body   string
}

// fakeInstance serves scripted video and playlist API responses. A video
// sequence is replayed in order and its last response repeats.
type fakeInstance struct {
	mu        sync.Mutex
	videos    map[string][]fakeResponse
	playlists map[string]fakeResponse
	page      string
	apiHits   map[string]int
	listHits  map[string]int
	pageHits  int
}

func newFakeInstance() *fakeInstance {
	return &fakeInstance{
		videos:    make(map[string][]fakeResponse),
		playlists: make(map[string]fakeResponse),
		apiHits:   make(map[string]int),
		listHits:  make(map[string]int),
	}
}

func (f *fakeInstance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/v1/videos/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/videos/")
		n := f.apiHits[id]
		f.apiHits[id]++
		seq := f.videos[id]
		if len(seq) == 0 {
			writeFake(w, fakeResponse{http.StatusNotFound, `{"error":"This video is unavailable"}`})
			return
		}
		writeFake(w, seq[min(n, len(seq)-1)])
	case strings.HasPrefix(r.URL.Path, "/api/v1/playlists/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/playlists/")
		f.listHits[id]++
		resp, ok := f.playlists[id]
		if !ok {
			writeFake(w, fakeResponse{http.StatusNotFound, `{"error":"Playlist does not exist."}`})
			return
		}
		writeFake(w, resp)
	case r.URL.Path == "/watch":
		f.pageHits++
		if f.page == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(f.page))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeFake(w http.ResponseWriter, resp fakeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeInstance) setVideo(id string, seq ...fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[id] = seq
}

func (f *fakeInstance) setPlaylist(id string, resp fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playlists[id] = resp
}

func (f *fakeInstance) setPage(html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.page = html
}

func (f *fakeInstance) hits(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apiHits[id]
}

func (f *fakeInstance) playlistHits(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listHits[id]
}

func (f *fakeInstance) watchHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageHits
}

// testEnv wires an Extractor to a fake instance with recorded sleeps and warnings.
type testEnv struct {
	fake     *fakeInstance
	ex       *Extractor
	sleeps   []time.Duration
	warnings []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := newFakeInstance()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	env := &testEnv{fake: fake}
	env.ex = New().
		WithHTTPClient(&http.Client{Transport: &rewriteTransport{target: target}, Timeout: 5 * time.Second}).
		WithWarningFunc(func(msg string) { env.warnings = append(env.warnings, msg) })
	env.ex.sleep = func(ctx context.Context, d time.Duration) error {
		env.sleeps = append(env.sleeps, d)
		return ctx.Err()
	}
	return env
}

func okResponse(body string) fakeResponse {
	return fakeResponse{http.StatusOK, body}
}

func badGateway() fakeResponse {
	return fakeResponse{http.StatusBadGateway, "<html>502 Bad Gateway</html>"}
}

func videoJSON(title string) string {
	return fmt.Sprintf(`{"title":%q,"description":"desc of %s","author":"Ben Eater","authorId":"UCS0N5baNlQWJCUrhCEo8WlA","authorUrl":"/channel/UCS0N5baNlQWJCUrhCEo8WlA"}`, title, title)
}

const fullVideoJSON = `{
	"title": "youtube-dl test video",
	"description": "test chars and a test URL",
	"published": 1349000000,
	"author": "Philipp Hagemeister",
	"authorId": "UCLqxVugv74EIW3VWh2NOa3Q",
	"authorUrl": "/channel/UCLqxVugv74EIW3VWh2NOa3Q",
	"lengthSeconds": 10,
	"viewCount": 1000,
	"likeCount": "50",
	"dislikeCount": 2,
	"keywords": ["youtube-dl"],
	"liveNow": false,
	"isFamilyFriendly": false,
	"adaptiveFormats": [
		{"url": "http://10.0.0.1:3000/videoplayback?itag=251&id=x", "type": "audio/webm; codecs=\"opus\"", "bitrate": "160000", "itag": "251", "audioChannels": 2, "audioSampleRate": 48000}
	],
	"formatStreams": [
		{"url": "https://rr1.googlevideo.com/videoplayback?itag=18", "type": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"", "bitrate": "503000", "itag": "18", "container": "mp4", "size": "640x360", "qualityLabel": "360p", "fps": 30}
	],
	"videoThumbnails": [
		{"quality": "maxres", "url": "/vi/BaW_jenozKc/maxres.jpg", "width": 1280, "height": 720},
		{"quality": "medium", "url": "/vi/BaW_jenozKc/mqdefault.jpg", "width": 320, "height": 180},
		{"quality": "default", "url": "/vi/BaW_jenozKc/default.jpg", "width": 120, "height": 90}
	]
}`
