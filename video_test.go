package invidious

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ytget/invidious/errs"
)

const testVideoURL = "https://inv.nadeko.net/watch?v=BaW_jenozKc"

func TestExtractVideo_Mapping(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setVideo("BaW_jenozKc", okResponse(fullVideoJSON))

	info, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}

	if info.ID != "BaW_jenozKc" || info.Title != "youtube-dl test video" {
		t.Errorf("unexpected id/title: %q %q", info.ID, info.Title)
	}
	if info.Uploader != "Philipp Hagemeister" || info.UploaderID != "UCLqxVugv74EIW3VWh2NOa3Q" {
		t.Errorf("unexpected uploader: %q %q", info.Uploader, info.UploaderID)
	}
	if info.Channel != info.Uploader || info.ChannelID != info.UploaderID {
		t.Errorf("channel should mirror uploader: %q %q", info.Channel, info.ChannelID)
	}
	if info.ChannelURL != "https://inv.nadeko.net/channel/UCLqxVugv74EIW3VWh2NOa3Q" {
		t.Errorf("ChannelURL = %q", info.ChannelURL)
	}
	if info.Duration != 10 || info.ViewCount != 1000 || info.LikeCount != 50 || info.DislikeCount != 2 {
		t.Errorf("unexpected counts %+v", info)
	}
	if info.ReleaseTimestamp != 1349000000 {
		t.Errorf("ReleaseTimestamp = %d", info.ReleaseTimestamp)
	}
	if len(info.Tags) != 1 || info.Tags[0] != "youtube-dl" || info.IsLive {
		t.Errorf("unexpected tags/live: %v %v", info.Tags, info.IsLive)
	}
	if info.AgeLimit == nil || *info.AgeLimit != 18 {
		t.Errorf("AgeLimit = %v, want 18", info.AgeLimit)
	}

	if len(info.Formats) != 2 {
		t.Fatalf("got %d formats", len(info.Formats))
	}
	for _, f := range info.Formats {
		if !strings.HasPrefix(f.URL, "https://inv.nadeko.net/videoplayback?") {
			t.Errorf("format %s not rewritten onto the instance: %q", f.FormatID, f.URL)
		}
	}
	audio, muxed := info.Formats[0], info.Formats[1]
	if audio.ACodec != "opus" || audio.VCodec != "none" || audio.TBR != 160 || audio.ASR != 48000 {
		t.Errorf("unexpected audio format %+v", audio)
	}
	if muxed.VCodec != "avc1.42001E" || muxed.ACodec != "mp4a.40.2" || muxed.Ext != "mp4" || muxed.Height != 360 {
		t.Errorf("unexpected muxed format %+v", muxed)
	}

	if len(info.Thumbnails) != 3 {
		t.Fatalf("got %d thumbnails", len(info.Thumbnails))
	}
	if info.Thumbnails[0].Preference != 3 || info.Thumbnails[2].Preference != 1 {
		t.Errorf("unexpected thumbnail ranking %+v", info.Thumbnails)
	}
	if info.Thumbnails[0].URL != "https://inv.nadeko.net/vi/BaW_jenozKc/maxres.jpg" {
		t.Errorf("thumbnail url = %q", info.Thumbnails[0].URL)
	}

	if env.fake.watchHits() != 0 {
		t.Error("watch page should not be fetched when the API has title and description")
	}
}

func TestExtractVideo_FamilyFriendlyOmitsAgeLimit(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setVideo("BaW_jenozKc", okResponse(`{"title":"t","description":"d","isFamilyFriendly":true}`))
	env.fake.setVideo("xKTygGa6hg0", okResponse(`{"title":"t","description":"d"}`))

	for _, u := range []string{testVideoURL, "https://inv.nadeko.net/watch?v=xKTygGa6hg0"} {
		info, err := env.ex.ExtractVideo(context.Background(), u)
		if err != nil {
			t.Fatalf("%s: %v", u, err)
		}
		if info.AgeLimit != nil {
			t.Errorf("%s: AgeLimit should be omitted, got %d", u, *info.AgeLimit)
		}
		if info.ChannelURL != "" {
			t.Errorf("%s: ChannelURL should be empty without authorUrl, got %q", u, info.ChannelURL)
		}
	}
}

func TestExtractVideo_SingleRequestOn200(t *testing.T) {
	env := newTestEnv(t)
	env.ex.WithMaxRetries(5)
	env.fake.setVideo("BaW_jenozKc", okResponse(videoJSON("A")))

	if _, err := env.ex.ExtractVideo(context.Background(), testVideoURL); err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if got := env.fake.hits("BaW_jenozKc"); got != 1 {
		t.Fatalf("expected 1 API request, got %d", got)
	}
	if len(env.sleeps) != 0 || len(env.warnings) != 0 {
		t.Fatalf("unexpected retries: sleeps=%v warnings=%v", env.sleeps, env.warnings)
	}
}

func TestExtractVideo_RetriesExhausted(t *testing.T) {
	env := newTestEnv(t)
	env.ex.WithMaxRetries(2).WithRetryDelay(5 * time.Second)
	env.fake.setVideo("BaW_jenozKc", badGateway(), badGateway(), badGateway())

	_, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errs.ErrRetriesExhausted) {
		t.Errorf("expected ErrRetriesExhausted, got %v", err)
	}
	if !strings.Contains(err.Error(), "2/2") || !strings.Contains(err.Error(), "HTTP Error 502: Bad Gateway") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if errs.IsExpected(err) {
		t.Error("exhausted retries are not an expected error")
	}
	if got := env.fake.hits("BaW_jenozKc"); got != 3 {
		t.Fatalf("expected 3 API requests, got %d", got)
	}
	if len(env.warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", env.warnings)
	}
	if !strings.Contains(env.warnings[0], "(retry 0/2)") || !strings.Contains(env.warnings[1], "(retry 1/2)") {
		t.Errorf("unexpected warnings %v", env.warnings)
	}
	if len(env.sleeps) != 2 || env.sleeps[0] != 5*time.Second {
		t.Errorf("unexpected sleeps %v", env.sleeps)
	}
}

func TestExtractVideo_ZeroRetries(t *testing.T) {
	env := newTestEnv(t)
	env.ex.WithMaxRetries(0)
	env.fake.setVideo("BaW_jenozKc", fakeResponse{http.StatusNotFound, "not found"})

	_, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err == nil || !strings.Contains(err.Error(), "HTTP Error 404: not found (retry 0/0)") {
		t.Fatalf("unexpected error %v", err)
	}
	if got := env.fake.hits("BaW_jenozKc"); got != 1 {
		t.Fatalf("expected 1 API request, got %d", got)
	}
}

func TestExtractVideo_InfiniteRetries(t *testing.T) {
	env := newTestEnv(t)
	env.ex.WithMaxRetries(Infinite)
	seq := make([]fakeResponse, 0, 12)
	for i := 0; i < 11; i++ {
		seq = append(seq, badGateway())
	}
	seq = append(seq, okResponse(videoJSON("finally")))
	env.fake.setVideo("BaW_jenozKc", seq...)

	info, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if info.Title != "finally" {
		t.Errorf("Title = %q", info.Title)
	}
	if got := env.fake.hits("BaW_jenozKc"); got != 12 {
		t.Fatalf("expected 12 API requests, got %d", got)
	}
	if !strings.Contains(env.warnings[10], "(retry 10/inf)") {
		t.Errorf("unexpected warning %q", env.warnings[10])
	}
}

func TestExtractVideo_AgeRestricted(t *testing.T) {
	env := newTestEnv(t)
	env.ex.WithMaxRetries(5)
	env.fake.setVideo("BaW_jenozKc", fakeResponse{http.StatusInternalServerError, `{"error":"Sign in to confirm your age. This video may be inappropriate for some users."}`})

	_, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if !errors.Is(err, errs.ErrAgeRestricted) {
		t.Fatalf("expected ErrAgeRestricted, got %v", err)
	}
	if !errs.IsExpected(err) {
		t.Error("age restriction should be an expected error")
	}
	if !strings.Contains(err.Error(), "Sign in to confirm your age") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if got := env.fake.hits("BaW_jenozKc"); got != 1 {
		t.Fatalf("expected 1 API request, got %d", got)
	}
	if len(env.sleeps) != 0 {
		t.Fatalf("expected no sleeps, got %v", env.sleeps)
	}
}

func TestExtractVideo_BadGatewayBodyIsNotParsed(t *testing.T) {
	env := newTestEnv(t)
	env.ex.WithMaxRetries(1)
	env.fake.setVideo("BaW_jenozKc",
		fakeResponse{http.StatusBadGateway, `{"error":"Sign in to confirm your age"}`},
		okResponse(videoJSON("after gateway")),
	)

	info, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if info.Title != "after gateway" || env.fake.hits("BaW_jenozKc") != 2 {
		t.Fatalf("unexpected result %q after %d requests", info.Title, env.fake.hits("BaW_jenozKc"))
	}
}

func TestExtractVideo_APIErrorMessageInWarning(t *testing.T) {
	env := newTestEnv(t)
	env.ex.WithMaxRetries(1)
	env.fake.setVideo("BaW_jenozKc",
		fakeResponse{http.StatusInternalServerError, `{"error":"Could not extract video info."}`},
		okResponse(videoJSON("ok")),
	)

	if _, err := env.ex.ExtractVideo(context.Background(), testVideoURL); err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if len(env.warnings) != 1 {
		t.Fatalf("expected one warning, got %v", env.warnings)
	}
	want := "[Invidious] BaW_jenozKc: Could not extract video info. (retry 0/1)"
	if env.warnings[0] != want {
		t.Errorf("warning = %q, want %q", env.warnings[0], want)
	}
}

func TestExtractVideo_InvalidPayload(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setVideo("BaW_jenozKc", okResponse("<html>maintenance</html>"))

	_, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if !errors.Is(err, errs.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if got := env.fake.hits("BaW_jenozKc"); got != 1 {
		t.Fatalf("invalid 200 payload must not be retried, got %d requests", got)
	}
}

func TestExtractVideo_PageFallback(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setPage(`<html><head><meta property="og:title" content="Page title"><meta property="og:description" content="Page description"></head></html>`)
	env.fake.setVideo("BaW_jenozKc", okResponse(`{"author":"x"}`))

	info, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if info.Title != "Page title" || info.Description != "Page description" {
		t.Errorf("fallback not applied: %q %q", info.Title, info.Description)
	}
	if env.fake.watchHits() != 1 {
		t.Errorf("expected one page request, got %d", env.fake.watchHits())
	}

	env.ex.WithPageFallback(false)
	info, err = env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if info.Title != "" || env.fake.watchHits() != 1 {
		t.Errorf("fallback should be disabled: title=%q hits=%d", info.Title, env.fake.watchHits())
	}
}

func TestExtractVideo_PageFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setVideo("BaW_jenozKc", okResponse(`{"description":"only a description"}`))

	info, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if info.Title != "" || info.Description != "only a description" {
		t.Errorf("unexpected record %q %q", info.Title, info.Description)
	}
}

func TestExtractVideo_DefaultInstance(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setVideo("BaW_jenozKc", okResponse(fullVideoJSON))

	for _, u := range []string{"BaW_jenozKc", "https://youtu.be/BaW_jenozKc"} {
		info, err := env.ex.ExtractVideo(context.Background(), u)
		if err != nil {
			t.Fatalf("%s: %v", u, err)
		}
		if !strings.HasPrefix(info.Formats[0].URL, "http") || !strings.Contains(info.Formats[0].URL, "://invidious.nerdvpn.de/") {
			t.Errorf("%s: format url %q not on default instance", u, info.Formats[0].URL)
		}
		if !strings.HasSuffix(info.WebpageURL, "://invidious.nerdvpn.de/watch?v=BaW_jenozKc") {
			t.Errorf("%s: WebpageURL = %q", u, info.WebpageURL)
		}
	}

	env.ex.WithInstance("https://yewtu.be/")
	info, err := env.ex.ExtractVideo(context.Background(), "BaW_jenozKc")
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if info.WebpageURL != "http://yewtu.be/watch?v=BaW_jenozKc" {
		t.Errorf("WebpageURL = %q", info.WebpageURL)
	}
}

func TestExtractVideo_UnsupportedURL(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ex.ExtractVideo(context.Background(), "https://example.com/watch?v=BaW_jenozKc")
	if !errors.Is(err, errs.ErrUnsupportedURL) || !errs.IsExpected(err) {
		t.Fatalf("expected expected ErrUnsupportedURL, got %v", err)
	}
}

func TestExtractVideo_ContextCanceledDuringSleep(t *testing.T) {
	env := newTestEnv(t)
	env.ex.sleep = sleepContext
	env.ex.WithMaxRetries(3).WithRetryDelay(time.Hour)
	env.fake.setVideo("BaW_jenozKc", badGateway())

	ctx, cancel := context.WithCancel(context.Background())
	env.ex.WithWarningFunc(func(string) { cancel() })

	done := make(chan error, 1)
	go func() {
		_, err := env.ex.ExtractVideo(ctx, testVideoURL)
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("extraction did not stop on cancellation")
	}
}

func TestExtractVideo_MalformedFormatEntryDegrades(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setVideo("BaW_jenozKc", okResponse(`{
		"title": "t",
		"description": "d",
		"keywords": ["a", 1],
		"adaptiveFormats": [
			{"url": "https://rr1.googlevideo.com/videoplayback?itag=251", "type": "audio/webm; codecs=\"opus\"", "itag": 251, "size": 1080}
		],
		"formatStreams": [
			{"url": "https://rr1.googlevideo.com/videoplayback?itag=1", "type": 42, "itag": "1"},
			17,
			{"url": "https://rr1.googlevideo.com/videoplayback?itag=18", "type": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"", "itag": "18", "size": "640x360"}
		]
	}`))

	info, err := env.ex.ExtractVideo(context.Background(), testVideoURL)
	if err != nil {
		t.Fatalf("ExtractVideo: %v", err)
	}
	if strings.Join(info.Tags, ",") != "a,1" {
		t.Errorf("Tags = %q", info.Tags)
	}
	if len(info.Formats) != 3 {
		t.Fatalf("expected 3 formats, got %+v", info.Formats)
	}
	audio, bad, good := info.Formats[0], info.Formats[1], info.Formats[2]
	if audio.FormatID != "251" || audio.ACodec != "opus" || audio.Resolution != "1080" {
		t.Errorf("unexpected audio format %+v", audio)
	}
	if bad.FormatID != "1" || bad.VCodec != "" || bad.ACodec != "" {
		t.Errorf("malformed entry should keep only what parses, got %+v", bad)
	}
	if good.FormatID != "18" || good.VCodec != "avc1.42001E" || good.ACodec != "mp4a.40.2" || good.Height != 360 {
		t.Errorf("good entry lost its metadata: %+v", good)
	}
}
