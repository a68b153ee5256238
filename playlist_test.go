package invidious

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/ytget/invidious/errs"
)

const testPlaylistURL = "https://inv.nadeko.net/playlist?list=PLowKtXNTBypGqImE405J2565dvjafglHU"

const playlistJSON = `{
	"title": "8-bit computer update",
	"description": "An update on my plans",
	"author": "Ben Eater",
	"authorId": "UCS0N5baNlQWJCUrhCEo8WlA",
	"updated": 1700000000,
	"videos": [
		{"videoId": "aaaaaaaaaaa", "title": "A"},
		{"videoId": "bbbbbbbbbbb", "title": "B"},
		{"videoId": "ccccccccccc", "title": "C"}
	]
}`

func newPlaylistEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.fake.setPlaylist("PLowKtXNTBypGqImE405J2565dvjafglHU", okResponse(playlistJSON))
	env.fake.setVideo("aaaaaaaaaaa", okResponse(videoJSON("A")))
	env.fake.setVideo("bbbbbbbbbbb", okResponse(videoJSON("B")))
	env.fake.setVideo("ccccccccccc", okResponse(videoJSON("C")))
	return env
}

func TestExtractPlaylist(t *testing.T) {
	env := newPlaylistEnv(t)

	pl, err := env.ex.ExtractPlaylist(context.Background(), testPlaylistURL)
	if err != nil {
		t.Fatalf("ExtractPlaylist: %v", err)
	}
	if pl.ID != "PLowKtXNTBypGqImE405J2565dvjafglHU" || pl.Title != "8-bit computer update" {
		t.Errorf("unexpected playlist %q %q", pl.ID, pl.Title)
	}
	if pl.Description != "An update on my plans" || pl.Uploader != "Ben Eater" || pl.UploaderID != "UCS0N5baNlQWJCUrhCEo8WlA" {
		t.Errorf("unexpected playlist fields %+v", pl)
	}
	if pl.ReleaseTimestamp != 1700000000 {
		t.Errorf("ReleaseTimestamp = %d", pl.ReleaseTimestamp)
	}
	if pl.Type() != "playlist" {
		t.Errorf("Type() = %q", pl.Type())
	}

	want := []string{"A", "B", "C"}
	if len(pl.Entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(pl.Entries), len(want))
	}
	for i, title := range want {
		if pl.Entries[i].Title != title {
			t.Errorf("entry %d: title = %q, want %q", i, pl.Entries[i].Title, title)
		}
		if !strings.HasPrefix(pl.Entries[i].WebpageURL, "https://inv.nadeko.net/watch?v=") {
			t.Errorf("entry %d not extracted on the playlist instance: %q", i, pl.Entries[i].WebpageURL)
		}
		if pl.Entries[i].ChannelURL != "https://inv.nadeko.net/channel/UCS0N5baNlQWJCUrhCEo8WlA" {
			t.Errorf("entry %d: ChannelURL = %q", i, pl.Entries[i].ChannelURL)
		}
	}
	if got := env.fake.playlistHits("PLowKtXNTBypGqImE405J2565dvjafglHU"); got != 1 {
		t.Errorf("expected 1 playlist request, got %d", got)
	}
}

func TestExtractPlaylist_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setPlaylist("PLempty", okResponse(`{"title":"nothing here","videos":[]}`))

	pl, err := env.ex.ExtractPlaylist(context.Background(), "https://invidious.jing.rocks/playlist?list=PLempty")
	if err != nil {
		t.Fatalf("ExtractPlaylist: %v", err)
	}
	if len(pl.Entries) != 0 || pl.Entries == nil {
		t.Fatalf("expected an empty, non-nil entry list, got %#v", pl.Entries)
	}
}

func TestExtractPlaylist_EntryFailureAborts(t *testing.T) {
	env := newPlaylistEnv(t)
	env.fake.setVideo("bbbbbbbbbbb", fakeResponse{http.StatusForbidden, `{"error":"Sign in to confirm your age"}`})

	_, err := env.ex.ExtractPlaylist(context.Background(), testPlaylistURL)
	if !errors.Is(err, errs.ErrAgeRestricted) {
		t.Fatalf("expected ErrAgeRestricted, got %v", err)
	}
	if !errs.IsExpected(err) {
		t.Error("expected-ness of the entry error should carry over")
	}
	if !strings.Contains(err.Error(), "entry 2 (bbbbbbbbbbb)") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if got := env.fake.hits("ccccccccccc"); got != 0 {
		t.Errorf("entries after the failure should not be fetched, got %d requests", got)
	}
}

func TestExtractPlaylist_Lenient(t *testing.T) {
	env := newPlaylistEnv(t)
	env.ex.WithLenientPlaylist(true).WithMaxRetries(0)
	env.fake.setVideo("bbbbbbbbbbb", badGateway())

	pl, err := env.ex.ExtractPlaylist(context.Background(), testPlaylistURL)
	if err != nil {
		t.Fatalf("ExtractPlaylist: %v", err)
	}
	if len(pl.Entries) != 2 || pl.Entries[0].Title != "A" || pl.Entries[1].Title != "C" {
		t.Fatalf("unexpected entries %+v", pl.Entries)
	}
	if len(env.warnings) != 1 || !strings.Contains(env.warnings[0], "skipping entry 2 (bbbbbbbbbbb)") {
		t.Errorf("unexpected warnings %v", env.warnings)
	}
}

func TestExtractPlaylist_SingleAttempt(t *testing.T) {
	env := newTestEnv(t)
	env.fake.setPlaylist("PLflaky", badGateway())

	_, err := env.ex.ExtractPlaylist(context.Background(), "https://inv.nadeko.net/playlist?list=PLflaky")
	if !errors.Is(err, errs.ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	if got := env.fake.playlistHits("PLflaky"); got != 1 {
		t.Fatalf("expected a single playlist request, got %d", got)
	}
	if len(env.sleeps) != 0 {
		t.Fatalf("playlist fetch must not sleep, got %v", env.sleeps)
	}
}

func TestExtractPlaylist_UnsupportedURL(t *testing.T) {
	env := newTestEnv(t)
	for _, u := range []string{
		"https://www.youtube.com/playlist?list=PL1",
		"https://example.com/playlist?list=PL1",
		"https://inv.nadeko.net/watch?v=BaW_jenozKc",
	} {
		_, err := env.ex.ExtractPlaylist(context.Background(), u)
		if !errors.Is(err, errs.ErrUnsupportedURL) {
			t.Errorf("%s: expected ErrUnsupportedURL, got %v", u, err)
		}
	}
}
