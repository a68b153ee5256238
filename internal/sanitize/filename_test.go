package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestToSafeFilename_Basics(t *testing.T) {
	got := ToSafeFilename("Hello:/\\*?\"<>| World", "json")
	if got != "Hello_ World.json" {
		t.Fatalf("got %q", got)
	}
}

func TestToSafeFilename_Defaults(t *testing.T) {
	got := ToSafeFilename("  ", "")
	if got != "untitled.info.json" {
		t.Fatalf("got %q", got)
	}
}

func TestToSafeFilename_ControlAndDots(t *testing.T) {
	got := ToSafeFilename("..\tline\nbreak..", ".JSON")
	if got != "linebreak.json" {
		t.Fatalf("got %q", got)
	}
}

func TestToSafeFilename_Long(t *testing.T) {
	title := strings.Repeat("a", 200)
	got := ToSafeFilename(title, "json")
	if len(got) > MaxFilenameLength+len(".json") {
		t.Fatalf("too long: %d", len(got))
	}
}

func TestInfoFilename(t *testing.T) {
	got := InfoFilename("youtube-dl test video \"'/\\ä↭𝕐", "BaW_jenozKc")
	if got != "youtube-dl test video _'_ä↭𝕐 [BaW_jenozKc].info.json" {
		t.Fatalf("got %q", got)
	}
	if got := InfoFilename("", "PL1"); got != "untitled [PL1].info.json" {
		t.Fatalf("got %q", got)
	}
	if got := InfoFilename("title", ""); got != "title.info.json" {
		t.Fatalf("got %q", got)
	}
}

func TestInfoFilename_LongKeepsID(t *testing.T) {
	got := InfoFilename(strings.Repeat("é", 100), "BaW_jenozKc")
	if !strings.HasSuffix(got, " [BaW_jenozKc].info.json") {
		t.Fatalf("id lost: %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("split rune: %q", got)
	}
	if base := strings.TrimSuffix(got, ".info.json"); len(base) > MaxFilenameLength {
		t.Fatalf("too long: %d", len(base))
	}
}
