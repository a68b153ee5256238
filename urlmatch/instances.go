// Package urlmatch recognizes video and playlist URLs served by Invidious
// instances and by the origin platform, and resolves the instance origin
// an extraction call talks to.
package urlmatch

import (
	"regexp"
	"strings"
)

// Instances is the table of known Invidious hosts. The first entry is the
// default instance for URLs that carry no usable host.
var Instances = [...]string{
	"invidious.nerdvpn.de",
	"inv.nadeko.net",
	"invidious.jing.rocks",
	"invidious.privacyredirect.com",
}

// originKnownInstances are Invidious hosts recognized by the origin platform
// matcher. They are accepted only by the video fallback path.
var originKnownInstances = [...]string{
	"yewtu.be",
	"y.com.sb",
	"yt.artemislena.eu",
	"invidious.snopyta.org",
	"invidious.kavin.rocks",
	"vid.puffyan.us",
	"invidious.tiekoetter.com",
	"invidious.flokinet.to",
	"inv.tux.pizza",
	"invidious.fdn.fr",
	"invidious.privacydev.net",
}

// originHosts are the origin platform's canonical domains.
var originHosts = [...]string{
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"youtube-nocookie.com",
	"www.youtube-nocookie.com",
	"youtu.be",
}

// DefaultInstance returns the first known instance.
func DefaultInstance() string {
	return Instances[0]
}

// IsOriginHost reports whether host belongs to the origin platform itself.
func IsOriginHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range originHosts {
		if host == h {
			return true
		}
	}
	return false
}

func hostAlternation(hosts []string) string {
	quoted := make([]string, len(hosts))
	for i, h := range hosts {
		quoted[i] = regexp.QuoteMeta(h)
	}
	return strings.Join(quoted, "|")
}

var instancesHostPattern = "(?:" + hostAlternation(Instances[:]) + ")"
