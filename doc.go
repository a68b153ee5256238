// Package invidious extracts video and playlist metadata from Invidious
// instances through their /api/v1 JSON surface.
//
// Usage:
//
//	ex := invidious.New().WithMaxRetries(3)
//	info, err := ex.ExtractVideo(ctx, "https://inv.nadeko.net/watch?v=BaW_jenozKc")
//	if err != nil {
//		// handle error
//	}
//	fmt.Println(info.Title, len(info.Formats))
//
// Playlists are expanded entry by entry through the video extractor:
//
//	pl, err := ex.ExtractPlaylist(ctx, "https://inv.nadeko.net/playlist?list=PL...")
//
// Transient API failures (HTTP 502 or any error body other than the age
// gate) are retried up to the configured budget with a pause between
// attempts. Age-gated content fails on the first attempt with an expected
// error wrapping errs.ErrAgeRestricted.
package invidious
