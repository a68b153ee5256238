package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytget/invidious"
	"github.com/ytget/invidious/formats"
	"github.com/ytget/invidious/internal/sanitize"
	"github.com/ytget/invidious/types"
)

type extractMode int

const (
	modeAuto extractMode = iota
	modeVideo
	modePlaylist
)

var (
	flagFormat        string
	flagExt           string
	flagGetURL        bool
	flagWriteInfoJSON string
	flagCompact       bool
)

var videoCmd = &cobra.Command{
	Use:   "video <url>...",
	Short: "Extract video metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args, modeVideo)
	},
}

var playlistCmd = &cobra.Command{
	Use:   "playlist <url>...",
	Short: "Extract a playlist and all of its entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args, modePlaylist)
	},
}

func init() {
	addExtractFlags(videoCmd)
	addExtractFlags(playlistCmd)
}

func addExtractFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagFormat, "format", "", "Format selector (e.g. 'itag=22', 'best', 'height<=480')")
	f.StringVar(&flagExt, "ext", "", "Desired extension (e.g. 'mp4', 'webm')")
	f.BoolVarP(&flagGetURL, "get-url", "g", false, "Print the selected format URL instead of JSON")
	f.StringVar(&flagWriteInfoJSON, "write-info-json", "", "Also write '<title> [<id>].info.json' files into this directory")
	f.BoolVar(&flagCompact, "compact", false, "Print one JSON document per line")
}

// outcome is the extraction result of one input URL.
type outcome struct {
	input  string
	result *invidious.Result
	err    error
}

func runExtract(cmd *cobra.Command, args []string, mode extractMode) error {
	ex, err := cfg.Extractor()
	if err != nil {
		return err
	}
	if flagWriteInfoJSON != "" {
		if err := os.MkdirAll(flagWriteInfoJSON, 0o755); err != nil {
			return fmt.Errorf("creating info json dir: %w", err)
		}
	}

	outcomes := extractAll(cmd.Context(), ex, args, mode)

	out := cmd.OutOrStdout()
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %s: %v\n", o.input, o.err)
			continue
		}
		if err := emit(out, o.result); err != nil {
			return err
		}
		if flagWriteInfoJSON != "" {
			path, err := writeInfoJSON(flagWriteInfoJSON, o.result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d extractions failed", failed, len(outcomes))
	}
	return nil
}

// extractAll extracts the inputs one after another, in input order.
func extractAll(ctx context.Context, ex *invidious.Extractor, inputs []string, mode extractMode) []outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	outcomes := make([]outcome, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		res, err := extractOne(ctx, ex, input, mode)
		outcomes = append(outcomes, outcome{input: input, result: res, err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return outcomes
}

func extractOne(ctx context.Context, ex *invidious.Extractor, input string, mode extractMode) (*invidious.Result, error) {
	switch mode {
	case modeVideo:
		v, err := ex.ExtractVideo(ctx, input)
		if err != nil {
			return nil, err
		}
		return &invidious.Result{Video: v}, nil
	case modePlaylist:
		pl, err := ex.ExtractPlaylist(ctx, input)
		if err != nil {
			return nil, err
		}
		return &invidious.Result{Playlist: pl}, nil
	default:
		return ex.Extract(ctx, input)
	}
}

// playlistDocument adds the "_type" discriminator to a playlist record.
type playlistDocument struct {
	Type string `json:"_type"`
	*types.PlaylistInfo
}

// emit writes one result either as JSON or, with --get-url, as the URL of
// the selected format of every video it contains.
func emit(w io.Writer, res *invidious.Result) error {
	if flagGetURL {
		for _, v := range resultVideos(res) {
			f := formats.SelectFormat(v.Formats, flagFormat, flagExt)
			if f == nil {
				return fmt.Errorf("%s: no formats available", v.ID)
			}
			if _, err := fmt.Fprintln(w, f.URL); err != nil {
				return err
			}
		}
		return nil
	}

	enc := json.NewEncoder(w)
	if !flagCompact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(document(res))
}

func document(res *invidious.Result) interface{} {
	if res.Playlist != nil {
		return playlistDocument{Type: res.Playlist.Type(), PlaylistInfo: res.Playlist}
	}
	return res.Video
}

func resultVideos(res *invidious.Result) []types.VideoInfo {
	if res.Playlist != nil {
		return res.Playlist.Entries
	}
	if res.Video != nil {
		return []types.VideoInfo{*res.Video}
	}
	return nil
}

// writeInfoJSON stores the result under dir and returns the file path.
func writeInfoJSON(dir string, res *invidious.Result) (string, error) {
	var title, id string
	if res.Playlist != nil {
		title, id = res.Playlist.Title, res.Playlist.ID
	} else if res.Video != nil {
		title, id = res.Video.Title, res.Video.ID
	}
	data, err := json.MarshalIndent(document(res), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding info json: %w", err)
	}
	path := filepath.Join(dir, sanitize.InfoFilename(title, id))
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing info json: %w", err)
	}
	return path, nil
}
