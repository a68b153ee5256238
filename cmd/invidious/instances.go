package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ytget/invidious/internal/server"
)

var (
	flagNoProbe bool
	flagJSON    bool
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List known Invidious instances and check their health",
	Args:  cobra.NoArgs,
	RunE:  instancesRun,
}

func init() {
	instancesCmd.Flags().BoolVar(&flagNoProbe, "no-probe", false, "List instances without contacting them")
	instancesCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output as JSON")
}

func instancesRun(cmd *cobra.Command, args []string) error {
	hc, err := cfg.HTTPClient()
	if err != nil {
		return err
	}
	h := server.NewHealth(hc)
	if !flagNoProbe {
		h.ProbeAll(cmd.Context())
	}
	list := h.Snapshot()

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	return renderInstances(out, list, isTerminal(out))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	healthyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderInstances prints one row per instance. Colors are applied only when
// styled is set.
func renderInstances(w io.Writer, list []server.InstanceStatus, styled bool) error {
	hostWidth := len("HOST")
	for _, st := range list {
		if n := len(st.Host) + len(" (default)"); n > hostWidth {
			hostWidth = n
		}
	}

	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}
	pad := func(text string, width int) string {
		if n := width - len(text); n > 0 {
			return text + strings.Repeat(" ", n)
		}
		return text
	}

	if _, err := fmt.Fprintf(w, "%s  %s  %s  %s\n",
		paint(headerStyle, pad("HOST", hostWidth)),
		paint(headerStyle, pad("STATUS", 9)),
		paint(headerStyle, pad("LATENCY", 8)),
		paint(headerStyle, "ERROR")); err != nil {
		return err
	}
	for _, st := range list {
		host := st.Host
		if st.Default {
			host += " (default)"
		}
		status, style := "unknown", mutedStyle
		latency := "-"
		if st.Healthy != nil {
			if *st.Healthy {
				status, style = "up", healthyStyle
				latency = fmt.Sprintf("%dms", st.LatencyMS)
			} else {
				status, style = "down", downStyle
			}
		}
		line := fmt.Sprintf("%s  %s  %s  %s",
			pad(host, hostWidth),
			paint(style, pad(status, 9)),
			pad(latency, 8),
			paint(mutedStyle, st.Error))
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
