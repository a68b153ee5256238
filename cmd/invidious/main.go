// Command invidious extracts video and playlist metadata from Invidious
// instances and can serve the same extraction over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/invidious/internal/config"
	"github.com/ytget/invidious/internal/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagConfig         string
	flagEnvFile        string
	flagMaxRetries     string
	flagRetryDelay     string
	flagInstance       string
	flagTimeout        string
	flagUA             string
	flagProxy          string
	flagLenient        bool
	flagNoPageFallback bool
	flagDebug          bool
)

// cfg holds the merged configuration: defaults < config file < env < flags.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "invidious [flags] <url>...",
	Short: "Extract video and playlist metadata from Invidious instances",
	Long: `invidious resolves Invidious (and origin platform) video and playlist URLs
through the Invidious API and prints the extracted metadata as JSON.`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runExtract(cmd, args, modeAuto)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (TOML, or YAML by extension)")
	pf.StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded before the config")
	pf.StringVar(&flagMaxRetries, "max-retries", "", "Video API retries: a number or 'infinite'")
	pf.StringVar(&flagRetryDelay, "retry-delay", "", "Pause between video API retries (e.g. 5s)")
	pf.StringVar(&flagInstance, "instance", "", "Instance host for origin platform URLs")
	pf.StringVar(&flagTimeout, "http-timeout", "", "HTTP timeout (e.g. 30s, 1m)")
	pf.StringVar(&flagUA, "ua", "", "Override User-Agent header")
	pf.StringVar(&flagProxy, "proxy", "", "Proxy URL (http/https/socks5)")
	pf.BoolVar(&flagLenient, "lenient", false, "Skip playlist entries that fail instead of aborting")
	pf.BoolVar(&flagNoPageFallback, "no-page-fallback", false, "Never read title or description from the watch page")
	pf.BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	addExtractFlags(rootCmd)
	rootCmd.AddCommand(videoCmd, playlistCmd, instancesCmd, serveCmd, versionCmd)
}

// loadConfig merges configuration and installs the global logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.CreateLoggerFromConfig(&cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger.SetGlobalLogger(l)
	return nil
}

// applyFlags copies explicitly set flags over c.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = strings.TrimSpace(v)
		}
	}
	set("max-retries", &c.MaxRetries, flagMaxRetries)
	set("retry-delay", &c.RetryDelay, flagRetryDelay)
	set("instance", &c.Instance, flagInstance)
	set("http-timeout", &c.Timeout, flagTimeout)
	set("ua", &c.UserAgent, flagUA)
	set("proxy", &c.Proxy, flagProxy)
	if flagLenient {
		c.LenientPlaylist = true
	}
	if flagNoPageFallback {
		c.PageFallback = false
	}
	if flagDebug {
		c.Log.Level = "debug"
		c.Log.Components = nil
		for _, comp := range logger.AllComponents {
			c.Log.Components = append(c.Log.Components, string(comp))
		}
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "invidious %s\n", Version)
	},
}
