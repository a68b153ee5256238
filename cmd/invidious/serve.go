package main

import (
	"github.com/spf13/cobra"

	"github.com/ytget/invidious/internal/logger"
	"github.com/ytget/invidious/internal/server"
)

var (
	flagAddr          string
	flagProbeSchedule string
	flagCORSOrigins   []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extraction over an HTTP JSON API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&flagProbeSchedule, "probe-schedule", "", "Cron spec for instance health probes; 'off' disables them")
	serveCmd.Flags().StringSliceVar(&flagCORSOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable, '*' for any)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = flagAddr
	}
	if cmd.Flags().Changed("probe-schedule") {
		cfg.Server.ProbeSchedule = flagProbeSchedule
	}
	if cmd.Flags().Changed("cors-origin") {
		cfg.Server.CORSOrigins = flagCORSOrigins
	}
	schedule := cfg.Server.ProbeSchedule
	if schedule == "off" {
		schedule = ""
	}

	ex, err := cfg.Extractor()
	if err != nil {
		return err
	}
	hc, err := cfg.HTTPClient()
	if err != nil {
		return err
	}

	logger.WithComponent(logger.ComponentApp).Info("starting api server", map[string]interface{}{
		"addr":           cfg.Server.Addr,
		"probe_schedule": schedule,
		"max_retries":    cfg.MaxRetries,
	})
	srv := server.New(ex, server.NewHealth(hc), server.Options{
		Addr:          cfg.Server.Addr,
		CORSOrigins:   cfg.Server.CORSOrigins,
		ProbeSchedule: schedule,
	})
	return srv.Run(cmd.Context())
}
