package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/report"
	"github.com/KaramelBytes/tabloom-cli/internal/server"
)

var (
	serveAddr    string
	serveTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve detection, cross-tab and coding over HTTP",
	Long: `Serve exposes the engine as a JSON API:

  GET  /healthz
  POST /v1/detect      dataset → profile and starter config
  POST /v1/crosstabs   dataset + config → tables (JSON or Markdown)
  POST /v1/code        responses → categories

The server stops gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := server.Options{
			Coding:  openend.DefaultSettings(),
			Profile: detect.DefaultProfileOptions(),
			Report:  report.DefaultOptions(),
		}
		addr := serveAddr
		timeout := serveTimeout
		if cfg != nil {
			opts.Coding = cfg.Coding()
			opts.Report = cfg.ReportOptions()
			if cfg.DetectSampleRows > 0 {
				opts.Profile.SampleSize = cfg.DetectSampleRows
			}
			if cfg.MultiSelectMinConfidence > 0 {
				opts.Profile.MinConfidence = cfg.MultiSelectMinConfidence
			}
			if !cmd.Flags().Changed("addr") && cfg.ServerAddr != "" {
				addr = cfg.ServerAddr
			}
			if !cmd.Flags().Changed("timeout") && cfg.ServerTimeoutSec > 0 {
				timeout = cfg.ServerTimeoutSec
			}
		}
		opts.Timeout = time.Duration(timeout) * time.Second
		return server.New(opts).ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().IntVar(&serveTimeout, "timeout", 60, "per-request timeout in seconds (0 = none)")
}
