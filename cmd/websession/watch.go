package main

import (
	"context"
	"os"

	"github.com/aretw0/websession"
	"github.com/aretw0/websession/internal/cli"
	"github.com/aretw0/websession/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [endpoint]",
	Short: "Poll a session endpoint and print session events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.Endpoint = args[0]
		}
		if cmd.Flags().Changed("interval") {
			cfg.PollInterval, _ = cmd.Flags().GetDuration("interval")
		}
		if cmd.Flags().Changed("redis-url") {
			cfg.Redis.URL, _ = cmd.Flags().GetString("redis-url")
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		profile := tui.Profile(os.Stdout)
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet {
			tui.PrintBanner(os.Stdout, profile, websession.Version)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()
		return cli.RunWatch(sigCtx, cfg, logger, tui.NewEventPrinter(os.Stdout, profile))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "Poll interval (default from config)")
	watchCmd.Flags().String("redis-url", "", "Share expiry deadlines over Redis (redis://host:port/db)")
	watchCmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this address")
	watchCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
