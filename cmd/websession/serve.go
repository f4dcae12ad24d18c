package main

import (
	"context"

	"github.com/aretw0/websession/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reference session endpoint",
	Long: `Starts an HTTP server exposing GET/DELETE /session and POST /session/login.
Sessions are kept in memory and expire after the configured idle ttl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("ttl") {
			cfg.Server.TTL, _ = cmd.Flags().GetDuration("ttl")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()
		return cli.RunServe(sigCtx, cfg, logger, nil)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Duration("ttl", 0, "Idle lifetime of a session (default from config)")
}
