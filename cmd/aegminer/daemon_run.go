package main

import (
	"strings"

	"github.com/spf13/cobra"

	"aegminer/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:    "daemon",
		Short:  "Run the daemon process in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if ctx.socketFlag != nil {
				if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
					cfg.Paths.SocketPath = socket
				}
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}
