package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aegminer/internal/ipc"
)

func newMineCommand(ctx *commandContext) *cobra.Command {
	mineCmd := &cobra.Command{
		Use:   "mine",
		Short: "Control the mining session",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a mining session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartMining()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if !resp.Started {
					fmt.Fprintf(stdout, "Mining not started: %s\n", resp.Message)
					return nil
				}
				fmt.Fprintf(stdout, "Mining started (session %s)\n", resp.SessionID)
				fmt.Fprintln(stdout, "Run `aegminer watch` to follow progress")
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running mining session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StopMining()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if !resp.Stopped {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Mining stopped")
				return nil
			})
		},
	}

	mineCmd.AddCommand(startCmd)
	mineCmd.AddCommand(stopCmd)
	return mineCmd
}
