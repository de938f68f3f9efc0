package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"aegminer/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "Show recorded mining sessions, or the blocks of one session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				if len(args) == 1 {
					resp, err := client.SessionBlocks(args[0])
					if err != nil {
						return err
					}
					if len(resp.Blocks) == 0 {
						fmt.Fprintln(stdout, "No blocks recorded for this session")
						return nil
					}
					rows := make([][]string, 0, len(resp.Blocks))
					for _, block := range resp.Blocks {
						rows = append(rows, []string{
							strconv.FormatInt(block.Seq, 10),
							block.BlockHash,
							block.MinedAt.Local().Format(time.RFC3339),
						})
					}
					fmt.Fprintln(stdout, renderTable(
						[]string{"#", "Block Hash", "Mined At"},
						rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft},
					))
					return nil
				}

				resp, err := client.History(limit)
				if err != nil {
					return err
				}
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(stdout, "No mining sessions recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Sessions))
				for _, session := range resp.Sessions {
					state := "ended"
					if session.Running {
						state = "running"
					} else if session.FatalError != "" {
						state = "failed"
					}
					stopped := ""
					if session.StoppedAt != nil {
						stopped = session.StoppedAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{
						session.ID,
						session.WalletAddress,
						session.StartedAt.Local().Format("2006-01-02 15:04"),
						stopped,
						strconv.FormatInt(session.BlocksMined, 10),
						state,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Session", "Address", "Started", "Stopped", "Blocks", "State"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to list")
	return cmd
}
