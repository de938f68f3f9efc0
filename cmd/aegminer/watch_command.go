package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"aegminer/internal/ipc"
	"aegminer/internal/miner"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var replay int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream mining events from the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				var cursor uint64
				if replay >= 0 {
					// Fetch the buffered backlog once and keep only the tail.
					backlog, err := client.Events(ipc.EventsRequest{Since: 0})
					if err != nil {
						return err
					}
					cursor = backlog.Next
					events := backlog.Events
					if len(events) > replay {
						events = events[len(events)-replay:]
					}
					for _, evt := range events {
						fmt.Fprintln(stdout, renderEvent(evt, colorize))
					}
				}

				for {
					select {
					case <-cmd.Context().Done():
						return nil
					default:
					}
					resp, err := client.Events(ipc.EventsRequest{Since: cursor, WaitMillis: 1000})
					if err != nil {
						if cmd.Context().Err() != nil {
							return nil
						}
						if err == io.EOF {
							return fmt.Errorf("daemon connection closed")
						}
						return err
					}
					cursor = resp.Next
					for _, evt := range resp.Events {
						fmt.Fprintln(stdout, renderEvent(evt, colorize))
					}
				}
			})
		},
	}
	cmd.Flags().IntVar(&replay, "replay", 10, "Number of buffered events to replay before following (-1 for none)")
	return cmd
}

func renderEvent(evt ipc.Event, colorize bool) string {
	ts := evt.Timestamp.Local().Format("15:04:05")
	var kind statusKind
	var label, detail string

	switch evt.Type {
	case miner.EventAddressResolved:
		kind, label = statusOK, "address"
		detail = fmt.Sprintf("mining to %s", evt.Address)
	case miner.EventBlockMined:
		kind, label = statusOK, "block"
		detail = fmt.Sprintf("#%d %s", evt.BlocksMined, evt.BlockHash)
	case miner.EventInfoUpdated:
		kind, label = statusInfo, "info"
		if evt.Info != nil {
			detail = fmt.Sprintf("height=%d difficulty=%s hashps=%s mempool=%d",
				evt.Info.Blocks, formatAmount(evt.Info.Difficulty), formatAmount(evt.Info.NetworkHashPS), evt.Info.PooledTx)
		}
	case miner.EventBalanceUpdated:
		kind, label = statusInfo, "balance"
		detail = formatAmount(evt.Balance)
	case miner.EventMiningError:
		kind, label = statusError, "error"
		if evt.Retriable {
			kind = statusWarn
		}
		detail = evt.Message
	default:
		kind, label = statusInfo, string(evt.Type)
	}

	line := fmt.Sprintf("%s %-8s %s", ts, label, detail)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}
