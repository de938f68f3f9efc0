package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"aegminer/internal/ipc"
	"aegminer/internal/services/aegisum"
)

func newBalanceCommand(ctx *commandContext) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if direct {
				client, err := directClient(ctx)
				if err != nil {
					return err
				}
				balance, err := client.GetBalance(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s AEGS\n", formatAmount(balance))
				return nil
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Balance()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s AEGS\n", formatAmount(resp.Balance))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "Query aegisum-cli directly instead of through the daemon")
	return cmd
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show current network mining statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var info aegisum.MiningInfo
			if direct {
				client, err := directClient(ctx)
				if err != nil {
					return err
				}
				info, err = client.GetMiningInfo(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				err := ctx.withClient(func(client *ipc.Client) error {
					resp, err := client.MiningInfo()
					if err != nil {
						return err
					}
					info = resp.Info
					return nil
				})
				if err != nil {
					return err
				}
			}

			rows := [][]string{
				{"Chain", info.Chain},
				{"Height", strconv.FormatInt(info.Blocks, 10)},
				{"Block weight", strconv.FormatInt(info.CurrentBlockWeight, 10)},
				{"Difficulty", formatAmount(info.Difficulty)},
				{"Network hash/s", formatAmount(info.NetworkHashPS)},
				{"Mempool tx", strconv.FormatInt(info.PooledTx, 10)},
			}
			if info.Warnings != "" {
				rows = append(rows, []string{"Warnings", info.Warnings})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "Query aegisum-cli directly instead of through the daemon")
	return cmd
}

func directClient(ctx *commandContext) (*aegisum.Client, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return aegisum.New(cfg.Daemon.CLIPath, cfg.Daemon.InvokeTimeout)
}
