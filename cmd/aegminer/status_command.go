package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func runStatusCommand(cmd *cobra.Command, ctx *commandContext) error {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	client, err := ctx.dialClient()
	if err != nil {
		for _, line := range renderSectionHeader("Daemon", colorize) {
			fmt.Fprintln(stdout, line)
		}
		fmt.Fprintln(stdout, renderStatusLine("Aegminer", statusWarn, "Not running (run `aegminer start`)", colorize))
		return nil
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		return err
	}

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if status.Running {
		fmt.Fprintln(stdout, renderStatusLine("Aegminer", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
	} else {
		fmt.Fprintln(stdout, renderStatusLine("Aegminer", statusWarn, "Not running", colorize))
	}

	miningKind := statusInfo
	detail := status.MiningState
	switch status.MiningState {
	case "mining":
		miningKind = statusOK
		if status.WalletAddress != "" {
			detail = fmt.Sprintf("Mining to %s", status.WalletAddress)
		}
	case "backoff":
		miningKind = statusWarn
		detail = "Backing off after a failed attempt"
	case "resolving":
		detail = "Resolving wallet address"
	case "idle", "stopped":
		detail = "Not mining"
	}
	fmt.Fprintln(stdout, renderStatusLine("Mining", miningKind, detail, colorize))
	if status.SessionID != "" {
		fmt.Fprintln(stdout, renderStatusLine("Session", statusInfo, status.SessionID, colorize))
	}
	if status.LastError != "" {
		kind := statusWarn
		if !status.LastErrorRetriable {
			kind = statusError
		}
		fmt.Fprintln(stdout, renderStatusLine("Last error", kind, status.LastError, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Wallet", colorize) {
		fmt.Fprintln(stdout, line)
	}
	rows := [][]string{
		{"Blocks mined", strconv.FormatInt(status.BlocksMined, 10)},
		{"Balance", formatAmount(status.Balance)},
	}
	if status.Info != nil {
		rows = append(rows,
			[]string{"Chain", status.Info.Chain},
			[]string{"Height", strconv.FormatInt(status.Info.Blocks, 10)},
			[]string{"Difficulty", formatAmount(status.Info.Difficulty)},
			[]string{"Network hash/s", formatAmount(status.Info.NetworkHashPS)},
			[]string{"Mempool tx", strconv.FormatInt(status.Info.PooledTx, 10)},
		)
	}
	fmt.Fprintln(stdout, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	return nil
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
