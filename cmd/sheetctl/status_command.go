package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			status := resp.Status
			fmt.Fprintln(out, "sheetd is running")
			fmt.Fprintf(out, "  PID:            %d\n", status.PID)
			fmt.Fprintf(out, "  Socket:         %s\n", status.SocketPath)
			fmt.Fprintf(out, "  Lock file:      %s\n", status.LockPath)
			if status.HistoryDBPath != "" {
				fmt.Fprintf(out, "  History DB:     %s\n", status.HistoryDBPath)
			}
			fmt.Fprintf(out, "  Open workbooks: %d\n", status.OpenWorkbooks)
			return nil
		},
	}
}
