package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the mutation audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()

			if clear {
				resp, err := client.HistoryClear()
				if err != nil {
					return err
				}
				if err := opError(resp); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d history records\n", resp.Removed)
				return nil
			}

			resp, err := client.History(limit)
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}
			if len(resp.Records) == 0 {
				fmt.Fprintln(out, "No recorded mutations")
				return nil
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"ID", "When", "Op", "File", "Sheet", "Detail"})
			for _, rec := range resp.Records {
				tw.AppendRow(table.Row{
					rec.ID,
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Op,
					rec.Path,
					rec.Sheet,
					rec.Detail,
				})
			}
			fmt.Fprintln(out, tw.Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show (0 for all)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove all history records")
	return cmd
}
