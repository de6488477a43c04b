package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newSheetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <file>",
		Short: "List the sheets in a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Sheets(args[0])
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if isTerminal(os.Stdout) {
				fmt.Fprintf(out, "File:  %s\n", resp.File)
				fmt.Fprintf(out, "Size:  %s\n", humanize.Bytes(uint64(resp.SizeBytes)))
				fmt.Fprintln(out, "Sheets:")
				for _, name := range resp.Sheets {
					fmt.Fprintf(out, "  - %s\n", name)
				}
				return nil
			}
			for _, name := range resp.Sheets {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "records <file> <sheet>",
		Short: "Print a sheet as a JSON array of row objects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.SheetData(args[0], args[1])
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.JSON)
			return nil
		},
	}
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "read <file> [sheet]",
		Short: "Render a sheet, or every sheet, as text",
		Long: `Render a sheet as a table read directly from disk.

Without a sheet name every sheet in the workbook is rendered in order,
each preceded by its name.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet := ""
			if len(args) == 2 {
				sheet = args[1]
			}

			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Read(args[0], sheet)
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}
}

func newQueryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "query <file> <sheet> <expression>",
		Short: "Filter a sheet's rows with a predicate expression",
		Long: `Filter rows with a boolean expression over column values.

Example expressions:
  sheetctl query report.xlsx Sheet1 "B == '1'"
  sheetctl query people.xlsx Staff "age > 30 and department == 'Sales'"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Query(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}
}

func newUpdateCellCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update-cell <file> <sheet> <row> <column> <value>",
		Short: "Set one cell value",
		Long: `Set one cell addressed by a 1-based row number and an Excel-style
column letter (A, B, ..., Z, AA, ...). The sheet is written back in place;
other sheets in the file are untouched.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("row must be a number: %q", args[2])
			}

			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.UpdateCell(args[0], args[1], row, args[3], args[4])
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newAddRowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-row <file> <sheet> <value>...",
		Short: "Append a row to a sheet",
		Long: `Append values as the sheet's new last row. The number of values must
match the sheet's column count exactly.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.AddRow(args[0], args[1], args[2:])
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newCreateSheetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create-sheet <file> <sheet> <header>...",
		Short: "Create a new sheet with header columns",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.CreateSheet(args[0], args[1], args[2:])
			if err != nil {
				return err
			}
			if err := opError(resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
